package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/confluxhq/conflux/internal/config"
)

// defaultEmbeddingModel is used when the endpoint does not name one.
const defaultEmbeddingModel = "text-embedding-3-small"

// OpenAI embeds text through an OpenAI-compatible embeddings endpoint,
// requesting vectors at the fixed Dimensions so model-backed and fallback
// vectors share a dimension space. When the endpoint is not configured it
// degrades to the deterministic fallback instead of failing construction.
type OpenAI struct {
	client   *openai.Client
	model    string
	fallback *Deterministic
	logger   *slog.Logger
}

// NewOpenAI creates an OpenAI embedder from endpoint configuration.
// The returned embedder is usable even with an empty endpoint; it then
// serves every call from the deterministic fallback.
func NewOpenAI(endpoint config.Endpoint, httpClient *http.Client, logger *slog.Logger) *OpenAI {
	if logger == nil {
		logger = slog.Default()
	}

	e := &OpenAI{
		model:    endpoint.Model(),
		fallback: NewDeterministic(),
		logger:   logger,
	}
	if e.model == "" {
		e.model = defaultEmbeddingModel
	}

	if !endpoint.Configured() {
		logger.Warn("embedding endpoint not configured, using deterministic fallback embeddings")
		return e
	}

	cfg := openai.DefaultConfig(endpoint.APIKey())
	if endpoint.BaseURL() != "" {
		cfg.BaseURL = endpoint.BaseURL()
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	} else if endpoint.Timeout() > 0 {
		cfg.HTTPClient = &http.Client{Timeout: endpoint.Timeout()}
	}
	e.client = openai.NewClientWithConfig(cfg)
	return e
}

// Embed returns the L2-normalized vector for text. Backend failures
// propagate to the caller; only an unconfigured backend degrades to the
// fallback.
func (e *OpenAI) Embed(ctx context.Context, text string) ([]float64, error) {
	if e.client == nil {
		return e.fallback.Embed(ctx, text)
	}
	if text == "" {
		return make([]float64, Dimensions), nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model:      openai.EmbeddingModel(e.model),
		Input:      []string{text},
		Dimensions: Dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("create embedding: empty response from model %s", e.model)
	}

	vec := make([]float64, len(resp.Data[0].Embedding))
	var magnitude float64
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float64(v)
		magnitude += vec[i] * vec[i]
	}

	// The API normalizes its vectors, but the unit-magnitude contract is
	// ours, so enforce it here.
	magnitude = math.Sqrt(magnitude)
	if magnitude > 0 {
		for i := range vec {
			vec[i] /= magnitude
		}
	}
	return vec, nil
}

// Dimensions returns the fixed embedding length.
func (e *OpenAI) Dimensions() int {
	return Dimensions
}
