package embedding_test

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confluxhq/conflux/infrastructure/embedding"
	"github.com/confluxhq/conflux/internal/config"
)

func embeddingEndpoint(t *testing.T, baseURL string) config.Endpoint {
	t.Helper()
	t.Setenv("CONFLUX_DATA_DIR", t.TempDir())
	t.Setenv("CONFLUX_EMBEDDING_ENDPOINT_BASE_URL", baseURL)
	t.Setenv("CONFLUX_EMBEDDING_ENDPOINT_API_KEY", "sk-embed-test")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	return cfg.EmbeddingEndpoint()
}

func TestOpenAI_UnconfiguredFallsBackToDeterministic(t *testing.T) {
	t.Setenv("CONFLUX_DATA_DIR", t.TempDir())
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	e := embedding.NewOpenAI(cfg.EmbeddingEndpoint(), nil, nil)
	ctx := context.Background()

	got, err := e.Embed(ctx, "주차 안내")
	require.NoError(t, err)

	want, err := embedding.NewDeterministic().Embed(ctx, "주차 안내")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestOpenAI_EmbedsThroughBackend(t *testing.T) {
	raw := make([]float32, embedding.Dimensions)
	raw[0] = 3
	raw[1] = 4

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embeddings", r.URL.Path)
		require.Equal(t, "Bearer sk-embed-test", r.Header.Get("Authorization"))

		var req struct {
			Input      []string `json:"input"`
			Dimensions int      `json:"dimensions"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"hello"}, req.Input)
		assert.Equal(t, embedding.Dimensions, req.Dimensions)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"object": "embedding", "index": 0, "embedding": raw}},
		})
	}))
	defer backend.Close()

	e := embedding.NewOpenAI(embeddingEndpoint(t, backend.URL), nil, nil)

	vec, err := e.Embed(context.Background(), "hello")
	require.NoError(t, err)
	require.Len(t, vec, embedding.Dimensions)

	// Vectors are re-normalized to unit magnitude.
	var magnitude float64
	for _, v := range vec {
		magnitude += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(magnitude), 1e-9)
	assert.InDelta(t, 0.6, vec[0], 1e-6)
	assert.InDelta(t, 0.8, vec[1], 1e-6)
}

func TestOpenAI_EmptyInputIsZeroVector(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("empty input must not reach the backend")
	}))
	defer backend.Close()

	e := embedding.NewOpenAI(embeddingEndpoint(t, backend.URL), nil, nil)

	vec, err := e.Embed(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, make([]float64, embedding.Dimensions), vec)
}

func TestOpenAI_BackendErrorPropagates(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer backend.Close()

	e := embedding.NewOpenAI(embeddingEndpoint(t, backend.URL), nil, nil)

	_, err := e.Embed(context.Background(), "hello")
	assert.Error(t, err)
}
