package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/confluxhq/conflux/domain/chat"
)

// OllamaProvider implements chat.Provider on a local Ollama server. It
// needs no API key, which makes it the fallback when no provider setting
// is configured.
type OllamaProvider struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// OllamaConfig holds configuration for the Ollama provider.
type OllamaConfig struct {
	BaseURL   string
	Model     string
	Timeout   time.Duration
	Transport http.RoundTripper
}

// NewOllamaProvider creates a provider from configuration.
func NewOllamaProvider(cfg OllamaConfig) *OllamaProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	model := cfg.Model
	if model == "" {
		model = "llama3.2"
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		// Local models can be slow on first load
		timeout = 300 * time.Second
	}

	return &OllamaProvider{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: cfg.Transport,
		},
	}
}

// Name returns the provider name.
func (p *OllamaProvider) Name() string {
	return "ollama"
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  *ollamaOptions  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

// GenerateResponse produces an answer grounded on the request context.
func (p *OllamaProvider) GenerateResponse(ctx context.Context, req chat.GenerateRequest) (string, error) {
	messages := make([]ollamaMessage, 0, len(req.History())+2)
	messages = append(messages, ollamaMessage{Role: "system", Content: systemPrompt(req)})
	for _, m := range req.History() {
		messages = append(messages, ollamaMessage{Role: m.Role(), Content: m.Content()})
	}
	messages = append(messages, ollamaMessage{
		Role:    chat.MessageRoleUser,
		Content: userContent(req),
	})

	resp, err := p.doRequest(ctx, "generate_response", ollamaChatRequest{
		Model:    p.model,
		Messages: messages,
		Stream:   false,
	})
	if err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}

// ClassifyIntent asks the model for a bare intent label.
func (p *OllamaProvider) ClassifyIntent(ctx context.Context, question string, history []chat.Message) (string, error) {
	resp, err := p.doRequest(ctx, "classify_intent", ollamaChatRequest{
		Model: p.model,
		Messages: []ollamaMessage{
			{Role: "system", Content: classifySystemPrompt},
			{Role: chat.MessageRoleUser, Content: classifyUserPrompt(question, history)},
		},
		Stream:  false,
		Options: &ollamaOptions{Temperature: 0},
	})
	if err != nil {
		return "", err
	}
	return normalizeLabel(resp.Message.Content), nil
}

// Close is a no-op for the Ollama provider.
func (p *OllamaProvider) Close() error {
	return nil
}

func (p *OllamaProvider) doRequest(ctx context.Context, operation string, apiReq ollamaChatRequest) (ollamaChatResponse, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return ollamaChatResponse{}, NewProviderError(operation, 0, "failed to marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return ollamaChatResponse{}, NewProviderError(operation, 0, "failed to create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return ollamaChatResponse{}, NewProviderError(operation, 0, "request failed", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return ollamaChatResponse{}, NewProviderError(operation, httpResp.StatusCode, "failed to read response", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return ollamaChatResponse{}, NewProviderError(
			operation, httpResp.StatusCode, fmt.Sprintf("ollama returned status %d", httpResp.StatusCode), nil,
		)
	}

	var apiResp ollamaChatResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return ollamaChatResponse{}, NewProviderError(operation, 0, "failed to unmarshal response", err)
	}
	return apiResp, nil
}

var _ chat.Provider = (*OllamaProvider)(nil)
