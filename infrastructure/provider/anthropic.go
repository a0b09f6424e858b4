package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/confluxhq/conflux/domain/chat"
)

// AnthropicProvider implements chat.Provider on the Anthropic Messages
// API over raw HTTP.
type AnthropicProvider struct {
	apiKey        string
	baseURL       string
	model         string
	maxTokens     int
	maxRetries    int
	initialDelay  time.Duration
	backoffFactor float64
	httpClient    *http.Client
}

// AnthropicConfig holds configuration for the Anthropic provider.
type AnthropicConfig struct {
	APIKey        string
	BaseURL       string
	Model         string
	MaxTokens     int
	Timeout       time.Duration
	MaxRetries    int
	InitialDelay  time.Duration
	BackoffFactor float64
	Transport     http.RoundTripper
}

// NewAnthropicProvider creates a provider from configuration.
func NewAnthropicProvider(cfg AnthropicConfig) *AnthropicProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}

	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}

	initialDelay := cfg.InitialDelay
	if initialDelay == 0 {
		initialDelay = 2 * time.Second
	}

	backoffFactor := cfg.BackoffFactor
	if backoffFactor == 0 {
		backoffFactor = 2.0
	}

	return &AnthropicProvider{
		apiKey:        cfg.APIKey,
		baseURL:       baseURL,
		model:         model,
		maxTokens:     maxTokens,
		maxRetries:    maxRetries,
		initialDelay:  initialDelay,
		backoffFactor: backoffFactor,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: cfg.Transport,
		},
	}
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	Temperature *float64           `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content    []anthropicBlock `json:"content"`
	StopReason string           `json:"stop_reason"`
}

type anthropicBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicErrorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateResponse produces an answer grounded on the request context.
func (p *AnthropicProvider) GenerateResponse(ctx context.Context, req chat.GenerateRequest) (string, error) {
	messages := make([]anthropicMessage, 0, len(req.History())+1)
	for _, m := range req.History() {
		messages = append(messages, anthropicMessage{Role: m.Role(), Content: m.Content()})
	}
	messages = append(messages, anthropicMessage{
		Role:    chat.MessageRoleUser,
		Content: userContent(req),
	})

	apiReq := anthropicRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		Messages:  messages,
		System:    systemPrompt(req),
	}

	resp, err := p.complete(ctx, "generate_response", apiReq)
	if err != nil {
		return "", err
	}
	return joinTextBlocks(resp), nil
}

// ClassifyIntent asks the model for a bare intent label.
func (p *AnthropicProvider) ClassifyIntent(ctx context.Context, question string, history []chat.Message) (string, error) {
	zero := 0.0
	apiReq := anthropicRequest{
		Model:     p.model,
		MaxTokens: 16,
		Messages: []anthropicMessage{
			{Role: chat.MessageRoleUser, Content: classifyUserPrompt(question, history)},
		},
		System:      classifySystemPrompt,
		Temperature: &zero,
	}

	resp, err := p.complete(ctx, "classify_intent", apiReq)
	if err != nil {
		return "", err
	}
	return normalizeLabel(joinTextBlocks(resp)), nil
}

// Close is a no-op for the Anthropic provider.
func (p *AnthropicProvider) Close() error {
	return nil
}

func (p *AnthropicProvider) complete(ctx context.Context, operation string, apiReq anthropicRequest) (anthropicResponse, error) {
	var resp anthropicResponse
	err := p.withRetry(ctx, func() error {
		var callErr error
		resp, callErr = p.doRequest(ctx, operation, apiReq)
		return callErr
	})
	if err != nil {
		return anthropicResponse{}, err
	}
	return resp, nil
}

// doRequest performs the HTTP request to the Anthropic API.
func (p *AnthropicProvider) doRequest(ctx context.Context, operation string, apiReq anthropicRequest) (anthropicResponse, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return anthropicResponse{}, NewProviderError(operation, 0, "failed to marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return anthropicResponse{}, NewProviderError(operation, 0, "failed to create request", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return anthropicResponse{}, NewProviderError(operation, 0, "request failed", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return anthropicResponse{}, NewProviderError(operation, httpResp.StatusCode, "failed to read response", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr anthropicErrorBody
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Message != "" {
			return anthropicResponse{}, NewProviderError(operation, httpResp.StatusCode, apiErr.Error.Message, nil)
		}
		return anthropicResponse{}, NewProviderError(operation, httpResp.StatusCode, string(respBody), nil)
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return anthropicResponse{}, NewProviderError(operation, 0, "failed to unmarshal response", err)
	}
	return apiResp, nil
}

// withRetry executes the function with exponential backoff retry.
func (p *AnthropicProvider) withRetry(ctx context.Context, fn func() error) error {
	delay := p.initialDelay
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !p.isRetryable(lastErr) {
			return lastErr
		}

		if attempt < p.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * p.backoffFactor)
			}
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// isRetryable determines if an error should be retried.
func (p *AnthropicProvider) isRetryable(err error) bool {
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		return true
	}
	switch provErr.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		// Anthropic uses 529 for overloaded
		529:
		return true
	case 0:
		// No status means the request never completed
		return provErr.Err != nil
	}
	return false
}

func joinTextBlocks(resp anthropicResponse) string {
	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}
	return content
}

var _ chat.Provider = (*AnthropicProvider)(nil)
