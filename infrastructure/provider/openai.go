package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/confluxhq/conflux/domain/chat"
)

// OpenAIProvider implements chat.Provider on the OpenAI chat completion
// API. It also serves OpenAI-compatible backends via a base URL override.
type OpenAIProvider struct {
	client        *openai.Client
	model         string
	maxTokens     int
	maxRetries    int
	initialDelay  time.Duration
	backoffFactor float64
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
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

// NewOpenAIProvider creates a provider from configuration.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	httpClient := &http.Client{}
	if cfg.Timeout > 0 {
		httpClient.Timeout = cfg.Timeout
	} else {
		httpClient.Timeout = 60 * time.Second
	}
	if cfg.Transport != nil {
		httpClient.Transport = cfg.Transport
	}
	clientCfg.HTTPClient = httpClient

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
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

	return &OpenAIProvider{
		client:        openai.NewClientWithConfig(clientCfg),
		model:         model,
		maxTokens:     maxTokens,
		maxRetries:    maxRetries,
		initialDelay:  initialDelay,
		backoffFactor: backoffFactor,
	}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// GenerateResponse produces an answer grounded on the request context.
func (p *OpenAIProvider) GenerateResponse(ctx context.Context, req chat.GenerateRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History())+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt(req),
	})
	for _, m := range req.History() {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role(),
			Content: m.Content(),
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userContent(req),
	})

	apiReq := openai.ChatCompletionRequest{
		Model:     p.model,
		Messages:  messages,
		MaxTokens: p.maxTokens,
	}

	var resp openai.ChatCompletionResponse
	err := p.withRetry(ctx, func() error {
		var callErr error
		resp, callErr = p.client.CreateChatCompletion(ctx, apiReq)
		return callErr
	})
	if err != nil {
		return "", p.wrapError("generate_response", err)
	}

	if len(resp.Choices) == 0 {
		return "", NewProviderError("generate_response", 0, "no choices in response", nil)
	}
	return resp.Choices[0].Message.Content, nil
}

// ClassifyIntent asks the model for a bare intent label at temperature
// zero. Unparseable output is the caller's problem; only transport
// failures return an error.
func (p *OpenAIProvider) ClassifyIntent(ctx context.Context, question string, history []chat.Message) (string, error) {
	apiReq := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: classifyUserPrompt(question, history)},
		},
		MaxTokens:   16,
		Temperature: 0,
	}

	var resp openai.ChatCompletionResponse
	err := p.withRetry(ctx, func() error {
		var callErr error
		resp, callErr = p.client.CreateChatCompletion(ctx, apiReq)
		return callErr
	})
	if err != nil {
		return "", p.wrapError("classify_intent", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return normalizeLabel(resp.Choices[0].Message.Content), nil
}

// Close is a no-op for the OpenAI provider.
func (p *OpenAIProvider) Close() error {
	return nil
}

// withRetry executes the function with exponential backoff retry.
func (p *OpenAIProvider) withRetry(ctx context.Context, fn func() error) error {
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
func (p *OpenAIProvider) isRetryable(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return true
	}

	return false
}

// wrapError wraps an OpenAI error into a ProviderError.
func (p *OpenAIProvider) wrapError(operation string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return NewProviderError(operation, apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return NewProviderError(operation, reqErr.HTTPStatusCode, reqErr.Error(), err)
	}

	return NewProviderError(operation, 0, err.Error(), err)
}

var _ chat.Provider = (*OpenAIProvider)(nil)
