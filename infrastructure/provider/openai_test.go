package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confluxhq/conflux/domain/chat"
)

func openaiBackend(t *testing.T, reply string, capture *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(capture))
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: reply}},
			},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestOpenAIProvider_GenerateResponse(t *testing.T) {
	var captured openai.ChatCompletionRequest
	backend := openaiBackend(t, "The venue is COEX.", &captured)

	p := NewOpenAIProvider(OpenAIConfig{
		APIKey:  "sk-test",
		BaseURL: backend.URL,
		Model:   "gpt-4o-mini",
	})
	defer p.Close()

	req := chat.NewGenerateRequest("Where is the venue?",
		"1. DevCon Seoul takes place at COEX.",
		"Answer from the supplied context.", nil)
	answer, err := p.GenerateResponse(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "The venue is COEX.", answer)

	assert.Equal(t, "gpt-4o-mini", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, captured.Messages[0].Role)
	assert.Equal(t, "Answer from the supplied context.", captured.Messages[0].Content)
	assert.Contains(t, captured.Messages[1].Content, "Context:")
	assert.Contains(t, captured.Messages[1].Content, "Where is the venue?")
}

func TestOpenAIProvider_ClassifyIntent(t *testing.T) {
	var captured openai.ChatCompletionRequest
	backend := openaiBackend(t, "Event\n", &captured)

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test", BaseURL: backend.URL})
	defer p.Close()

	label, err := p.ClassifyIntent(context.Background(), "행사 언제 시작해?", nil)
	require.NoError(t, err)
	assert.Equal(t, "event", label)
	assert.Equal(t, 16, captured.MaxTokens)
	assert.Zero(t, captured.Temperature)
}

func TestOpenAIProvider_EmptyChoicesLabel(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{})
	}))
	defer backend.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test", BaseURL: backend.URL})
	defer p.Close()

	label, err := p.ClassifyIntent(context.Background(), "anything", nil)
	require.NoError(t, err)
	assert.Empty(t, label, "no output is an empty label, not an error")
}

func TestOpenAIProvider_APIErrorWrapped(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	}))
	defer backend.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-bad", BaseURL: backend.URL})
	defer p.Close()

	_, err := p.GenerateResponse(context.Background(), chat.NewGenerateRequest("q", "", "", nil))
	require.Error(t, err)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusUnauthorized, provErr.StatusCode)
	assert.Equal(t, "invalid api key", provErr.Message)
}
