package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confluxhq/conflux/domain/chat"
)

func anthropicReply(w http.ResponseWriter, text string) {
	_ = json.NewEncoder(w).Encode(anthropicResponse{
		Content:    []anthropicBlock{{Type: "text", Text: text}},
		StopReason: "end_turn",
	})
}

func TestAnthropicProvider_GenerateResponse(t *testing.T) {
	var captured anthropicRequest
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/messages", r.URL.Path)
		require.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
		require.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		anthropicReply(w, "The keynote starts at 10:00 in Hall A.")
	}))
	defer backend.Close()

	p := NewAnthropicProvider(AnthropicConfig{APIKey: "sk-ant-test", BaseURL: backend.URL})
	defer p.Close()

	req := chat.NewGenerateRequest("When is the keynote?",
		"1. Opening Keynote, 10:00, Hall A.", "", nil)
	answer, err := p.GenerateResponse(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "The keynote starts at 10:00 in Hall A.", answer)

	assert.NotEmpty(t, captured.System)
	assert.Nil(t, captured.Temperature)
	require.Len(t, captured.Messages, 1)
	assert.Contains(t, captured.Messages[0].Content, "Opening Keynote")
}

func TestAnthropicProvider_ClassifyIntentNormalizesLabel(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var apiReq anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&apiReq))
		require.NotNil(t, apiReq.Temperature)
		assert.Zero(t, *apiReq.Temperature)
		anthropicReply(w, `"Personal_Schedule"`)
	}))
	defer backend.Close()

	p := NewAnthropicProvider(AnthropicConfig{APIKey: "sk-ant-test", BaseURL: backend.URL})
	defer p.Close()

	label, err := p.ClassifyIntent(context.Background(), "내 일정 알려줘", nil)
	require.NoError(t, err)
	assert.Equal(t, "personal_schedule", label)
}

func TestAnthropicProvider_RetriesOverloaded(t *testing.T) {
	var hits atomic.Int64
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(529)
			_, _ = w.Write([]byte(`{"error":{"type":"overloaded_error","message":"Overloaded"}}`))
			return
		}
		anthropicReply(w, "ok")
	}))
	defer backend.Close()

	p := NewAnthropicProvider(AnthropicConfig{
		APIKey:       "sk-ant-test",
		BaseURL:      backend.URL,
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
	})
	defer p.Close()

	answer, err := p.GenerateResponse(context.Background(), chat.NewGenerateRequest("q", "", "", nil))
	require.NoError(t, err)
	assert.Equal(t, "ok", answer)
	assert.Equal(t, int64(2), hits.Load())
}

func TestAnthropicProvider_BadRequestNotRetried(t *testing.T) {
	var hits atomic.Int64
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"max_tokens required"}}`))
	}))
	defer backend.Close()

	p := NewAnthropicProvider(AnthropicConfig{
		APIKey:       "sk-ant-test",
		BaseURL:      backend.URL,
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
	})
	defer p.Close()

	_, err := p.GenerateResponse(context.Background(), chat.NewGenerateRequest("q", "", "", nil))
	require.Error(t, err)
	assert.Equal(t, int64(1), hits.Load(), "client errors must not be retried")

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusBadRequest, provErr.StatusCode)
	assert.Equal(t, "max_tokens required", provErr.Message)
}

func TestJoinTextBlocks(t *testing.T) {
	resp := anthropicResponse{Content: []anthropicBlock{
		{Type: "text", Text: "first "},
		{Type: "tool_use", Text: "ignored"},
		{Type: "text", Text: "second"},
	}}
	assert.Equal(t, "first second", joinTextBlocks(resp))
}
