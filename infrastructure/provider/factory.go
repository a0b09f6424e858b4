package provider

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/confluxhq/conflux/domain/chat"
	"github.com/confluxhq/conflux/domain/rag"
)

// Factory builds chat providers from persisted settings. An optional
// transport (e.g. CachingTransport) is threaded into every provider it
// creates.
type Factory struct {
	transport       http.RoundTripper
	defaultProvider chat.Provider
}

// NewFactory creates a Factory.
func NewFactory(transport http.RoundTripper) *Factory {
	return &Factory{transport: transport}
}

// NewFactoryWithDefault creates a Factory whose Default returns the
// given provider instead of local Ollama. Used when a chat endpoint is
// configured via the environment.
func NewFactoryWithDefault(transport http.RoundTripper, defaultProvider chat.Provider) *Factory {
	return &Factory{transport: transport, defaultProvider: defaultProvider}
}

// additionalSettings is the schema of the free-form JSON blob stored
// alongside a provider setting.
type additionalSettings struct {
	MaxTokens  int `json:"max_tokens"`
	TimeoutSec int `json:"timeout_sec"`
	MaxRetries int `json:"max_retries"`
}

// Build constructs a provider from a setting. The provider name is
// matched case-insensitively.
func (f *Factory) Build(setting rag.ProviderSetting) (chat.Provider, error) {
	extra := parseAdditionalSettings(setting.AdditionalSettings())
	timeout := time.Duration(extra.TimeoutSec) * time.Second

	switch strings.ToLower(strings.TrimSpace(setting.ProviderName())) {
	case "openai":
		return NewOpenAIProvider(OpenAIConfig{
			APIKey:     setting.APIKey(),
			BaseURL:    setting.BaseURL(),
			Model:      setting.ModelName(),
			MaxTokens:  extra.MaxTokens,
			Timeout:    timeout,
			MaxRetries: extra.MaxRetries,
			Transport:  f.transport,
		}), nil
	case "anthropic":
		return NewAnthropicProvider(AnthropicConfig{
			APIKey:     setting.APIKey(),
			BaseURL:    setting.BaseURL(),
			Model:      setting.ModelName(),
			MaxTokens:  extra.MaxTokens,
			Timeout:    timeout,
			MaxRetries: extra.MaxRetries,
			Transport:  f.transport,
		}), nil
	case "ollama":
		return NewOllamaProvider(OllamaConfig{
			BaseURL:   setting.BaseURL(),
			Model:     setting.ModelName(),
			Timeout:   timeout,
			Transport: f.transport,
		}), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, setting.ProviderName())
	}
}

// Default returns the provider used when no setting is active. Without
// an explicit default this is local Ollama, the only backend that needs
// no credentials.
func (f *Factory) Default() chat.Provider {
	if f.defaultProvider != nil {
		return f.defaultProvider
	}
	return NewOllamaProvider(OllamaConfig{Transport: f.transport})
}

func parseAdditionalSettings(blob string) additionalSettings {
	var extra additionalSettings
	if blob == "" {
		return extra
	}
	// A corrupt blob falls back to provider defaults
	_ = json.Unmarshal([]byte(blob), &extra)
	return extra
}
