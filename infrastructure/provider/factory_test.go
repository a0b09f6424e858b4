package provider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confluxhq/conflux/domain/rag"
)

func setting(name, extra string) rag.ProviderSetting {
	now := time.Now().UTC()
	return rag.NewProviderSetting(1, name, "sk-test", "", "", true, extra, now, now)
}

func TestFactory_BuildDispatch(t *testing.T) {
	factory := NewFactory(nil)

	tests := []struct {
		providerName string
		wantName     string
	}{
		{"openai", "openai"},
		{"OpenAI", "openai"},
		{" anthropic ", "anthropic"},
		{"OLLAMA", "ollama"},
	}
	for _, tt := range tests {
		t.Run(tt.providerName, func(t *testing.T) {
			built, err := factory.Build(setting(tt.providerName, ""))
			require.NoError(t, err)
			defer built.Close()
			assert.Equal(t, tt.wantName, built.Name())
		})
	}
}

func TestFactory_BuildUnknownProvider(t *testing.T) {
	factory := NewFactory(nil)
	_, err := factory.Build(setting("bedrock", ""))
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestFactory_DefaultIsOllama(t *testing.T) {
	built := NewFactory(nil).Default()
	defer built.Close()
	assert.Equal(t, "ollama", built.Name())
}

func TestFactory_ExplicitDefault(t *testing.T) {
	custom := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test"})
	defer custom.Close()

	built := NewFactoryWithDefault(nil, custom).Default()
	assert.Equal(t, custom, built)
}

func TestParseAdditionalSettings(t *testing.T) {
	tests := []struct {
		name string
		blob string
		want additionalSettings
	}{
		{"empty blob", "", additionalSettings{}},
		{"full blob", `{"max_tokens":512,"timeout_sec":30,"max_retries":5}`,
			additionalSettings{MaxTokens: 512, TimeoutSec: 30, MaxRetries: 5}},
		{"partial blob", `{"max_tokens":256}`, additionalSettings{MaxTokens: 256}},
		{"corrupt blob", `{not json`, additionalSettings{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseAdditionalSettings(tt.blob))
		})
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"event", "event"},
		{" Event \n", "event"},
		{`"personal_info"`, "personal_info"},
		{"`general`", "general"},
		{"personal_schedule.", "personal_schedule"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeLabel(tt.in), "input %q", tt.in)
	}
}
