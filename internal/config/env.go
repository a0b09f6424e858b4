package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// envPrefix is the prefix for all environment variables.
const envPrefix = "conflux"

// EnvConfig holds all environment-based configuration.
// Field names map to environment variables with the CONFLUX_ prefix.
// Nested structs use underscore delimiter (e.g. CONFLUX_CHAT_ENDPOINT_API_KEY).
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: CONFLUX_HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: CONFLUX_PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// DataDir is the data directory path.
	// Env: CONFLUX_DATA_DIR
	// Default: ~/.conflux
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL is the database connection URL.
	// Env: CONFLUX_DB_URL
	// Default: sqlite:///{data_dir}/conflux.db
	DBURL string `envconfig:"DB_URL"`

	// LogLevel is the log verbosity level.
	// Env: CONFLUX_LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: CONFLUX_LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// SearchLimit is the default retrieval result limit.
	// Env: CONFLUX_SEARCH_LIMIT (default: 5)
	SearchLimit int `envconfig:"SEARCH_LIMIT" default:"5"`

	// HTTPCacheDir caches provider HTTP responses to disk when set.
	// Env: CONFLUX_HTTP_CACHE_DIR
	HTTPCacheDir string `envconfig:"HTTP_CACHE_DIR"`

	// EmbeddingEndpoint configures the embedding backend.
	EmbeddingEndpoint EndpointEnv `envconfig:"EMBEDDING_ENDPOINT"`

	// ChatEndpoint configures the chat backend.
	ChatEndpoint EndpointEnv `envconfig:"CHAT_ENDPOINT"`
}

// EndpointEnv holds environment configuration for an AI endpoint.
type EndpointEnv struct {
	// BaseURL is the base URL for the endpoint.
	// Env: *_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// Model is the model identifier.
	// Env: *_MODEL
	Model string `envconfig:"MODEL"`

	// APIKey is the API key for authentication.
	// Env: *_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// Timeout is the request timeout in seconds.
	// Env: *_TIMEOUT (default: 60)
	Timeout float64 `envconfig:"TIMEOUT" default:"60"`

	// MaxRetries is the maximum number of retries.
	// Env: *_MAX_RETRIES (default: 5)
	MaxRetries int `envconfig:"MAX_RETRIES" default:"5"`

	// InitialDelay is the initial retry delay in seconds.
	// Env: *_INITIAL_DELAY (default: 2.0)
	InitialDelay float64 `envconfig:"INITIAL_DELAY" default:"2.0"`

	// BackoffFactor is the retry backoff multiplier.
	// Env: *_BACKOFF_FACTOR (default: 2.0)
	BackoffFactor float64 `envconfig:"BACKOFF_FACTOR" default:"2.0"`

	// MaxTokens is the maximum token limit.
	// Env: *_MAX_TOKENS (default: 4000)
	MaxTokens int `envconfig:"MAX_TOKENS" default:"4000"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("process environment: %w", err)
	}
	return cfg, nil
}

// Normalize fills derived defaults that envconfig cannot express.
func (c EnvConfig) Normalize() EnvConfig {
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir()
	}
	if c.DBURL == "" {
		c.DBURL = "sqlite:///" + filepath.Join(c.DataDir, "conflux.db")
	}
	return c
}

// ToAppConfig converts environment configuration to an AppConfig.
func (c EnvConfig) ToAppConfig() AppConfig {
	format := LogFormatPretty
	if strings.EqualFold(c.LogFormat, string(LogFormatJSON)) {
		format = LogFormatJSON
	}

	searchLimit := c.SearchLimit
	if searchLimit <= 0 {
		searchLimit = DefaultSearchLimit
	}

	return AppConfig{
		host:              c.Host,
		port:              c.Port,
		dataDir:           c.DataDir,
		dbURL:             c.DBURL,
		logLevel:          c.LogLevel,
		logFormat:         format,
		searchLimit:       searchLimit,
		httpCacheDir:      c.HTTPCacheDir,
		embeddingEndpoint: c.EmbeddingEndpoint.toEndpoint(),
		chatEndpoint:      c.ChatEndpoint.toEndpoint(),
	}
}

func (e EndpointEnv) toEndpoint() Endpoint {
	ep := NewEndpoint()
	ep.baseURL = e.BaseURL
	ep.model = e.Model
	ep.apiKey = e.APIKey
	if e.Timeout > 0 {
		ep.timeout = time.Duration(e.Timeout * float64(time.Second))
	}
	if e.MaxRetries > 0 {
		ep.maxRetries = e.MaxRetries
	}
	if e.InitialDelay > 0 {
		ep.initialDelay = time.Duration(e.InitialDelay * float64(time.Second))
	}
	if e.BackoffFactor > 0 {
		ep.backoffFactor = e.BackoffFactor
	}
	if e.MaxTokens > 0 {
		ep.maxTokens = e.MaxTokens
	}
	return ep
}
