// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Default configuration values.
const (
	DefaultHost                  = "0.0.0.0"
	DefaultPort                  = 8080
	DefaultLogLevel              = "INFO"
	DefaultSearchLimit           = 5
	DefaultEndpointTimeout       = 60 * time.Second
	DefaultEndpointMaxRetries    = 5
	DefaultEndpointInitialDelay  = 2 * time.Second
	DefaultEndpointBackoffFactor = 2.0
	DefaultEndpointMaxTokens     = 4000
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// Endpoint configures an AI service endpoint.
type Endpoint struct {
	baseURL       string
	model         string
	apiKey        string
	timeout       time.Duration
	maxRetries    int
	initialDelay  time.Duration
	backoffFactor float64
	maxTokens     int
}

// NewEndpoint creates a new Endpoint with defaults.
func NewEndpoint() Endpoint {
	return Endpoint{
		timeout:       DefaultEndpointTimeout,
		maxRetries:    DefaultEndpointMaxRetries,
		initialDelay:  DefaultEndpointInitialDelay,
		backoffFactor: DefaultEndpointBackoffFactor,
		maxTokens:     DefaultEndpointMaxTokens,
	}
}

// BaseURL returns the base URL for the endpoint.
func (e Endpoint) BaseURL() string { return e.baseURL }

// Model returns the model identifier.
func (e Endpoint) Model() string { return e.model }

// APIKey returns the API key.
func (e Endpoint) APIKey() string { return e.apiKey }

// Timeout returns the request timeout.
func (e Endpoint) Timeout() time.Duration { return e.timeout }

// MaxRetries returns the maximum retry count.
func (e Endpoint) MaxRetries() int { return e.maxRetries }

// InitialDelay returns the initial retry delay.
func (e Endpoint) InitialDelay() time.Duration { return e.initialDelay }

// BackoffFactor returns the retry backoff multiplier.
func (e Endpoint) BackoffFactor() float64 { return e.backoffFactor }

// MaxTokens returns the maximum token limit.
func (e Endpoint) MaxTokens() int { return e.maxTokens }

// Configured reports whether the endpoint has enough settings to reach a
// real backend.
func (e Endpoint) Configured() bool { return e.apiKey != "" || e.baseURL != "" }

// AppConfig holds the main application configuration.
type AppConfig struct {
	host              string
	port              int
	dataDir           string
	dbURL             string
	logLevel          string
	logFormat         LogFormat
	searchLimit       int
	httpCacheDir      string
	embeddingEndpoint Endpoint
	chatEndpoint      Endpoint
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".conflux"
	}
	return filepath.Join(home, ".conflux")
}

// DefaultLogger returns the default slog logger for library consumers.
func DefaultLogger() *slog.Logger {
	return slog.Default()
}

// PrepareDataDir creates the data directory if it does not exist and returns it.
func PrepareDataDir(dataDir string) (string, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dataDir, nil
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	dataDir := DefaultDataDir()
	return AppConfig{
		host:              DefaultHost,
		port:              DefaultPort,
		dataDir:           dataDir,
		dbURL:             "sqlite:///" + filepath.Join(dataDir, "conflux.db"),
		logLevel:          DefaultLogLevel,
		logFormat:         LogFormatPretty,
		searchLimit:       DefaultSearchLimit,
		embeddingEndpoint: NewEndpoint(),
		chatEndpoint:      NewEndpoint(),
	}
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DataDir returns the data directory.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the database connection URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// LogLevel returns the log verbosity level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// SearchLimit returns the default number of retrieval results per query.
func (c AppConfig) SearchLimit() int { return c.searchLimit }

// HTTPCacheDir returns the directory for caching provider HTTP responses
// (empty disables caching).
func (c AppConfig) HTTPCacheDir() string { return c.httpCacheDir }

// EmbeddingEndpoint returns the embedding backend settings.
func (c AppConfig) EmbeddingEndpoint() Endpoint { return c.embeddingEndpoint }

// ChatEndpoint returns the chat/completions backend settings.
func (c AppConfig) ChatEndpoint() Endpoint { return c.chatEndpoint }

// WithDBURL returns a copy with the database URL replaced.
func (c AppConfig) WithDBURL(url string) AppConfig {
	c.dbURL = url
	return c
}

// WithAddr returns a copy with host and port replaced.
func (c AppConfig) WithAddr(host string, port int) AppConfig {
	c.host = host
	c.port = port
	return c
}
