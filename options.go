package conflux

import (
	"log/slog"
	"net/http"

	"github.com/confluxhq/conflux/domain/chat"
	"github.com/confluxhq/conflux/domain/convention"
	"github.com/confluxhq/conflux/domain/rag"
)

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	logger    *slog.Logger
	source    convention.DataSource
	personal  chat.PersonalContextBuilder
	embedder  rag.Embedder
	transport http.RoundTripper
}

func newClientConfig() *clientConfig {
	return &clientConfig{}
}

// WithLogger sets the logger. Defaults to a logger built from the
// configured level and format.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *clientConfig) { cfg.logger = logger }
}

// WithDataSource replaces the convention data source used by indexing.
// By default conventions are read from the shared database.
func WithDataSource(source convention.DataSource) Option {
	return func(cfg *clientConfig) { cfg.source = source }
}

// WithPersonalContextBuilder sets the collaborator that assembles a
// user's personal facts. Without it personal intents answer from
// conversation history alone.
func WithPersonalContextBuilder(builder chat.PersonalContextBuilder) Option {
	return func(cfg *clientConfig) { cfg.personal = builder }
}

// WithEmbedder overrides the embedder. Defaults to the OpenAI embedder,
// which itself degrades to the deterministic local embedder when no
// embedding endpoint is configured.
func WithEmbedder(embedder rag.Embedder) Option {
	return func(cfg *clientConfig) { cfg.embedder = embedder }
}

// WithHTTPTransport sets the transport threaded into every LLM client,
// e.g. a CachingTransport for development.
func WithHTTPTransport(transport http.RoundTripper) Option {
	return func(cfg *clientConfig) { cfg.transport = transport }
}
