// Package conflux provides a multi-tenant retrieval-augmented chat
// engine for convention (event) management applications.
//
// Conflux indexes each convention's schedules, notices, action items,
// and guest summaries into a vector store and answers attendee questions
// through a configurable LLM provider, routing each question by intent.
//
// Basic usage:
//
//	cfg, err := config.LoadConfig("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := conflux.New(cfg, conflux.WithDataSource(source))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Rebuild one convention's index
//	n, err := client.Indexing.IndexConvention(ctx, conventionID)
//
//	// Answer a question
//	answer, err := client.Chat.Ask(ctx, conventionID, chat.AnonymousUser(), "행사 언제 시작해?", nil)
package conflux

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/confluxhq/conflux/application/service"
	"github.com/confluxhq/conflux/domain/rag"
	"github.com/confluxhq/conflux/infrastructure/documents"
	"github.com/confluxhq/conflux/infrastructure/embedding"
	"github.com/confluxhq/conflux/infrastructure/persistence"
	"github.com/confluxhq/conflux/infrastructure/provider"
	"github.com/confluxhq/conflux/internal/config"
	"github.com/confluxhq/conflux/internal/database"
	"github.com/confluxhq/conflux/internal/log"
)

// Version is the library version, reported by the CLI and the MCP
// server handshake.
const Version = "0.1.0"

// Client is the main entry point for the conflux library.
//
// Access use cases via struct fields:
//
//	client.Chat.Ask(ctx, conventionID, user, question, history)
//	client.Indexing.ReindexAll(ctx)
//	client.Providers.ActivateProvider(ctx, settingID)
type Client struct {
	// Public use-case fields
	Chat      *service.Chat
	Indexing  *service.Indexing
	Providers *service.ProviderManager

	db       database.Database
	vectors  rag.VectorStore
	embedder rag.Embedder
	cfg      config.AppConfig
	logger   *slog.Logger
}

// New creates a Client from configuration and options, opening the
// database and running migrations for the tables conflux owns.
func New(cfg config.AppConfig, opts ...Option) (*Client, error) {
	clientCfg := newClientConfig()
	for _, opt := range opts {
		opt(clientCfg)
	}

	logger := clientCfg.logger
	if logger == nil {
		logger = log.NewLogger(cfg).Slog()
	}

	if _, err := config.PrepareDataDir(cfg.DataDir()); err != nil {
		return nil, err
	}

	ctx := context.Background()
	db, err := database.NewDatabase(ctx, cfg.DBURL())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := persistence.AutoMigrate(db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("auto migrate: %w", err), errClose)
	}

	transport := clientCfg.transport
	if transport == nil && cfg.HTTPCacheDir() != "" {
		transport = provider.NewCachingTransport(cfg.HTTPCacheDir(), nil)
		logger.Info("LLM response caching enabled", "dir", cfg.HTTPCacheDir())
	}

	embedder := clientCfg.embedder
	if embedder == nil {
		httpClient := &http.Client{Timeout: 60 * time.Second, Transport: transport}
		embedder = embedding.NewOpenAI(cfg.EmbeddingEndpoint(), httpClient, logger)
	}

	vectors := persistence.NewVectorStore(db, logger)
	settings := persistence.NewSettingStore(db, logger)

	factory := provider.NewFactory(transport)
	if chatEndpoint := cfg.ChatEndpoint(); chatEndpoint.Configured() {
		factory = provider.NewFactoryWithDefault(transport, provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey:        chatEndpoint.APIKey(),
			BaseURL:       chatEndpoint.BaseURL(),
			Model:         chatEndpoint.Model(),
			MaxTokens:     chatEndpoint.MaxTokens(),
			Timeout:       chatEndpoint.Timeout(),
			MaxRetries:    chatEndpoint.MaxRetries(),
			InitialDelay:  chatEndpoint.InitialDelay(),
			BackoffFactor: chatEndpoint.BackoffFactor(),
			Transport:     transport,
		}))
	}

	providers := service.NewProviderManager(settings, factory, logger)
	router := service.NewIntentRouter(providers, logger)
	chatSvc := service.NewChat(providers, router, embedder, vectors, clientCfg.personal, cfg.SearchLimit(), logger)

	// The convention read model defaults to the shared database; an
	// external source can replace it via WithDataSource.
	source := clientCfg.source
	if source == nil {
		source = persistence.NewConventionSource(db, logger)
	}

	return &Client{
		Chat:      chatSvc,
		Providers: providers,
		Indexing: service.NewIndexing(
			source,
			documents.NewBuilder(logger),
			embedder,
			vectors,
			0,
			logger,
		),
		db:       db,
		vectors:  vectors,
		embedder: embedder,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Logger returns the client logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// Config returns the client configuration.
func (c *Client) Config() config.AppConfig {
	return c.cfg
}

// Vectors returns the vector store for direct search access.
func (c *Client) Vectors() rag.VectorStore {
	return c.vectors
}

// Embedder returns the embedder used for queries and indexing.
func (c *Client) Embedder() rag.Embedder {
	return c.embedder
}

// Database returns the underlying database handle.
func (c *Client) Database() database.Database {
	return c.db
}

// Close releases the cached provider and the database connection.
func (c *Client) Close() error {
	return errors.Join(c.Providers.Close(), c.db.Close())
}
