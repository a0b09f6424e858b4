package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/confluxhq/conflux"
	"github.com/confluxhq/conflux/infrastructure/api"
	"github.com/confluxhq/conflux/internal/log"
)

func serveCmd() *cobra.Command {
	var (
		envFile string
		host    string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables (all prefixed CONFLUX_):
  CONFLUX_HOST                 Server host to bind to (default: 0.0.0.0)
  CONFLUX_PORT                 Server port to listen on (default: 8080)
  CONFLUX_DATA_DIR             Data directory (default: ~/.conflux)
  CONFLUX_DB_URL               Database URL (default: sqlite:///{data_dir}/conflux.db)
  CONFLUX_LOG_LEVEL            Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  CONFLUX_LOG_FORMAT           Log format: pretty, json (default: pretty)
  CONFLUX_SEARCH_LIMIT         Results per similarity search (default: 5)
  CONFLUX_HTTP_CACHE_DIR       Cache LLM responses on disk (development)

  CONFLUX_EMBEDDING_ENDPOINT_* Embedding service configuration
    BASE_URL                   Base URL (e.g. https://api.openai.com/v1)
    MODEL                      Model identifier (e.g. text-embedding-3-small)
    API_KEY                    API key for authentication
    TIMEOUT                    Request timeout in seconds
    MAX_RETRIES                Retry attempts

  CONFLUX_CHAT_ENDPOINT_*      Default chat backend when no provider
                               setting is active (same fields)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on")

	return cmd
}

func runServe(envFile, host string, port int) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	if host != "" || port != 0 {
		newHost := cfg.Host()
		if host != "" {
			newHost = host
		}
		newPort := cfg.Port()
		if port != 0 {
			newPort = port
		}
		cfg = cfg.WithAddr(newHost, newPort)
	}

	logger := log.NewLogger(cfg).Slog()
	logger.Info("starting conflux",
		slog.String("version", version),
		slog.String("addr", cfg.Addr()),
		slog.String("db_url", cfg.DBURL()),
	)

	client, err := conflux.New(cfg, conflux.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("create conflux client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close conflux client", slog.Any("error", err))
		}
	}()

	server := api.NewServer(cfg.Addr(), client)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", slog.Any("error", err))
		}
	}()

	if err := server.Start(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
