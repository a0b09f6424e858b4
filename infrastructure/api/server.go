// Package api provides the HTTP API server.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/confluxhq/conflux"
	"github.com/confluxhq/conflux/infrastructure/api/middleware"
	v1 "github.com/confluxhq/conflux/infrastructure/api/v1"
	mcpinternal "github.com/confluxhq/conflux/internal/mcp"
)

// Server represents the HTTP API server.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
	addr       string
}

// NewServer creates an API Server with all v1 routes mounted.
func NewServer(addr string, client *conflux.Client) *Server {
	logger := client.Logger()

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logging(logger))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// MCP is streaming and must stay outside chi's Timeout middleware,
	// which wraps the ResponseWriter.
	mcpSrv := mcpinternal.NewServer(client.Chat, client.Embedder(), client.Vectors(), conflux.Version, logger)
	router.Mount("/mcp", mcpserver.NewStreamableHTTPServer(mcpSrv.MCPServer()))

	router.Route("/api/v1", func(r chi.Router) {
		// Chat generation can be slow; indexing gets its own budget below.
		r.With(chimiddleware.Timeout(120*time.Second)).
			Mount("/chat", v1.NewChatRouter(client).Routes())
		r.With(chimiddleware.Timeout(10*time.Minute)).
			Mount("/index", v1.NewIndexRouter(client).Routes())
		r.With(chimiddleware.Timeout(30*time.Second)).
			Mount("/settings", v1.NewSettingsRouter(client).Routes())
	})

	return &Server{
		router: router,
		addr:   addr,
		logger: logger,
	}
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router {
	return s.router
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      15 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("starting HTTP server", "addr", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the server address.
func (s *Server) Addr() string {
	return s.addr
}
