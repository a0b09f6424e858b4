// Package mcp provides Model Context Protocol server functionality.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/confluxhq/conflux/domain/chat"
	"github.com/confluxhq/conflux/domain/rag"
	"github.com/confluxhq/conflux/domain/repository"
)

// Asker answers convention-scoped questions for MCP tools.
type Asker interface {
	Ask(ctx context.Context, conventionID int64, user chat.UserContext, question string, history []chat.Message) (chat.Answer, error)
}

// Server wraps the MCP server with conflux-specific tools.
type Server struct {
	mcpServer *server.MCPServer
	asker     Asker
	embedder  rag.Embedder
	vectors   rag.VectorStore
	logger    *slog.Logger
}

// NewServer creates an MCP server exposing the ask and search_context
// tools.
func NewServer(asker Asker, embedder rag.Embedder, vectors rag.VectorStore, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		asker:    asker,
		embedder: embedder,
		vectors:  vectors,
		logger:   logger,
	}

	mcpServer := server.NewMCPServer(
		"conflux",
		version,
		server.WithToolCapabilities(true),
	)
	s.registerTools(mcpServer)

	s.mcpServer = mcpServer
	return s
}

// MCPServer returns the underlying MCP server for transport mounting.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	askTool := mcp.NewTool("ask",
		mcp.WithDescription("Ask a question about a convention. The question is intent-routed and answered from the convention's indexed content."),
		mcp.WithNumber("convention_id",
			mcp.Required(),
			mcp.Description("The convention to scope the question to"),
		),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to answer"),
		),
	)
	mcpServer.AddTool(askTool, s.handleAsk)

	searchTool := mcp.NewTool("search_context",
		mcp.WithDescription("Similarity-search a convention's indexed documents without generating an answer"),
		mcp.WithNumber("convention_id",
			mcp.Required(),
			mcp.Description("The convention to search in"),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The search query"),
		),
		mcp.WithNumber("top_k",
			mcp.Description("Number of results to return (default: 5)"),
		),
		mcp.WithString("type",
			mcp.Description("Restrict results to one document type (e.g. notice, schedule_item)"),
		),
	)
	mcpServer.AddTool(searchTool, s.handleSearchContext)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conventionID := request.GetInt("convention_id", 0)
	if conventionID == 0 {
		return mcp.NewToolResultError("convention_id is required"), nil
	}

	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question is required"), nil
	}

	answer, err := s.asker.Ask(ctx, int64(conventionID), chat.AnonymousUser(), question, nil)
	if err != nil {
		s.logger.Error("ask failed", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("ask failed: %v", err)), nil
	}

	response := struct {
		Answer   string `json:"answer"`
		Provider string `json:"provider"`
		Intent   string `json:"intent"`
	}{
		Answer:   answer.Text(),
		Provider: answer.Provider(),
		Intent:   string(answer.Intent()),
	}

	jsonBytes, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal answer: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// handleSearchContext handles the search_context tool invocation.
func (s *Server) handleSearchContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conventionID := request.GetInt("convention_id", 0)
	if conventionID == 0 {
		return mcp.NewToolResultError("convention_id is required"), nil
	}

	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query is required"), nil
	}

	topK := request.GetInt("top_k", 5)

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.logger.Error("query embedding failed", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("embedding failed: %v", err)), nil
	}

	filters := []repository.Option{repository.WithConventionID(int64(conventionID))}
	if docType := request.GetString("type", ""); docType != "" {
		filters = append(filters, repository.WithSourceType(docType))
	}

	results, err := s.vectors.Search(ctx, embedding, topK, filters...)
	if err != nil {
		s.logger.Error("search failed", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	type searchResult struct {
		ID         string         `json:"id"`
		Content    string         `json:"content"`
		Similarity float64        `json:"similarity"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}

	response := make([]searchResult, len(results))
	for i, r := range results {
		response[i] = searchResult{
			ID:         r.DocumentID(),
			Content:    r.Content(),
			Similarity: r.Similarity(),
			Metadata:   r.Metadata(),
		}
	}

	jsonBytes, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
