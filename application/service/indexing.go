package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/confluxhq/conflux/domain/convention"
	"github.com/confluxhq/conflux/domain/rag"
	"github.com/confluxhq/conflux/infrastructure/documents"
)

// DefaultEmbedConcurrency bounds parallel embedding calls per tenant.
const DefaultEmbedConcurrency = 4

// Indexing rebuilds the vector index for conventions: fetch the tenant
// bundle, build document chunks, embed them, and atomically replace the
// tenant's stored documents.
type Indexing struct {
	source      convention.DataSource
	builder     *documents.Builder
	embedder    rag.Embedder
	store       rag.VectorStore
	concurrency int
	logger      *slog.Logger
}

// NewIndexing creates an Indexing service.
func NewIndexing(
	source convention.DataSource,
	builder *documents.Builder,
	embedder rag.Embedder,
	store rag.VectorStore,
	concurrency int,
	logger *slog.Logger,
) *Indexing {
	if concurrency <= 0 {
		concurrency = DefaultEmbedConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexing{
		source:      source,
		builder:     builder,
		embedder:    embedder,
		store:       store,
		concurrency: concurrency,
		logger:      logger,
	}
}

// IndexConvention rebuilds one tenant's documents and returns the number
// indexed. The delete-and-insert phase runs detached from the caller's
// cancellation: once the old rows are gone the new ones must land, or
// the tenant is flagged for re-indexing in the logs.
func (s *Indexing) IndexConvention(ctx context.Context, conventionID int64) (int, error) {
	bundle, err := s.source.Bundle(ctx, conventionID)
	if err != nil {
		return 0, fmt.Errorf("fetch bundle for convention %d: %w", conventionID, err)
	}

	chunks := s.builder.Build(bundle)
	docs, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return 0, err
	}

	// The rebuild must not be torn apart by caller cancellation between
	// the delete and the insert.
	rebuildCtx := context.WithoutCancel(ctx)

	deleted, err := s.store.DeleteDocumentsByConvention(rebuildCtx, conventionID)
	if err != nil {
		return 0, fmt.Errorf("clear documents for convention %d: %w", conventionID, err)
	}

	if len(docs) == 0 {
		s.logger.Info("indexed convention with no documents",
			"convention_id", conventionID, "deleted", deleted)
		return 0, nil
	}

	inserted, err := s.store.AddDocuments(rebuildCtx, docs)
	if err != nil {
		s.logger.Warn("insert failed after delete, convention needs re-indexing",
			"convention_id", conventionID, "error", err)
		return 0, fmt.Errorf("store documents for convention %d: %w", conventionID, err)
	}

	s.logger.Info("indexed convention",
		"convention_id", conventionID,
		"deleted", deleted,
		"indexed", inserted,
	)
	return inserted, nil
}

// embedChunks embeds all chunks with bounded concurrency, preserving
// chunk order. Any single embedding failure aborts the whole batch so a
// half-embedded tenant is never written.
func (s *Indexing) embedChunks(ctx context.Context, chunks []rag.DocumentChunk) ([]rag.IndexedDocument, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	docs := make([]rag.IndexedDocument, len(chunks))
	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, chunk := range chunks {
		g.Go(func() error {
			embedding, err := s.embedder.Embed(groupCtx, chunk.Content())
			if err != nil {
				return fmt.Errorf("embed chunk %d: %w", i, err)
			}
			docs[i] = rag.NewIndexedDocument(chunk.Content(), embedding, chunk.Metadata())
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// ReindexReport summarizes a full re-index run.
type ReindexReport struct {
	SuccessCount          int
	FailureCount          int
	TotalDocumentsIndexed int
	Errors                []error
}

// ReindexAll rebuilds every active convention sequentially. One tenant's
// failure never stops the rest; failures are collected in the report.
// The returned error is non-nil only when the tenant list itself cannot
// be fetched.
func (s *Indexing) ReindexAll(ctx context.Context) (ReindexReport, error) {
	ids, err := s.source.ActiveConventionIDs(ctx)
	if err != nil {
		return ReindexReport{}, fmt.Errorf("list active conventions: %w", err)
	}

	var report ReindexReport
	for _, id := range ids {
		indexed, err := s.IndexConvention(ctx, id)
		if err != nil {
			report.FailureCount++
			report.Errors = append(report.Errors, err)
			s.logger.Error("re-index failed for convention", "convention_id", id, "error", err)
			continue
		}
		report.SuccessCount++
		report.TotalDocumentsIndexed += indexed
	}

	s.logger.Info("re-index run complete",
		"conventions", len(ids),
		"succeeded", report.SuccessCount,
		"failed", report.FailureCount,
		"documents", report.TotalDocumentsIndexed,
	)
	return report, nil
}
