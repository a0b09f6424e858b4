package rag

import (
	"context"
	"errors"

	"github.com/confluxhq/conflux/domain/repository"
)

// ErrMissingConventionID indicates a document insert whose metadata does
// not resolve to a numeric convention id. Untenanted documents are never
// stored.
var ErrMissingConventionID = errors.New("metadata does not contain a numeric convention id")

// IndexedDocument is one entry of a batch insert: content, its embedding,
// and the provenance metadata.
type IndexedDocument struct {
	content   string
	embedding []float64
	metadata  map[string]any
}

// NewIndexedDocument creates an IndexedDocument.
func NewIndexedDocument(content string, embedding []float64, metadata map[string]any) IndexedDocument {
	vec := make([]float64, len(embedding))
	copy(vec, embedding)
	return IndexedDocument{content: content, embedding: vec, metadata: metadata}
}

// Content returns the document text.
func (d IndexedDocument) Content() string { return d.content }

// Embedding returns the embedding vector.
func (d IndexedDocument) Embedding() []float64 { return d.embedding }

// Metadata returns the document metadata.
func (d IndexedDocument) Metadata() map[string]any { return d.metadata }

// VectorStore persists documents with their embeddings and performs
// brute-force cosine similarity search over them.
type VectorStore interface {
	// AddDocument stores a single document and returns its opaque id.
	// The metadata must resolve to a numeric convention id.
	AddDocument(ctx context.Context, content string, embedding []float64, metadata map[string]any) (string, error)

	// AddDocuments stores a batch best-effort: entries without a valid
	// convention id are skipped and logged, the rest are persisted.
	// Returns the number of documents stored.
	AddDocuments(ctx context.Context, docs []IndexedDocument) (int, error)

	// Search returns up to topK results ranked by cosine similarity
	// descending. Options narrow the candidate set before scoring
	// (at minimum repository.WithConventionID).
	Search(ctx context.Context, queryEmbedding []float64, topK int, options ...repository.Option) ([]SearchResult, error)

	// DeleteDocument removes one document by id. Returns false when the
	// id does not exist.
	DeleteDocument(ctx context.Context, id string) (bool, error)

	// DeleteDocumentsByMetadata removes every document whose metadata
	// contains key with the given value. Rows with corrupt metadata are
	// logged and left untouched. Returns the number of rows removed.
	DeleteDocumentsByMetadata(ctx context.Context, key string, value any) (int64, error)

	// DeleteDocumentsByConvention bulk-deletes a tenant's documents.
	DeleteDocumentsByConvention(ctx context.Context, conventionID int64) (int64, error)

	// Count returns the total number of stored documents.
	Count(ctx context.Context) (int64, error)

	// CountConvention returns the number of documents for one tenant.
	CountConvention(ctx context.Context, conventionID int64) (int64, error)
}
