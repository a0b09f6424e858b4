package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/confluxhq/conflux/domain/rag"
	"github.com/confluxhq/conflux/domain/repository"
	"github.com/confluxhq/conflux/internal/database"
)

// insertBatchSize bounds the row count per INSERT during batch adds.
const insertBatchSize = 100

// VectorStore implements rag.VectorStore on gorm. Embeddings live as JSON
// columns and similarity search is brute-force in memory over the
// tenant-filtered candidate set.
type VectorStore struct {
	db     database.Database
	logger *slog.Logger
}

// NewVectorStore creates a VectorStore.
func NewVectorStore(db database.Database, logger *slog.Logger) *VectorStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &VectorStore{db: db, logger: logger}
}

// AddDocument stores a single document. The metadata must resolve to a
// numeric convention id; untenanted documents are rejected before any
// write.
func (s *VectorStore) AddDocument(ctx context.Context, content string, embedding []float64, metadata map[string]any) (string, error) {
	model, err := s.newModel(content, embedding, metadata)
	if err != nil {
		return "", err
	}

	if err := s.db.Session(ctx).Create(&model).Error; err != nil {
		return "", fmt.Errorf("insert vector document: %w", err)
	}
	return model.ID, nil
}

// AddDocuments stores a batch best-effort: entries that fail convention-id
// extraction are skipped and logged, valid entries are still persisted.
// Partial success is normal, not an error.
func (s *VectorStore) AddDocuments(ctx context.Context, docs []rag.IndexedDocument) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	models := make([]VectorDocumentModel, 0, len(docs))
	for _, doc := range docs {
		model, err := s.newModel(doc.Content(), doc.Embedding(), doc.Metadata())
		if err != nil {
			s.logger.Warn("skipping document in batch insert", "error", err)
			continue
		}
		models = append(models, model)
	}

	if len(models) == 0 {
		return 0, nil
	}

	if err := s.db.Session(ctx).CreateInBatches(&models, insertBatchSize).Error; err != nil {
		return 0, fmt.Errorf("batch insert vector documents: %w", err)
	}
	return len(models), nil
}

func (s *VectorStore) newModel(content string, embedding []float64, metadata map[string]any) (VectorDocumentModel, error) {
	conventionID, err := ConventionIDFromMetadata(metadata)
	if err != nil {
		return VectorDocumentModel{}, err
	}
	if content == "" {
		return VectorDocumentModel{}, fmt.Errorf("empty content for convention %d", conventionID)
	}

	sourceType, _ := metadata[rag.MetaType].(string)

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return VectorDocumentModel{}, fmt.Errorf("marshal metadata: %w", err)
	}

	vec := make(Float64Slice, len(embedding))
	copy(vec, embedding)

	now := time.Now().UTC()
	return VectorDocumentModel{
		ID:           uuid.NewString(),
		ConventionID: conventionID,
		SourceType:   sourceType,
		Content:      content,
		Embedding:    vec,
		Metadata:     string(metadataJSON),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Search loads the filtered candidate set, scores it by cosine
// similarity, and returns the top results in descending order. Candidates
// with zero magnitude or a dimensionality that does not match the query
// are logged and skipped; negative similarities are discarded before
// truncation.
func (s *VectorStore) Search(ctx context.Context, queryEmbedding []float64, topK int, options ...repository.Option) ([]rag.SearchResult, error) {
	if len(queryEmbedding) == 0 || topK <= 0 {
		return []rag.SearchResult{}, nil
	}

	var entities []VectorDocumentModel
	db := database.ApplyConditions(s.db.Session(ctx).Model(&VectorDocumentModel{}), options...)
	if err := db.Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("load vector candidates: %w", err)
	}

	type scored struct {
		entity     VectorDocumentModel
		similarity float64
	}
	matches := make([]scored, 0, len(entities))
	for _, e := range entities {
		if len(e.Embedding) != len(queryEmbedding) {
			s.logger.Warn("skipping vector with mismatched dimensions, document needs re-indexing",
				"document_id", e.ID,
				"stored_dimensions", len(e.Embedding),
				"query_dimensions", len(queryEmbedding),
			)
			continue
		}
		similarity, ok := CosineSimilarity(queryEmbedding, e.Embedding)
		if !ok {
			s.logger.Debug("skipping zero-magnitude vector", "document_id", e.ID)
			continue
		}
		if similarity < 0 {
			continue
		}
		matches = append(matches, scored{entity: e, similarity: similarity})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].similarity > matches[j].similarity
	})
	if topK < len(matches) {
		matches = matches[:topK]
	}

	results := make([]rag.SearchResult, len(matches))
	for i, m := range matches {
		results[i] = rag.NewSearchResult(m.entity.ID, m.entity.Content, m.similarity, s.parseMetadata(m.entity))
	}
	return results, nil
}

// parseMetadata decodes a row's metadata blob, returning an empty map on
// corruption so one bad row never fails a query.
func (s *VectorStore) parseMetadata(e VectorDocumentModel) map[string]any {
	if e.Metadata == "" {
		return map[string]any{}
	}
	var metadata map[string]any
	if err := json.Unmarshal([]byte(e.Metadata), &metadata); err != nil {
		s.logger.Warn("corrupt metadata on vector document", "document_id", e.ID, "error", err)
		return map[string]any{}
	}
	return metadata
}

// DeleteDocument removes one document by id. Returns false when no row
// matched.
func (s *VectorStore) DeleteDocument(ctx context.Context, id string) (bool, error) {
	result := database.ApplyConditions(s.db.Session(ctx), repository.WithDocumentID(id)).
		Delete(&VectorDocumentModel{})
	if result.Error != nil {
		return false, fmt.Errorf("delete vector document: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// DeleteDocumentsByMetadata removes every document whose metadata
// contains key with the given value. Rows with corrupt metadata are
// logged and excluded rather than aborting the scan.
func (s *VectorStore) DeleteDocumentsByMetadata(ctx context.Context, key string, value any) (int64, error) {
	var entities []VectorDocumentModel
	if err := s.db.Session(ctx).Select("id", "metadata").Find(&entities).Error; err != nil {
		return 0, fmt.Errorf("load documents for metadata delete: %w", err)
	}

	var ids []string
	for _, e := range entities {
		var metadata map[string]any
		if err := json.Unmarshal([]byte(e.Metadata), &metadata); err != nil {
			s.logger.Warn("corrupt metadata on vector document, excluded from predicate delete",
				"document_id", e.ID, "error", err)
			continue
		}
		if stored, ok := metadata[key]; ok && metadataValueEqual(stored, value) {
			ids = append(ids, e.ID)
		}
	}

	if len(ids) == 0 {
		return 0, nil
	}

	result := database.ApplyConditions(s.db.Session(ctx), repository.WithDocumentIDIn(ids)).
		Delete(&VectorDocumentModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete documents by metadata: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteDocumentsByConvention bulk-deletes a tenant's documents, making
// re-indexing idempotent.
func (s *VectorStore) DeleteDocumentsByConvention(ctx context.Context, conventionID int64) (int64, error) {
	result := s.db.Session(ctx).Where("convention_id = ?", conventionID).Delete(&VectorDocumentModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete documents for convention %d: %w", conventionID, result.Error)
	}
	return result.RowsAffected, nil
}

// Count returns the total number of stored documents.
func (s *VectorStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.Session(ctx).Model(&VectorDocumentModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count vector documents: %w", err)
	}
	return count, nil
}

// CountConvention returns the number of documents for one tenant.
func (s *VectorStore) CountConvention(ctx context.Context, conventionID int64) (int64, error) {
	var count int64
	err := s.db.Session(ctx).
		Model(&VectorDocumentModel{}).
		Where("convention_id = ?", conventionID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count documents for convention %d: %w", conventionID, err)
	}
	return count, nil
}

// ConventionIDFromMetadata extracts the numeric convention id from chunk
// metadata. JSON round-trips turn numbers into float64 and some callers
// supply strings, so all numeric shapes are accepted.
func ConventionIDFromMetadata(metadata map[string]any) (int64, error) {
	raw, ok := metadata[rag.MetaConventionID]
	if !ok {
		return 0, rag.ErrMissingConventionID
	}

	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case json.Number:
		id, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q", rag.ErrMissingConventionID, v)
		}
		return id, nil
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", rag.ErrMissingConventionID, v)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", rag.ErrMissingConventionID, raw)
	}
}

// metadataValueEqual compares a stored metadata value against a query
// value across the numeric shapes JSON decoding produces.
func metadataValueEqual(stored, query any) bool {
	if stored == query {
		return true
	}
	return fmt.Sprint(stored) == fmt.Sprint(query)
}

var _ rag.VectorStore = (*VectorStore)(nil)
