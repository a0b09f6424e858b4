package rag

// SearchResult is one ranked hit from a similarity search. It is computed
// per query and never persisted.
type SearchResult struct {
	documentID string
	content    string
	similarity float64
	metadata   map[string]any
}

// NewSearchResult creates a SearchResult.
func NewSearchResult(documentID, content string, similarity float64, metadata map[string]any) SearchResult {
	return SearchResult{
		documentID: documentID,
		content:    content,
		similarity: similarity,
		metadata:   metadata,
	}
}

// DocumentID returns the id of the stored document this hit came from.
func (r SearchResult) DocumentID() string { return r.documentID }

// Content returns the stored document text.
func (r SearchResult) Content() string { return r.content }

// Similarity returns the cosine similarity in [-1, 1].
func (r SearchResult) Similarity() float64 { return r.similarity }

// Metadata returns the parsed document metadata (may be empty).
func (r SearchResult) Metadata() map[string]any { return r.metadata }
