// Package rag holds the retrieval-side value types: document chunks,
// search results, embeddings, and provider settings.
package rag

// Metadata keys every chunk must carry.
const (
	MetaType         = "type"
	MetaConventionID = "convention_id"
)

// DocumentChunk is one atomic unit of indexable text plus its provenance
// metadata. Chunks are produced by the document builder and consumed only
// by the indexing path.
type DocumentChunk struct {
	content  string
	metadata map[string]any
}

// NewDocumentChunk creates a DocumentChunk. The metadata map is copied.
func NewDocumentChunk(content string, metadata map[string]any) DocumentChunk {
	md := make(map[string]any, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}
	return DocumentChunk{content: content, metadata: md}
}

// Content returns the chunk text.
func (c DocumentChunk) Content() string { return c.content }

// Metadata returns a copy of the chunk metadata.
func (c DocumentChunk) Metadata() map[string]any {
	md := make(map[string]any, len(c.metadata))
	for k, v := range c.metadata {
		md[k] = v
	}
	return md
}

// MetadataValue returns a single metadata value.
func (c DocumentChunk) MetadataValue(key string) (any, bool) {
	v, ok := c.metadata[key]
	return v, ok
}

// Type returns the chunk category from metadata, or empty.
func (c DocumentChunk) Type() string {
	if v, ok := c.metadata[MetaType].(string); ok {
		return v
	}
	return ""
}
