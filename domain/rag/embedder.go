package rag

import "context"

// Embedder maps text to a fixed-dimension unit vector. The zero vector is
// returned unmodified for unembeddable (empty) input.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)

	// Dimensions returns the fixed embedding length for this embedder.
	// Changing it invalidates all previously stored vectors.
	Dimensions() int
}
