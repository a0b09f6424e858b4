// Package embedding maps text to fixed-dimension unit vectors, either
// through a model backend or a deterministic hash-seeded fallback.
package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
)

// Dimensions is the fixed embedding length for the lifetime of the
// process. Changing it invalidates all previously stored vectors.
const Dimensions = 384

// Deterministic embeds text by seeding a PRNG from a stable hash of the
// input and normalizing the result. The same text always yields the same
// vector, which keeps retrieval self-consistent when no real model is
// available. Empty input returns the zero vector, treated as
// unembeddable downstream.
type Deterministic struct {
	dimensions int
}

// NewDeterministic creates a Deterministic embedder with the standard
// dimension count.
func NewDeterministic() *Deterministic {
	return &Deterministic{dimensions: Dimensions}
}

// Embed returns the L2-normalized vector for text. It never fails.
func (d *Deterministic) Embed(_ context.Context, text string) ([]float64, error) {
	vec := make([]float64, d.dimensions)
	if strings.TrimSpace(text) == "" {
		return vec, nil
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	var magnitude float64
	for i := range vec {
		vec[i] = rng.Float64()*2 - 1
		magnitude += vec[i] * vec[i]
	}

	magnitude = math.Sqrt(magnitude)
	if magnitude == 0 {
		return vec, nil
	}
	for i := range vec {
		vec[i] /= magnitude
	}
	return vec, nil
}

// Dimensions returns the fixed embedding length.
func (d *Deterministic) Dimensions() int {
	return d.dimensions
}
