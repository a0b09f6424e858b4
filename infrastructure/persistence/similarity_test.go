package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
		ok       bool
	}{
		{
			name:     "identical vectors",
			a:        []float64{1, 2, 3},
			b:        []float64{1, 2, 3},
			expected: 1,
			ok:       true,
		},
		{
			name:     "opposite vectors",
			a:        []float64{1, 0},
			b:        []float64{-1, 0},
			expected: -1,
			ok:       true,
		},
		{
			name:     "orthogonal vectors",
			a:        []float64{1, 0},
			b:        []float64{0, 1},
			expected: 0,
			ok:       true,
		},
		{
			name: "zero magnitude",
			a:    []float64{0, 0},
			b:    []float64{1, 1},
			ok:   false,
		},
		{
			name: "dimension mismatch",
			a:    []float64{1, 2},
			b:    []float64{1, 2, 3},
			ok:   false,
		},
		{
			name: "both empty",
			a:    nil,
			b:    nil,
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CosineSimilarity(tt.a, tt.b)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, got, 1e-9)
			}
		})
	}
}

func TestCosineSimilarity_ScaleInvariant(t *testing.T) {
	a := []float64{0.3, 0.7, 0.1}
	scaled := []float64{0.6, 1.4, 0.2}

	got, ok := CosineSimilarity(a, scaled)
	assert.True(t, ok)
	assert.InDelta(t, 1, got, 1e-9)
}

func TestCosineSimilarity_ExtremeValuesResolveBySign(t *testing.T) {
	huge := make([]float64, 2)
	huge[0] = 1e308
	huge[1] = 1e308

	got, ok := CosineSimilarity(huge, huge)
	assert.True(t, ok)
	assert.Equal(t, 1.0, got)

	negated := []float64{-1e308, -1e308}
	got, ok = CosineSimilarity(huge, negated)
	assert.True(t, ok)
	assert.Equal(t, -1.0, got)
}
