package persistence

import "math"

// CosineSimilarity computes the cosine similarity between two vectors,
// dot(a,b) / (|a|*|b|), clamped to [-1, 1].
//
// Degenerate inputs are resolved deterministically rather than raised:
// mismatched lengths and zero-magnitude vectors report ok=false so the
// caller can skip the candidate, and a NaN quotient resolves to +1 when
// the dot product is positive and -1 otherwise.
func CosineSimilarity(a, b []float64) (float64, bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}

	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}

	if magA == 0 || magB == 0 {
		return 0, false
	}

	similarity := dot / (math.Sqrt(magA) * math.Sqrt(magB))
	if math.IsNaN(similarity) {
		if dot > 0 {
			return 1, true
		}
		return -1, true
	}

	if similarity > 1 {
		similarity = 1
	} else if similarity < -1 {
		similarity = -1
	}
	return similarity, true
}
