// Package facesearch matches faces across an event gallery. Each photo
// contributes at most one feature vector, extracted from its largest
// detected face; a visitor selfie is vectorized the same way and
// compared by cosine similarity.
package facesearch

import "math"

// Vector is a face feature vector: a normalized grayscale face chip
// flattened row-major. All vectors produced by the Extractor share the
// same dimensionality.
type Vector []float32

// Cosine computes the cosine similarity between two vectors, clamped
// to [-1, 1] to absorb floating point error. Mismatched or empty
// inputs score -1.
func Cosine(a, b Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return -1
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return -1
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim > 1 {
		sim = 1
	}
	if sim < -1 {
		sim = -1
	}
	return sim
}
