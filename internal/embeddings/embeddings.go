package embeddings

import (
	"context"
	"math"
)

// Vector is a simple float32 slice wrapper.
type Vector []float32

// Embedder defines the embedding interface.
type Embedder interface {
	Embed(ctx context.Context, text string) (Vector, error)
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0
// when the vectors are empty, differ in length, or either has zero norm.
func CosineSimilarity(a, b Vector) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

// MostSimilar returns the index of the candidate closest to query, or -1
// when there are no candidates.
func MostSimilar(query Vector, candidates []Vector) int {
	best, bestScore := -1, float32(math.Inf(-1))
	for i, c := range candidates {
		if s := CosineSimilarity(query, c); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}
