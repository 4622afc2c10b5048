// Package fallback provides a deterministic embedder for degraded mode.
//
// When the real embedding provider is unavailable, the pipeline must still
// produce a result. This embedder derives a fixed seed from the input and
// generates a reproducible unit vector, so degraded-mode behavior is stable
// across runs and testable. It is never a silent substitute: the matcher
// records its use in the report's degraded notes.
package fallback

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/echoguardhq/echoguard/pkg/embeddings"
)

// Embedder generates deterministic seeded unit vectors.
type Embedder struct {
	dimensions int
}

// NewEmbedder creates a fallback embedder producing vectors of the given
// dimension.
func NewEmbedder(dimensions uint) *Embedder {
	return &Embedder{dimensions: int(dimensions)}
}

// EmbedText returns a unit vector seeded from the text.
func (e *Embedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	return e.generate([]byte(text)), nil
}

// EmbedImage returns a unit vector seeded from the image bytes.
func (e *Embedder) EmbedImage(_ context.Context, image []byte) ([]float32, error) {
	return e.generate(image), nil
}

func (e *Embedder) generate(input []byte) []float32 {
	h := fnv.New64a()
	_, _ = h.Write(input)
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	vec := make([]float64, e.dimensions)
	var norm float64
	for i := range vec {
		vec[i] = rng.NormFloat64()
		norm += vec[i] * vec[i]
	}
	norm = math.Sqrt(norm)

	out := make([]float32, e.dimensions)
	if norm == 0 {
		return out
	}
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out
}

// Close is a no-op.
func (e *Embedder) Close() error {
	return nil
}

// Ensure Embedder implements embeddings.Embedder.
var _ embeddings.Embedder = (*Embedder)(nil)
