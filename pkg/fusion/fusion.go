// Package fusion combines an image embedding and a text embedding into a
// single normalized query vector.
//
// Fuse is a pure function: it holds no state and may be called concurrently.
// The fusion weight is a policy decision owned by the caller (see the
// matching.image_weight config key), not by this package.
package fusion

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch is returned when the two input vectors do not share
// the same dimension.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Fuse computes the weighted combination of an image embedding and a text
// embedding and normalizes the result to unit Euclidean norm:
//
//	hybrid[i] = imageWeight*imageVec[i] + (1-imageWeight)*textVec[i]
//
// If both inputs are degenerate (the weighted sum has zero norm), the
// unnormalized zero vector is returned rather than dividing by zero. That is
// a defined degenerate case, not an error.
func Fuse(imageVec, textVec []float32, imageWeight float64) ([]float32, error) {
	if len(imageVec) != len(textVec) {
		return nil, fmt.Errorf("%w: image has %d dimensions, text has %d",
			ErrDimensionMismatch, len(imageVec), len(textVec))
	}

	textWeight := 1.0 - imageWeight

	hybrid := make([]float64, len(imageVec))
	var norm float64
	for i := range imageVec {
		v := imageWeight*float64(imageVec[i]) + textWeight*float64(textVec[i])
		hybrid[i] = v
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, len(hybrid))
	if norm == 0 {
		for i, v := range hybrid {
			out[i] = float32(v)
		}
		return out, nil
	}

	for i, v := range hybrid {
		out[i] = float32(v / norm)
	}
	return out, nil
}
