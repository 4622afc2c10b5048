package relevance

import (
	"fmt"
	"math"
)

// Scorer converts a raw cosine similarity in [0, 1] into a match percentage
// and re-validates the query's minimum-score threshold.
//
// The min-score filter is applied upstream at the vector-store boundary;
// re-checking here is defense-in-depth so a driver that ignores the
// threshold cannot leak sub-threshold candidates into the ranking.
type Scorer struct{}

// Score returns the match percentage for raw, rounded to 2 decimals.
// The second return is false when the candidate is filtered out by minScore
// (dropped, not zero-scored). NaN or negative input returns ErrInvalidScore.
func (Scorer) Score(raw, minScore float64) (float64, bool, error) {
	if math.IsNaN(raw) || raw < 0 {
		return 0, false, fmt.Errorf("%w: %v", ErrInvalidScore, raw)
	}

	if raw < minScore {
		return 0, false, nil
	}

	return round2(raw * 100), true, nil
}
