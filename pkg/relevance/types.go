// Package relevance converts raw vector-store similarity scores into
// calibrated match percentages, applies temporal decay to aging incidents,
// and ranks candidates by a blend of similarity, recency, and severity.
//
// Scorer, DecayModel, and Ranker are stateless values with no shared mutable
// state; they are safe for concurrent use and perform no I/O.
package relevance

import (
	"math"

	"github.com/echoguardhq/echoguard/pkg/crisis"
)

// Candidate is a record returned from a similarity query, prior to scoring.
// RawScore is cosine similarity in [0, 1]; drivers that speak a different
// metric space convert before handing candidates to this package.
type Candidate struct {
	ID       string      `json:"id"`
	RawScore float64     `json:"raw_score"`
	Meta     crisis.Meta `json:"meta"`
}

// ScoredCandidate is a Candidate annotated by the scoring pipeline.
// RelevanceScore is only defined once Ranker.Rank has processed the
// candidate; it is always computed from the DecayFactor on the same record.
type ScoredCandidate struct {
	Candidate

	// SimilarityPercent is the calibrated match percentage in [0, 100].
	SimilarityPercent float64 `json:"similarity_percent"`

	// DecayFactor is the temporal decay multiplier in [floor, 1.0].
	DecayFactor float64 `json:"decay_factor"`

	// AgeHours is the candidate's age at scoring time.
	AgeHours float64 `json:"age_hours"`

	// AdjustedScore is SimilarityPercent discounted by DecayFactor.
	AdjustedScore float64 `json:"adjusted_score"`

	// RelevanceScore is the final composite ranking score.
	RelevanceScore float64 `json:"relevance_score"`

	// DataQuality lists defaulting events applied to this candidate
	// (missing timestamp, unknown severity). Informational only.
	DataQuality []string `json:"data_quality,omitempty"`
}

// round2 rounds to 2 decimal digits for display stability.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
