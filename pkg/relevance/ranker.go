package relevance

import (
	"fmt"
	"log/slog"
	"sort"
)

// Blend holds the composite-score weights. The 0.5/0.3/0.2 split over a
// 0–100 scale is a fixed policy constant: downstream consumers depend on
// this exact blend, so it is exposed as configuration but must sum to 1.0.
type Blend struct {
	Similarity float64
	Recency    float64
	Severity   float64
}

// DefaultBlend returns the canonical 50% similarity, 30% recency,
// 20% severity split.
func DefaultBlend() Blend {
	return Blend{Similarity: 0.5, Recency: 0.3, Severity: 0.2}
}

// DefaultSeverityWeight is used when a candidate's severity label is
// unknown or missing.
const DefaultSeverityWeight = 0.5

// Ranker orders scored candidates by composite relevance.
type Ranker struct {
	Weights Blend

	// Logger receives data-quality events for candidates with missing
	// fields. Nil disables logging; candidates are still defaulted, never
	// dropped.
	Logger *slog.Logger
}

// NewRanker returns a Ranker with the default blend.
func NewRanker(logger *slog.Logger) Ranker {
	return Ranker{Weights: DefaultBlend(), Logger: logger}
}

// Rank computes each candidate's composite relevance score and returns the
// candidates ordered by it, descending:
//
//	relevance = simPercent*wSim + decay*100*wRec + sevWeight*100*wSev
//
// Ties preserve input order (stable sort) so consumers get reproducible
// orderings. An empty input returns an empty slice, not an error.
//
// A candidate missing its similarity or decay annotation is scored with
// similarity 0 and decay 1.0 respectively; a missing or unknown severity
// label falls back to DefaultSeverityWeight. Every fallback is recorded in
// the candidate's DataQuality notes and logged, never silently dropped.
func (r Ranker) Rank(candidates []ScoredCandidate, severityWeights map[string]float64) []ScoredCandidate {
	ranked := make([]ScoredCandidate, len(candidates))
	copy(ranked, candidates)

	for i := range ranked {
		c := &ranked[i]

		sim := c.SimilarityPercent
		if sim < 0 {
			sim = 0
			c.DataQuality = append(c.DataQuality, "missing similarity, defaulted to 0")
			r.warn("candidate missing similarity", c.ID)
		}

		decay := c.DecayFactor
		if decay <= 0 {
			decay = 1.0
			c.DataQuality = append(c.DataQuality, "missing decay factor, defaulted to 1.0")
			r.warn("candidate missing decay factor", c.ID)
		}

		weight, ok := severityWeights[c.Meta.Severity]
		if !ok {
			weight = DefaultSeverityWeight
			if c.Meta.Severity == "" {
				c.DataQuality = append(c.DataQuality, "missing severity, weight defaulted to 0.5")
				r.warn("candidate missing severity", c.ID)
			} else {
				c.DataQuality = append(c.DataQuality,
					fmt.Sprintf("unknown severity %q, weight defaulted to 0.5", c.Meta.Severity))
				r.warn("candidate has unknown severity", c.ID)
			}
		}

		c.RelevanceScore = round2(
			sim*r.Weights.Similarity +
				decay*100*r.Weights.Recency +
				weight*100*r.Weights.Severity,
		)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RelevanceScore > ranked[j].RelevanceScore
	})

	return ranked
}

func (r Ranker) warn(msg, id string) {
	if r.Logger != nil {
		r.Logger.Warn(msg, "candidate_id", id)
	}
}
