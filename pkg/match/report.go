package match

import (
	"fmt"
	"strings"

	"github.com/echoguardhq/echoguard/pkg/auditlog"
	"github.com/echoguardhq/echoguard/pkg/protocol"
	"github.com/echoguardhq/echoguard/pkg/relevance"
)

// Request is one crisis query: a text description and an optional image.
type Request struct {
	Description string `json:"description"`
	Image       []byte `json:"image,omitempty"`
}

// Report is the decision returned for an analyzed query.
type Report struct {
	// IncidentID is the audit-log identifier assigned to this query.
	IncidentID auditlog.IncidentID `json:"incident_id"`

	// Matches are the ranked candidates, best first.
	Matches []relevance.ScoredCandidate `json:"matches"`

	// ProtocolType is the crisis type whose protocol was selected, empty
	// when no candidate matched.
	ProtocolType string `json:"protocol_type,omitempty"`

	// Protocol is the selected response protocol.
	Protocol protocol.Protocol `json:"protocol"`

	// Explanation is a human-readable summary of the decision.
	Explanation string `json:"explanation"`

	// Confidence is the relevance score of the best match, 0 with no match.
	Confidence float64 `json:"confidence"`

	// Degraded lists pipeline substitutions applied to this query.
	Degraded []string `json:"degraded,omitempty"`
}

// buildExplanation summarizes the ranking outcome for operators.
func buildExplanation(ranked []relevance.ScoredCandidate, degraded []string) string {
	var b strings.Builder

	if len(ranked) == 0 {
		b.WriteString("No stored incident cleared the similarity threshold; fallback protocol applies.")
	} else {
		best := ranked[0]
		label := best.Meta.Type
		if label == "" {
			label = "incident"
		}

		fmt.Fprintf(&b, "Best match is a %s", label)
		if best.Meta.Location != "" {
			fmt.Fprintf(&b, " at %s", best.Meta.Location)
		}
		fmt.Fprintf(&b, ": %.1f%% similar", best.SimilarityPercent)
		if best.AgeHours > 0 {
			fmt.Fprintf(&b, ", %.0fh old (decay %.2f)", best.AgeHours, best.DecayFactor)
		}
		fmt.Fprintf(&b, ", relevance %.1f.", best.RelevanceScore)

		if len(ranked) > 1 {
			fmt.Fprintf(&b, " %d candidates ranked.", len(ranked))
		}
	}

	if len(degraded) > 0 {
		fmt.Fprintf(&b, " Degraded: %s.", strings.Join(degraded, "; "))
	}

	return b.String()
}
