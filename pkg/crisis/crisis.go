// Package crisis defines the shared domain types for crisis incidents:
// the schema'd incident metadata carried through the vector store and the
// ranking pipeline, and the severity ladder used for relevance weighting.
package crisis

import "time"

// Severity labels, ordered from least to most severe.
const (
	SeverityInfo     = "info"
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Meta is the structured metadata attached to a stored incident.
//
// Fields the ranking pipeline depends on (Severity, Timestamp) are named so
// missing-value defaulting is explicit rather than buried in map lookups.
// Extra carries forward-compatible payload keys that have no named field.
type Meta struct {
	Type           string            `json:"type,omitempty"`
	Location       string            `json:"location,omitempty"`
	Description    string            `json:"description,omitempty"`
	Severity       string            `json:"severity,omitempty"`
	Protocol       string            `json:"protocol,omitempty"`
	AffectedPeople int               `json:"affected_people,omitempty"`
	Casualties     int               `json:"casualties,omitempty"`
	DamageEstimate string            `json:"damage_estimate,omitempty"`
	ResponseTime   string            `json:"response_time,omitempty"`
	Timestamp      time.Time         `json:"timestamp,omitempty"`
	UserUploaded   bool              `json:"user_uploaded,omitempty"`
	Extra          map[string]string `json:"extra,omitempty"`
}

// DefaultSeverityWeights returns the severity → weight table used by the
// relevance ranker. Unknown labels fall back to the ranker's own default
// (0.5), so this table only needs the known ladder.
func DefaultSeverityWeights() map[string]float64 {
	return map[string]float64{
		SeverityInfo:     0.2,
		SeverityLow:      0.35,
		SeverityMedium:   0.5,
		SeverityHigh:     0.8,
		SeverityCritical: 1.0,
	}
}
