package eventstream

import (
	"time"

	"github.com/echoguardhq/echoguard/pkg/crisis"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeDecisionRecorded is emitted after a matching decision is
	// recorded in the audit log.
	EventTypeDecisionRecorded = "echoguard.decision.recorded"
)

// DecisionRecordedEvent is a transport-neutral event payload for a recorded
// matching decision.
type DecisionRecordedEvent struct {
	SchemaVersion int           `json:"schema_version"`
	EventType     string        `json:"event_type"`
	EventID       string        `json:"event_id"`
	EmittedAt     time.Time     `json:"emitted_at"`
	Source        EventSource   `json:"source"`
	Query         QueryMeta     `json:"query"`
	Decision      DecisionMeta  `json:"decision"`
	Matches       []MatchRecord `json:"matches"`
}

// EventSource identifies where the decision originated.
type EventSource struct {
	Service  string `json:"service"`
	Provider string `json:"provider"`
}

// QueryMeta captures query lifecycle metadata for the event.
type QueryMeta struct {
	IncidentID  int64     `json:"incident_id"`
	Description string    `json:"description,omitempty"`
	HasImage    bool      `json:"has_image"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMs  int64     `json:"duration_ms"`
	Degraded    []string  `json:"degraded,omitempty"`
}

// DecisionMeta captures the outcome of the matching decision.
type DecisionMeta struct {
	Summary    string  `json:"summary"`
	Confidence float64 `json:"confidence"`
	Protocol   string  `json:"protocol,omitempty"`
}

// MatchRecord is a single ranked match included in the event.
type MatchRecord struct {
	ID                string      `json:"id"`
	Meta              crisis.Meta `json:"meta"`
	SimilarityPercent float64     `json:"similarity_percent"`
	RelevanceScore    float64     `json:"relevance_score"`
}
