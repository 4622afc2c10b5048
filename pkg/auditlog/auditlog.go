// Package auditlog provides the append-only in-process incident log used
// for decision auditability.
//
// The store is process-scoped and deliberately holds no persistence
// guarantee across restarts; durable incident history lives in the external
// vector store's payloads, not here. Incidents are never mutated after
// creation except to append decision entries, and never deleted during the
// process lifetime.
package auditlog

import (
	"errors"
	"sync"
	"time"

	"github.com/echoguardhq/echoguard/pkg/crisis"
)

// ErrUnknownIncident is returned when a decision is appended against an
// incident ID the store never issued. That is a programming error on the
// caller's side, not a recoverable condition.
var ErrUnknownIncident = errors.New("unknown incident")

// IncidentID identifies an incident within the process lifetime.
// IDs increase monotonically in append order, starting at 1.
type IncidentID int64

// DecisionEntry records one decision made against an incident.
// Immutable once appended.
type DecisionEntry struct {
	Timestamp       time.Time `json:"timestamp"`
	QuerySummary    string    `json:"query_summary"`
	DecisionSummary string    `json:"decision_summary"`

	// Confidence is in [0, 100].
	Confidence float64 `json:"confidence"`
}

// Incident is one processed crisis query and its decision trail.
type Incident struct {
	ID          IncidentID      `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	QueryVector []float32       `json:"-"`
	Description string          `json:"description"`
	Meta        crisis.Meta     `json:"meta"`
	Decisions   []DecisionEntry `json:"decisions"`
}

// Snapshot is a read-only view of the store.
type Snapshot struct {
	// TotalCount is the number of incidents ever appended.
	TotalCount int `json:"total_count"`

	// MostRecent holds at most the requested number of incidents, in
	// insertion order with the most recent last (matching append order).
	MostRecent []Incident `json:"most_recent"`
}

// Store is the in-memory incident log. Appends and snapshots may be called
// concurrently; a single RWMutex serializes writers against readers, and
// reads copy out the requested slice so callers never hold references into
// the log.
type Store struct {
	mu        sync.RWMutex
	incidents []*Incident

	now func() time.Time
}

// NewStore creates an empty incident log.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// AppendIncident records a processed query and returns its ID. It never
// fails: there is no external I/O on this path.
func (s *Store) AppendIncident(queryVector []float32, description string, meta crisis.Meta) IncidentID {
	vec := make([]float32, len(queryVector))
	copy(vec, queryVector)

	s.mu.Lock()
	defer s.mu.Unlock()

	id := IncidentID(len(s.incidents) + 1)
	s.incidents = append(s.incidents, &Incident{
		ID:          id,
		Timestamp:   s.now(),
		QueryVector: vec,
		Description: description,
		Meta:        meta,
	})

	return id
}

// AppendDecision appends a decision entry to an existing incident.
// Returns ErrUnknownIncident if the ID was never issued by this store.
func (s *Store) AppendDecision(id IncidentID, querySummary, decisionSummary string, confidence float64) (DecisionEntry, error) {
	entry := DecisionEntry{
		Timestamp:       s.now(),
		QuerySummary:    querySummary,
		DecisionSummary: decisionSummary,
		Confidence:      confidence,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id < 1 || int(id) > len(s.incidents) {
		return DecisionEntry{}, ErrUnknownIncident
	}

	incident := s.incidents[id-1]
	incident.Decisions = append(incident.Decisions, entry)

	return entry, nil
}

// Snapshot returns the total incident count and the limit most recently
// appended incidents in insertion order (most recent last). A non-positive
// limit returns an empty MostRecent slice with the count intact.
func (s *Store) Snapshot(limit int) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{TotalCount: len(s.incidents)}
	if limit <= 0 {
		return snap
	}

	start := len(s.incidents) - limit
	if start < 0 {
		start = 0
	}

	snap.MostRecent = make([]Incident, 0, len(s.incidents)-start)
	for _, inc := range s.incidents[start:] {
		c := *inc
		c.Decisions = make([]DecisionEntry, len(inc.Decisions))
		copy(c.Decisions, inc.Decisions)
		snap.MostRecent = append(snap.MostRecent, c)
	}

	return snap
}
