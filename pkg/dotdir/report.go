package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	reportFile = "last_report.json"
)

// LastReport is the persisted record of the most recent analysis run,
// written so `echoguard incidents` and follow-up commands can show the
// latest decision without hitting the API.
type LastReport struct {
	// IncidentID is the audit-log identifier assigned to the query.
	IncidentID int64 `json:"incident_id"`

	// Description is the query text that was analyzed.
	Description string `json:"description,omitempty"`

	// Confidence is the relevance score of the best match, 0 when no
	// match cleared the threshold.
	Confidence float64 `json:"confidence"`

	// Protocol is the crisis type whose response protocol was selected.
	Protocol string `json:"protocol,omitempty"`

	// AnalyzedAt is when the analysis completed.
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// LoadLastReport loads the last analysis report from a target
// .echoguard/last_report.json. Returns nil, nil if no report exists.
// If overrideDir is non-empty, it is used instead of the default
// ~/.echoguard/ location.
func (m *Manager) LoadLastReport(overrideDir string) (*LastReport, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, reportFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading last report: %w", err)
	}

	report := &LastReport{}
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parsing last report: %w", err)
	}

	return report, nil
}

// SaveLastReport persists the report to a target .echoguard/last_report.json.
func (m *Manager) SaveLastReport(report *LastReport, overrideDir string) error {
	if report == nil {
		return errors.New("cannot save nil report")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling last report: %w", err)
	}

	path := filepath.Join(dir, reportFile)
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("writing last report: %w", err)
	}

	return nil
}

// ClearLastReport removes the last report file.
// Returns nil if the file doesn't exist (already cleared).
func (m *Manager) ClearLastReport(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, reportFile)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing last report: %w", err)
	}

	return nil
}
