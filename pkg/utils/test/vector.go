package testutils

import (
	"context"

	"github.com/echoguardhq/echoguard/pkg/vector"
)

// MockVectorDriver is a test vector driver
type MockVectorDriver struct {
	// Documents accumulates all documents passed to Upsert.
	Documents []vector.Document

	// Results is returned by Query, filtered by minScore and capped at topK.
	Results []vector.QueryResult

	// FailUpsert causes Upsert to return an error.
	FailUpsert bool

	// FailQuery causes Query to return an error.
	FailQuery bool
}

func NewMockVectorDriver() *MockVectorDriver {
	return &MockVectorDriver{
		Documents: make([]vector.Document, 0),
		Results:   make([]vector.QueryResult, 0),
	}
}

func (m *MockVectorDriver) Upsert(_ context.Context, docs []vector.Document) error {
	if m.FailUpsert {
		return vector.ErrConnection
	}
	m.Documents = append(m.Documents, docs...)
	return nil
}

func (m *MockVectorDriver) Query(_ context.Context, _ []float32, topK int, minScore float32) ([]vector.QueryResult, error) {
	if m.FailQuery {
		return nil, vector.ErrConnection
	}

	out := make([]vector.QueryResult, 0, len(m.Results))
	for _, r := range m.Results {
		if minScore > 0 && r.Score < minScore {
			continue
		}
		out = append(out, r)
		if len(out) == topK {
			break
		}
	}
	return out, nil
}

func (m *MockVectorDriver) Get(_ context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	out := make([]vector.Document, 0, len(ids))
	for _, doc := range m.Documents {
		if want[doc.ID] {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *MockVectorDriver) Scan(_ context.Context, limit int) ([]vector.Document, error) {
	if limit <= 0 || limit > len(m.Documents) {
		limit = len(m.Documents)
	}
	return m.Documents[:limit], nil
}

func (m *MockVectorDriver) Close() error {
	return nil
}
