package match

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/echoguardhq/echoguard/pkg/auditlog"
	"github.com/echoguardhq/echoguard/pkg/crisis"
	"github.com/echoguardhq/echoguard/pkg/vector"
)

// SaveIncident embeds a user-reported incident and stores it in the vector
// store so future queries can match against it. Unlike Analyze, a provider
// failure here is an error: storing a degraded embedding would poison the
// corpus.
func (m *Matcher) SaveIncident(ctx context.Context, description string, meta crisis.Meta) (string, error) {
	if description == "" {
		return "", ErrEmptyQuery
	}

	embedding, err := m.embedder.EmbedText(ctx, description)
	if err != nil {
		return "", fmt.Errorf("embedding incident description: %w", err)
	}

	meta.Description = description
	meta.UserUploaded = true
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now().UTC()
	}

	doc := vector.Document{
		ID:        uuid.NewString(),
		Embedding: embedding,
		Meta:      meta,
	}

	if err := m.driver.Upsert(ctx, []vector.Document{doc}); err != nil {
		return "", fmt.Errorf("storing incident: %w", err)
	}

	m.logger.Info("saved incident", "id", doc.ID, "type", meta.Type)

	return doc.ID, nil
}

// ListCrises returns up to limit stored incidents from the vector store.
// A non-positive limit uses the driver's default scan limit.
func (m *Matcher) ListCrises(ctx context.Context, limit int) ([]vector.Document, error) {
	if limit <= 0 {
		limit = vector.DefaultScanLimit
	}

	docs, err := m.driver.Scan(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("scanning incidents: %w", err)
	}

	return docs, nil
}

// GetCrisis fetches one stored incident by ID. Returns vector.ErrNotFound
// when no document has that ID.
func (m *Matcher) GetCrisis(ctx context.Context, id string) (vector.Document, error) {
	if id == "" {
		return vector.Document{}, vector.ErrNotFound
	}

	docs, err := m.driver.Get(ctx, []string{id})
	if err != nil {
		return vector.Document{}, fmt.Errorf("fetching incident %s: %w", id, err)
	}
	if len(docs) == 0 {
		return vector.Document{}, vector.ErrNotFound
	}

	return docs[0], nil
}

// AuditSnapshot returns the audit log's current state.
func (m *Matcher) AuditSnapshot(limit int) auditlog.Snapshot {
	return m.audit.Snapshot(limit)
}

// Close releases the matcher's providers. The audit log needs no teardown.
func (m *Matcher) Close() error {
	var firstErr error

	if err := m.embedder.Close(); err != nil {
		firstErr = err
	}
	if m.fallback != nil {
		if err := m.fallback.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := m.driver.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if m.publisher != nil {
		if err := m.publisher.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
