// Package vector provides interfaces and implementations for storing and
// querying crisis incident embeddings.
package vector

import (
	"context"

	"github.com/echoguardhq/echoguard/pkg/crisis"
)

// DefaultScanLimit bounds administrative Scan listings.
const DefaultScanLimit = 1000

// Document represents a stored incident with its embedding and metadata.
type Document struct {
	// ID is a unique identifier for the incident (a UUID for user
	// reports, stable strings for seeded corpus entries).
	ID string `json:"id"`

	// Embedding is the fused query vector the incident was stored under.
	Embedding []float32 `json:"embedding,omitempty"`

	// Meta is the incident's structured payload.
	Meta crisis.Meta `json:"meta"`
}

// QueryResult is a search hit with its similarity score.
type QueryResult struct {
	Document

	// Score is cosine similarity in [0, 1]; higher is more similar.
	// Drivers whose backend speaks a different metric space convert
	// before returning.
	Score float32 `json:"score"`
}

// Driver handles storage and retrieval of incident embeddings.
type Driver interface {
	// Upsert stores documents with their embeddings, replacing any
	// existing document with the same ID.
	Upsert(ctx context.Context, docs []Document) error

	// Query finds the topK documents most similar to the embedding.
	// Hits scoring below minScore are excluded. An empty result is
	// "no matches", not an error.
	Query(ctx context.Context, embedding []float32, topK int, minScore float32) ([]QueryResult, error)

	// Get retrieves documents by their IDs.
	Get(ctx context.Context, ids []string) ([]Document, error)

	// Scan lists up to limit stored documents for administrative
	// inspection. A non-positive limit uses DefaultScanLimit.
	Scan(ctx context.Context, limit int) ([]Document, error)

	// Close releases any resources held by the driver.
	Close() error
}
