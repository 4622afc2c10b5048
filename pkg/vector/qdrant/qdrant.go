// Package qdrant provides a Qdrant vector database driver.
//
// The collection is created with cosine distance, so scores returned by
// Query are cosine similarity in [0, 1] for normalized vectors and need no
// conversion. This pins the metric-space contract the relevance scorer
// assumes.
package qdrant

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"github.com/echoguardhq/echoguard/pkg/vector"
)

const (
	// DefaultCollectionName is the default collection for crisis embeddings.
	DefaultCollectionName = "crises"

	// DefaultPort is Qdrant's gRPC port.
	DefaultPort = 6334
)

// Driver implements vector.Driver backed by Qdrant's gRPC API.
type Driver struct {
	client     *qdrant.Client
	collection string
	logger     *slog.Logger
}

// Config holds configuration for the Qdrant driver.
type Config struct {
	// Target is the Qdrant gRPC address, "host:port" or just "host"
	// (defaults to port 6334).
	Target string

	// CollectionName is the collection to use. Defaults to
	// DefaultCollectionName if empty.
	CollectionName string

	// Dimensions is the embedding dimension used when the collection has
	// to be created. Required.
	Dimensions uint

	// APIKey authenticates against Qdrant Cloud. Optional.
	APIKey string
}

// NewDriver connects to Qdrant and ensures the collection exists.
func NewDriver(ctx context.Context, c Config, logger *slog.Logger) (*Driver, error) {
	if c.Target == "" {
		return nil, fmt.Errorf("qdrant target is required")
	}
	if c.Dimensions == 0 {
		return nil, fmt.Errorf("qdrant embedding dimensions cannot be 0, must be configured")
	}

	collection := c.CollectionName
	if collection == "" {
		collection = DefaultCollectionName
	}

	host, port, err := splitTarget(c.Target)
	if err != nil {
		return nil, fmt.Errorf("parsing qdrant target %q: %w", c.Target, err)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: c.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to qdrant: %v", vector.ErrConnection, err)
	}

	d := &Driver{
		client:     client,
		collection: collection,
		logger:     logger,
	}

	if err := d.ensureCollection(ctx, uint64(c.Dimensions)); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("connected to qdrant",
		"target", c.Target,
		"collection", collection,
		"dimensions", c.Dimensions,
	)

	return d, nil
}

func splitTarget(target string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		// No port in the target, use the gRPC default.
		return target, DefaultPort, nil
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %q: %w", portStr, err)
	}
	return host, port, nil
}

func (d *Driver) ensureCollection(ctx context.Context, dimensions uint64) error {
	exists, err := d.client.CollectionExists(ctx, d.collection)
	if err != nil {
		return fmt.Errorf("%w: checking collection %q: %v", vector.ErrConnection, d.collection, err)
	}
	if exists {
		return nil
	}

	err = d.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: d.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimensions,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("%w: creating collection %q: %v", vector.ErrConnection, d.collection, err)
	}

	d.logger.Info("created qdrant collection", "collection", d.collection)
	return nil
}

// Upsert stores documents, replacing any existing points with the same ID.
func (d *Driver) Upsert(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(docs))
	for _, doc := range docs {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(doc.ID),
			Vectors: qdrant.NewVectors(doc.Embedding...),
			Payload: qdrant.NewValueMap(payloadFromMeta(doc.Meta)),
		})
	}

	_, err := d.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: d.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("%w: upserting %d points: %v", vector.ErrConnection, len(points), err)
	}

	d.logger.Debug("upserted documents to qdrant", "count", len(docs))
	return nil
}

// Query finds the topK points most similar to the embedding, excluding hits
// below minScore via Qdrant's score threshold.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int, minScore float32) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 3
	}

	req := &qdrant.QueryPoints{
		CollectionName: d.collection,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if minScore > 0 {
		req.ScoreThreshold = qdrant.PtrOf(minScore)
	}

	points, err := d.client.Query(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: querying collection %q: %v", vector.ErrConnection, d.collection, err)
	}

	results := make([]vector.QueryResult, 0, len(points))
	for _, p := range points {
		results = append(results, vector.QueryResult{
			Document: vector.Document{
				ID:   pointIDString(p.GetId()),
				Meta: metaFromPayload(p.GetPayload()),
			},
			Score: p.GetScore(),
		})
	}

	d.logger.Debug("queried qdrant", "results", len(results))
	return results, nil
}

// Get retrieves documents by their IDs, including vectors.
func (d *Driver) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	pointIDs := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		pointIDs = append(pointIDs, qdrant.NewID(id))
	}

	points, err := d.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: d.collection,
		Ids:            pointIDs,
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: retrieving %d points: %v", vector.ErrConnection, len(ids), err)
	}

	docs := make([]vector.Document, 0, len(points))
	for _, p := range points {
		docs = append(docs, vector.Document{
			ID:        pointIDString(p.GetId()),
			Embedding: p.GetVectors().GetVector().GetData(),
			Meta:      metaFromPayload(p.GetPayload()),
		})
	}

	return docs, nil
}

// Scan lists stored documents via Qdrant's scroll API, bounded by limit.
func (d *Driver) Scan(ctx context.Context, limit int) ([]vector.Document, error) {
	if limit <= 0 {
		limit = vector.DefaultScanLimit
	}

	points, err := d.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: d.collection,
		Limit:          qdrant.PtrOf(uint32(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: scrolling collection %q: %v", vector.ErrConnection, d.collection, err)
	}

	docs := make([]vector.Document, 0, len(points))
	for _, p := range points {
		docs = append(docs, vector.Document{
			ID:   pointIDString(p.GetId()),
			Meta: metaFromPayload(p.GetPayload()),
		})
	}

	d.logger.Debug("scanned qdrant collection", "count", len(docs))
	return docs, nil
}

// Close releases the gRPC connection.
func (d *Driver) Close() error {
	return d.client.Close()
}

func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if uuid := id.GetUuid(); uuid != "" {
		return uuid
	}
	return strconv.FormatUint(id.GetNum(), 10)
}

// Ensure Driver implements vector.Driver.
var _ vector.Driver = (*Driver)(nil)
