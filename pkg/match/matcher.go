// Package match implements the crisis matching pipeline: embed the query,
// fuse image and text vectors, search the vector store, score and rank the
// candidates, select a response protocol, and record the decision in the
// audit log.
package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/echoguardhq/echoguard/pkg/auditlog"
	"github.com/echoguardhq/echoguard/pkg/crisis"
	"github.com/echoguardhq/echoguard/pkg/embeddings"
	"github.com/echoguardhq/echoguard/pkg/eventstream"
	"github.com/echoguardhq/echoguard/pkg/fusion"
	"github.com/echoguardhq/echoguard/pkg/logger"
	"github.com/echoguardhq/echoguard/pkg/protocol"
	"github.com/echoguardhq/echoguard/pkg/relevance"
	"github.com/echoguardhq/echoguard/pkg/utils"
	"github.com/echoguardhq/echoguard/pkg/vector"
)

// ErrEmptyQuery is returned when a query has no description text.
var ErrEmptyQuery = errors.New("empty query description")

const (
	// DefaultTopK is the number of candidates retrieved per query.
	DefaultTopK = 3

	// DefaultImageWeight is the image share of the fused query vector.
	DefaultImageWeight = 0.6

	querySummaryMaxLen = 120
)

// Options configures a Matcher. Embedder, Driver, and Audit are required;
// everything else has a sensible default.
type Options struct {
	// Embedder is the primary embedding provider.
	Embedder embeddings.Embedder

	// Fallback is used when the primary provider fails. Nil disables
	// degraded-mode embedding; provider failures then fail the query.
	Fallback embeddings.Embedder

	// Driver is the vector store.
	Driver vector.Driver

	// Audit receives an incident and decision entry for every query.
	Audit *auditlog.Store

	// Publisher receives a decision event per query. Nil disables events.
	Publisher eventstream.Publisher

	Logger *slog.Logger

	TopK        int
	MinScore    float64
	ImageWeight float64

	// Decay overrides the default temporal decay model when non-zero.
	Decay relevance.DecayModel

	// SeverityWeights overrides the default severity weighting table.
	SeverityWeights map[string]float64
}

// Matcher runs the matching pipeline. Safe for concurrent use: all mutable
// state lives in the audit log, which serializes internally.
type Matcher struct {
	embedder  embeddings.Embedder
	fallback  embeddings.Embedder
	driver    vector.Driver
	audit     *auditlog.Store
	publisher eventstream.Publisher
	logger    *slog.Logger

	topK        int
	minScore    float64
	imageWeight float64

	scorer relevance.Scorer
	decay  relevance.DecayModel
	ranker relevance.Ranker

	severityWeights map[string]float64
}

// NewMatcher validates options and constructs a Matcher.
func NewMatcher(o Options) (*Matcher, error) {
	if o.Embedder == nil {
		return nil, errors.New("matcher requires an embedder")
	}
	if o.Driver == nil {
		return nil, errors.New("matcher requires a vector driver")
	}
	if o.Audit == nil {
		return nil, errors.New("matcher requires an audit log store")
	}

	log := o.Logger
	if log == nil {
		log = logger.Nop()
	}

	topK := o.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	imageWeight := o.ImageWeight
	if imageWeight <= 0 || imageWeight > 1 {
		imageWeight = DefaultImageWeight
	}

	decay := o.Decay
	if decay.WindowHours <= 0 {
		decay = relevance.NewDecayModel()
	}

	weights := o.SeverityWeights
	if weights == nil {
		weights = crisis.DefaultSeverityWeights()
	}

	return &Matcher{
		embedder:        o.Embedder,
		fallback:        o.Fallback,
		driver:          o.Driver,
		audit:           o.Audit,
		publisher:       o.Publisher,
		logger:          log,
		topK:            topK,
		minScore:        o.MinScore,
		imageWeight:     imageWeight,
		decay:           decay,
		ranker:          relevance.NewRanker(log),
		severityWeights: weights,
	}, nil
}

// Analyze runs one crisis query through the full pipeline and returns the
// decision report. Provider and store outages degrade the result rather
// than failing it; the report's Degraded notes record every substitution.
func (m *Matcher) Analyze(ctx context.Context, req Request) (*Report, error) {
	if req.Description == "" {
		return nil, ErrEmptyQuery
	}

	started := time.Now().UTC()
	var degraded []string

	query, degraded, err := m.buildQueryVector(ctx, req, degraded)
	if err != nil {
		return nil, err
	}

	results, err := m.driver.Query(ctx, query, m.topK, float32(m.minScore))
	if err != nil {
		m.logger.Warn("vector store query failed", "error", err)
		degraded = append(degraded, "vector store unavailable, no candidates retrieved")
		results = nil
	}

	now := time.Now().UTC()
	scored := make([]relevance.ScoredCandidate, 0, len(results))
	for _, r := range results {
		percent, ok, err := m.scorer.Score(float64(r.Score), m.minScore)
		if err != nil {
			m.logger.Warn("invalid similarity score", "id", r.ID, "score", r.Score, "error", err)
			continue
		}
		if !ok {
			continue
		}

		sc := relevance.ScoredCandidate{
			Candidate: relevance.Candidate{
				ID:       r.ID,
				RawScore: float64(r.Score),
				Meta:     r.Meta,
			},
			SimilarityPercent: percent,
		}

		age, haveTimestamp := m.decay.AgeHours(r.Meta.Timestamp, now)
		if !haveTimestamp {
			sc.DecayFactor = 1.0
			sc.AdjustedScore = percent
			sc.DataQuality = append(sc.DataQuality, "missing timestamp, decay defaulted to 1.0")
			m.logger.Warn("candidate missing timestamp", "id", r.ID)
		} else {
			sc.AgeHours = age
			sc.DecayFactor = m.decay.Decay(age)
			sc.AdjustedScore = round2(percent * sc.DecayFactor)
		}

		scored = append(scored, sc)
	}

	ranked := m.ranker.Rank(scored, m.severityWeights)

	protocolType, proto := m.selectProtocol(ranked)

	confidence := 0.0
	if len(ranked) > 0 {
		confidence = ranked[0].RelevanceScore
	}

	incidentMeta := crisis.Meta{
		Type:         protocolType,
		Timestamp:    now,
		UserUploaded: len(req.Image) > 0,
	}
	incidentID := m.audit.AppendIncident(query, req.Description, incidentMeta)

	decisionSummary := fmt.Sprintf("matched %d candidates, protocol %q, confidence %.2f",
		len(ranked), protocolType, confidence)
	if _, err := m.audit.AppendDecision(incidentID, utils.Truncate(req.Description, querySummaryMaxLen), decisionSummary, confidence); err != nil {
		m.logger.Warn("recording decision failed", "incident_id", incidentID, "error", err)
	}

	report := &Report{
		IncidentID:   incidentID,
		Matches:      ranked,
		ProtocolType: protocolType,
		Protocol:     proto,
		Explanation:  buildExplanation(ranked, degraded),
		Confidence:   confidence,
		Degraded:     degraded,
	}

	m.publishDecision(ctx, req, report, started)

	m.logger.Info("analyzed crisis query",
		"incident_id", incidentID,
		"candidates", len(ranked),
		"protocol", protocolType,
		"confidence", confidence,
		"degraded", len(degraded) > 0,
	)

	return report, nil
}

// buildQueryVector embeds the query text (and image, when present) and fuses
// them into a single normalized vector. Provider failures fall back to the
// deterministic embedder when one is configured.
func (m *Matcher) buildQueryVector(ctx context.Context, req Request, degraded []string) ([]float32, []string, error) {
	textVec, err := m.embedder.EmbedText(ctx, req.Description)
	if err != nil {
		if m.fallback == nil {
			return nil, degraded, fmt.Errorf("embedding query text: %w", err)
		}
		m.logger.Warn("text embedding failed, using fallback", "error", err)
		degraded = append(degraded, "text embedding provider unavailable, used deterministic fallback")

		textVec, err = m.fallback.EmbedText(ctx, req.Description)
		if err != nil {
			return nil, degraded, fmt.Errorf("fallback text embedding: %w", err)
		}
	}

	if len(req.Image) == 0 {
		// Fusing the text vector with itself normalizes it without a
		// separate code path.
		query, err := fusion.Fuse(textVec, textVec, 0)
		if err != nil {
			return nil, degraded, err
		}
		return query, degraded, nil
	}

	imageVec, err := m.embedder.EmbedImage(ctx, req.Image)
	if err != nil {
		if m.fallback == nil {
			return nil, degraded, fmt.Errorf("embedding query image: %w", err)
		}
		m.logger.Warn("image embedding failed, using fallback", "error", err)
		degraded = append(degraded, "image embedding provider unavailable, used deterministic fallback")

		imageVec, err = m.fallback.EmbedImage(ctx, req.Image)
		if err != nil {
			return nil, degraded, fmt.Errorf("fallback image embedding: %w", err)
		}
	}

	query, err := fusion.Fuse(imageVec, textVec, m.imageWeight)
	if err != nil {
		return nil, degraded, fmt.Errorf("fusing query embeddings: %w", err)
	}

	return query, degraded, nil
}

// selectProtocol picks the response protocol from the best-ranked match.
// With no matches the fallback protocol applies.
func (m *Matcher) selectProtocol(ranked []relevance.ScoredCandidate) (string, protocol.Protocol) {
	if len(ranked) == 0 {
		proto, _ := protocol.Lookup("")
		return "", proto
	}

	best := ranked[0]
	protocolType := best.Meta.Protocol
	if protocolType == "" {
		protocolType = best.Meta.Type
	}

	proto, known := protocol.Lookup(protocolType)
	if !known {
		m.logger.Warn("no protocol for crisis type, using fallback", "type", protocolType)
	}

	return protocolType, proto
}

func (m *Matcher) publishDecision(ctx context.Context, req Request, report *Report, started time.Time) {
	if m.publisher == nil {
		return
	}

	completed := time.Now().UTC()
	event := &eventstream.DecisionRecordedEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeDecisionRecorded,
		EventID:       uuid.NewString(),
		EmittedAt:     completed,
		Source: eventstream.EventSource{
			Service: "echoguard",
		},
		Query: eventstream.QueryMeta{
			IncidentID:  int64(report.IncidentID),
			Description: utils.Truncate(req.Description, querySummaryMaxLen),
			HasImage:    len(req.Image) > 0,
			StartedAt:   started,
			CompletedAt: completed,
			DurationMs:  completed.Sub(started).Milliseconds(),
			Degraded:    report.Degraded,
		},
		Decision: eventstream.DecisionMeta{
			Summary:    report.Explanation,
			Confidence: report.Confidence,
			Protocol:   report.ProtocolType,
		},
	}

	for _, match := range report.Matches {
		event.Matches = append(event.Matches, eventstream.MatchRecord{
			ID:                match.ID,
			Meta:              match.Meta,
			SimilarityPercent: match.SimilarityPercent,
			RelevanceScore:    match.RelevanceScore,
		})
	}

	// Event delivery is best-effort: a broker outage must not fail the
	// query, the decision is already in the audit log.
	if err := m.publisher.PublishDecision(ctx, event); err != nil {
		m.logger.Warn("publishing decision event failed", "event_id", event.EventID, "error", err)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
