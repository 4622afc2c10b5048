package match_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/echoguardhq/echoguard/pkg/auditlog"
	"github.com/echoguardhq/echoguard/pkg/crisis"
	"github.com/echoguardhq/echoguard/pkg/embeddings/fallback"
	"github.com/echoguardhq/echoguard/pkg/match"
	testutils "github.com/echoguardhq/echoguard/pkg/utils/test"
	"github.com/echoguardhq/echoguard/pkg/vector"
)

func TestMatch(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Match Suite")
}

var _ = Describe("Matcher", func() {
	var (
		embedder  *testutils.MockEmbedder
		driver    *testutils.MockVectorDriver
		audit     *auditlog.Store
		publisher *testutils.MockPublisher
		matcher   *match.Matcher
		ctx       context.Context
	)

	newMatcher := func() *match.Matcher {
		m, err := match.NewMatcher(match.Options{
			Embedder:  embedder,
			Fallback:  fallback.NewEmbedder(3),
			Driver:    driver,
			Audit:     audit,
			Publisher: publisher,
		})
		Expect(err).NotTo(HaveOccurred())
		return m
	}

	BeforeEach(func() {
		embedder = testutils.NewMockEmbedder()
		driver = testutils.NewMockVectorDriver()
		audit = auditlog.NewStore()
		publisher = testutils.NewMockPublisher()
		ctx = context.Background()
		matcher = newMatcher()
	})

	Describe("NewMatcher", func() {
		It("requires an embedder, driver, and audit store", func() {
			_, err := match.NewMatcher(match.Options{Driver: driver, Audit: audit})
			Expect(err).To(HaveOccurred())

			_, err = match.NewMatcher(match.Options{Embedder: embedder, Audit: audit})
			Expect(err).To(HaveOccurred())

			_, err = match.NewMatcher(match.Options{Embedder: embedder, Driver: driver})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Analyze", func() {
		It("rejects empty descriptions", func() {
			_, err := matcher.Analyze(ctx, match.Request{})
			Expect(err).To(MatchError(match.ErrEmptyQuery))
		})

		It("scores a fresh high-severity flood at 89.5", func() {
			driver.Results = []vector.QueryResult{
				{
					Document: vector.Document{
						ID: "doc-1",
						Meta: crisis.Meta{
							Type:      "flood",
							Severity:  crisis.SeverityHigh,
							Protocol:  "flood",
							Timestamp: time.Now().UTC().Add(-10 * time.Hour),
						},
					},
					Score: 0.87,
				},
			}

			report, err := matcher.Analyze(ctx, match.Request{Description: "flooding near the river bend"})
			Expect(err).NotTo(HaveOccurred())

			Expect(report.Matches).To(HaveLen(1))
			best := report.Matches[0]
			Expect(best.SimilarityPercent).To(Equal(87.0))
			Expect(best.DecayFactor).To(Equal(1.0))
			Expect(best.AdjustedScore).To(Equal(87.0))
			Expect(best.RelevanceScore).To(Equal(89.5))
			Expect(report.Confidence).To(Equal(89.5))
			Expect(report.ProtocolType).To(Equal("flood"))
			Expect(report.Protocol.Actions).NotTo(BeEmpty())
			Expect(report.Degraded).To(BeEmpty())
		})

		It("applies the decay floor to stale incidents", func() {
			driver.Results = []vector.QueryResult{
				{
					Document: vector.Document{
						ID: "doc-old",
						Meta: crisis.Meta{
							Type:      "cyclone",
							Severity:  crisis.SeverityMedium,
							Timestamp: time.Now().UTC().Add(-96 * time.Hour),
						},
					},
					Score: 0.60,
				},
			}

			report, err := matcher.Analyze(ctx, match.Request{Description: "storm damage on the coast"})
			Expect(err).NotTo(HaveOccurred())

			Expect(report.Matches).To(HaveLen(1))
			best := report.Matches[0]
			Expect(best.SimilarityPercent).To(Equal(60.0))
			Expect(best.DecayFactor).To(Equal(0.3))
			Expect(best.AdjustedScore).To(Equal(18.0))
		})

		It("flags candidates missing timestamps without dropping them", func() {
			driver.Results = []vector.QueryResult{
				{
					Document: vector.Document{
						ID:   "doc-nots",
						Meta: crisis.Meta{Type: "fire", Severity: crisis.SeverityHigh},
					},
					Score: 0.80,
				},
			}

			report, err := matcher.Analyze(ctx, match.Request{Description: "smoke over the warehouse"})
			Expect(err).NotTo(HaveOccurred())

			Expect(report.Matches).To(HaveLen(1))
			best := report.Matches[0]
			Expect(best.DecayFactor).To(Equal(1.0))
			Expect(best.DataQuality).NotTo(BeEmpty())
		})

		It("ranks candidates by composite relevance, best first", func() {
			now := time.Now().UTC()
			driver.Results = []vector.QueryResult{
				{
					Document: vector.Document{
						ID:   "low-sev-fresh",
						Meta: crisis.Meta{Type: "fire", Severity: crisis.SeverityLow, Timestamp: now.Add(-time.Hour)},
					},
					Score: 0.70,
				},
				{
					Document: vector.Document{
						ID:   "high-sev-fresh",
						Meta: crisis.Meta{Type: "fire", Severity: crisis.SeverityCritical, Timestamp: now.Add(-time.Hour)},
					},
					Score: 0.70,
				},
			}

			report, err := matcher.Analyze(ctx, match.Request{Description: "fire"})
			Expect(err).NotTo(HaveOccurred())

			Expect(report.Matches).To(HaveLen(2))
			Expect(report.Matches[0].ID).To(Equal("high-sev-fresh"))
		})

		It("returns the fallback protocol with no matches", func() {
			report, err := matcher.Analyze(ctx, match.Request{Description: "unclassifiable event"})
			Expect(err).NotTo(HaveOccurred())

			Expect(report.Matches).To(BeEmpty())
			Expect(report.Confidence).To(BeZero())
			Expect(report.ProtocolType).To(BeEmpty())
			Expect(report.Protocol.Actions).NotTo(BeEmpty())
		})

		It("degrades to the fallback embedder when the provider fails", func() {
			embedder.FailOnText = "flooding downtown"

			report, err := matcher.Analyze(ctx, match.Request{Description: "flooding downtown"})
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Degraded).To(ContainElement(ContainSubstring("text embedding provider unavailable")))
		})

		It("degrades image embedding independently of text", func() {
			embedder.FailImages = true

			report, err := matcher.Analyze(ctx, match.Request{
				Description: "flooding downtown",
				Image:       []byte{0x89, 0x50},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Degraded).To(ContainElement(ContainSubstring("image embedding provider unavailable")))
		})

		It("fails when the provider fails and no fallback is configured", func() {
			embedder.FailOnText = "flooding downtown"

			m, err := match.NewMatcher(match.Options{
				Embedder: embedder,
				Driver:   driver,
				Audit:    audit,
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = m.Analyze(ctx, match.Request{Description: "flooding downtown"})
			Expect(err).To(HaveOccurred())
		})

		It("degrades to an empty result when the vector store is down", func() {
			driver.FailQuery = true

			report, err := matcher.Analyze(ctx, match.Request{Description: "anything"})
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Matches).To(BeEmpty())
			Expect(report.Degraded).To(ContainElement(ContainSubstring("vector store unavailable")))
		})

		It("filters candidates below the minimum score", func() {
			driver.Results = []vector.QueryResult{
				{Document: vector.Document{ID: "weak", Meta: crisis.Meta{Type: "flood"}}, Score: 0.2},
			}

			m, err := match.NewMatcher(match.Options{
				Embedder: embedder,
				Driver:   driver,
				Audit:    audit,
				MinScore: 0.5,
			})
			Expect(err).NotTo(HaveOccurred())

			report, err := m.Analyze(ctx, match.Request{Description: "minor puddle"})
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Matches).To(BeEmpty())
		})

		It("records every query in the audit log with a decision entry", func() {
			_, err := matcher.Analyze(ctx, match.Request{Description: "first"})
			Expect(err).NotTo(HaveOccurred())
			report, err := matcher.Analyze(ctx, match.Request{Description: "second"})
			Expect(err).NotTo(HaveOccurred())

			Expect(report.IncidentID).To(Equal(auditlog.IncidentID(2)))

			snap := matcher.AuditSnapshot(10)
			Expect(snap.TotalCount).To(Equal(2))
			Expect(snap.MostRecent[1].Description).To(Equal("second"))
			Expect(snap.MostRecent[1].Decisions).To(HaveLen(1))
		})

		It("publishes a decision event per query", func() {
			driver.Results = []vector.QueryResult{
				{
					Document: vector.Document{
						ID:   "doc-1",
						Meta: crisis.Meta{Type: "flood", Timestamp: time.Now().UTC()},
					},
					Score: 0.9,
				},
			}

			report, err := matcher.Analyze(ctx, match.Request{Description: "flooding"})
			Expect(err).NotTo(HaveOccurred())

			Expect(publisher.Published).To(HaveLen(1))
			event := publisher.Published[0]
			Expect(event.Query.IncidentID).To(Equal(int64(report.IncidentID)))
			Expect(event.Matches).To(HaveLen(1))
			Expect(event.EventID).NotTo(BeEmpty())
		})

		It("does not fail the query when event publishing fails", func() {
			publisher.FailPublish = true

			_, err := matcher.Analyze(ctx, match.Request{Description: "flooding"})
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("SaveIncident", func() {
		It("stores a user-reported incident", func() {
			id, err := matcher.SaveIncident(ctx, "bridge collapsed after tremor", crisis.Meta{
				Type:     "earthquake",
				Severity: crisis.SeverityHigh,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(id).NotTo(BeEmpty())

			Expect(driver.Documents).To(HaveLen(1))
			doc := driver.Documents[0]
			Expect(doc.Meta.UserUploaded).To(BeTrue())
			Expect(doc.Meta.Description).To(Equal("bridge collapsed after tremor"))
			Expect(doc.Meta.Timestamp.IsZero()).To(BeFalse())
		})

		It("rejects empty descriptions", func() {
			_, err := matcher.SaveIncident(ctx, "", crisis.Meta{})
			Expect(err).To(MatchError(match.ErrEmptyQuery))
		})

		It("fails rather than storing a degraded embedding", func() {
			embedder.FailOnText = "bad input"

			_, err := matcher.SaveIncident(ctx, "bad input", crisis.Meta{})
			Expect(err).To(HaveOccurred())
			Expect(driver.Documents).To(BeEmpty())
		})
	})

	Describe("ListCrises", func() {
		It("returns stored incidents up to the limit", func() {
			for range 5 {
				_, err := matcher.SaveIncident(ctx, "stored incident", crisis.Meta{Type: "flood"})
				Expect(err).NotTo(HaveOccurred())
			}

			docs, err := matcher.ListCrises(ctx, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(3))
		})
	})

	Describe("GetCrisis", func() {
		It("fetches a stored incident by ID", func() {
			id, err := matcher.SaveIncident(ctx, "dam overflow upstream", crisis.Meta{
				Type:     "flood",
				Severity: crisis.SeverityHigh,
			})
			Expect(err).NotTo(HaveOccurred())

			doc, err := matcher.GetCrisis(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.ID).To(Equal(id))
			Expect(doc.Meta.Type).To(Equal("flood"))
			Expect(doc.Meta.Description).To(Equal("dam overflow upstream"))
		})

		It("returns ErrNotFound for an unknown ID", func() {
			_, err := matcher.GetCrisis(ctx, "no-such-id")
			Expect(err).To(MatchError(vector.ErrNotFound))
		})

		It("returns ErrNotFound for an empty ID", func() {
			_, err := matcher.GetCrisis(ctx, "")
			Expect(err).To(MatchError(vector.ErrNotFound))
		})
	})
})
