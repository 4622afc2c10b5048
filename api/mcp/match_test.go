package mcp

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/echoguardhq/echoguard/pkg/auditlog"
	"github.com/echoguardhq/echoguard/pkg/crisis"
	"github.com/echoguardhq/echoguard/pkg/logger"
	"github.com/echoguardhq/echoguard/pkg/match"
	testutils "github.com/echoguardhq/echoguard/pkg/utils/test"
	"github.com/echoguardhq/echoguard/pkg/vector"
)

var _ = Describe("Match tool", func() {
	var (
		server *Server
		driver *testutils.MockVectorDriver
		ctx    context.Context
	)

	BeforeEach(func() {
		driver = testutils.NewMockVectorDriver()

		matcher, err := match.NewMatcher(match.Options{
			Embedder: testutils.NewMockEmbedder(),
			Driver:   driver,
			Audit:    auditlog.NewStore(),
		})
		Expect(err).NotTo(HaveOccurred())

		server, err = NewServer(Config{
			Matcher: matcher,
			Logger:  logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())

		ctx = context.Background()
	})

	Describe("handleMatch", func() {
		It("returns ranked matches with the response protocol", func() {
			driver.Results = []vector.QueryResult{
				{
					Document: vector.Document{
						ID: "doc-1",
						Meta: crisis.Meta{
							Type:      "flood",
							Location:  "Riverside district",
							Severity:  crisis.SeverityHigh,
							Timestamp: time.Now().UTC().Add(-2 * time.Hour),
						},
					},
					Score: 0.87,
				},
			}

			result, output, err := server.handleMatch(ctx, nil, MatchInput{
				Description: "flooding near the river bend",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())

			Expect(output.Matches).To(HaveLen(1))
			Expect(output.Matches[0].Type).To(Equal("flood"))
			Expect(output.Matches[0].RelevanceScore).To(Equal(89.5))
			Expect(output.Protocol).To(Equal("flood"))
			Expect(output.Actions).NotTo(BeEmpty())
			Expect(output.Confidence).To(Equal(89.5))
			Expect(output.IncidentID).To(Equal(int64(1)))
		})

		It("returns a tool error for an empty description", func() {
			result, _, err := server.handleMatch(ctx, nil, MatchInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
		})

		It("serializes output into the text content block", func() {
			result, _, err := server.handleMatch(ctx, nil, MatchInput{
				Description: "anything at all",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Content).To(HaveLen(1))
		})
	})

	Describe("handleListCrises", func() {
		It("lists stored incidents", func() {
			driver.Documents = []vector.Document{
				{ID: "a", Meta: crisis.Meta{Type: "flood", Description: "river flood"}},
				{ID: "b", Meta: crisis.Meta{Type: "fire", Description: "warehouse fire"}},
			}

			result, output, err := server.handleListCrises(ctx, nil, ListInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(output.Count).To(Equal(2))
			Expect(output.Crises[0].Type).To(Equal("flood"))
		})

		It("honors the limit", func() {
			driver.Documents = []vector.Document{
				{ID: "a"}, {ID: "b"}, {ID: "c"},
			}

			_, output, err := server.handleListCrises(ctx, nil, ListInput{Limit: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(output.Count).To(Equal(2))
		})
	})
})
