package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"
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

func TestAPI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "API Suite")
}

var _ = Describe("Server", func() {
	var (
		server   *Server
		driver   *testutils.MockVectorDriver
		embedder *testutils.MockEmbedder
	)

	BeforeEach(func() {
		driver = testutils.NewMockVectorDriver()
		embedder = testutils.NewMockEmbedder()

		matcher, err := match.NewMatcher(match.Options{
			Embedder: embedder,
			Driver:   driver,
			Audit:    auditlog.NewStore(),
		})
		Expect(err).NotTo(HaveOccurred())

		server = NewServer(Config{ListenAddr: ":0"}, matcher, nil, logger.Nop())
	})

	jsonRequest := func(method, target string, body any) *http.Response {
		var reader io.Reader
		if body != nil {
			payload, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequest(method, target, reader)
		Expect(err).NotTo(HaveOccurred())
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := server.app.Test(req, -1)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	decode := func(resp *http.Response, into any) {
		defer resp.Body.Close()
		Expect(json.NewDecoder(resp.Body).Decode(into)).To(Succeed())
	}

	Describe("GET /ping", func() {
		It("returns pong", func() {
			resp := jsonRequest(http.MethodGet, "/ping", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body string
			decode(resp, &body)
			Expect(body).To(Equal("pong"))
		})
	})

	Describe("POST /v1/analyze", func() {
		It("returns a ranked report", func() {
			driver.Results = []vector.QueryResult{
				{
					Document: vector.Document{
						ID: "doc-1",
						Meta: crisis.Meta{
							Type:      "flood",
							Severity:  crisis.SeverityHigh,
							Timestamp: time.Now().UTC().Add(-2 * time.Hour),
						},
					},
					Score: 0.87,
				},
			}

			resp := jsonRequest(http.MethodPost, "/v1/analyze", match.Request{
				Description: "flooding near the river bend",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var report match.Report
			decode(resp, &report)
			Expect(report.Matches).To(HaveLen(1))
			Expect(report.Confidence).To(Equal(89.5))
			Expect(report.ProtocolType).To(Equal("flood"))
			Expect(report.IncidentID).To(Equal(auditlog.IncidentID(1)))
		})

		It("rejects an empty description", func() {
			resp := jsonRequest(http.MethodPost, "/v1/analyze", match.Request{})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects malformed bodies", func() {
			req, err := http.NewRequest(http.MethodPost, "/v1/analyze", bytes.NewReader([]byte("{nope")))
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Content-Type", "application/json")

			resp, err := server.app.Test(req, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /v1/incidents", func() {
		It("stores an incident and returns its ID", func() {
			resp := jsonRequest(http.MethodPost, "/v1/incidents", SaveIncidentRequest{
				Description: "bridge collapsed after tremor",
				Meta:        crisis.Meta{Type: "earthquake", Severity: crisis.SeverityHigh},
			})
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))

			var body SaveIncidentResponse
			decode(resp, &body)
			Expect(body.ID).NotTo(BeEmpty())
			Expect(driver.Documents).To(HaveLen(1))
		})

		It("rejects an empty description", func() {
			resp := jsonRequest(http.MethodPost, "/v1/incidents", SaveIncidentRequest{})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /v1/crises", func() {
		It("lists stored incidents", func() {
			jsonRequest(http.MethodPost, "/v1/incidents", SaveIncidentRequest{
				Description: "stored one",
				Meta:        crisis.Meta{Type: "flood"},
			})
			jsonRequest(http.MethodPost, "/v1/incidents", SaveIncidentRequest{
				Description: "stored two",
				Meta:        crisis.Meta{Type: "fire"},
			})

			resp := jsonRequest(http.MethodGet, "/v1/crises", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body struct {
				Count  int               `json:"count"`
				Crises []vector.Document `json:"crises"`
			}
			decode(resp, &body)
			Expect(body.Count).To(Equal(2))
		})

		It("honors the limit parameter", func() {
			for range 3 {
				jsonRequest(http.MethodPost, "/v1/incidents", SaveIncidentRequest{
					Description: "stored",
					Meta:        crisis.Meta{Type: "flood"},
				})
			}

			resp := jsonRequest(http.MethodGet, "/v1/crises?limit=2", nil)
			var body struct {
				Count int `json:"count"`
			}
			decode(resp, &body)
			Expect(body.Count).To(Equal(2))
		})

		It("rejects a non-numeric limit", func() {
			resp := jsonRequest(http.MethodGet, "/v1/crises?limit=all", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /v1/crises/:id", func() {
		It("returns a stored incident by ID", func() {
			resp := jsonRequest(http.MethodPost, "/v1/incidents", SaveIncidentRequest{
				Description: "bridge collapse on the east river",
				Meta:        crisis.Meta{Type: "earthquake", Severity: crisis.SeverityCritical},
			})
			var saved SaveIncidentResponse
			decode(resp, &saved)

			resp = jsonRequest(http.MethodGet, "/v1/crises/"+saved.ID, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var doc vector.Document
			decode(resp, &doc)
			Expect(doc.ID).To(Equal(saved.ID))
			Expect(doc.Meta.Type).To(Equal("earthquake"))
			Expect(doc.Meta.Description).To(Equal("bridge collapse on the east river"))
		})

		It("returns 404 for an unknown ID", func() {
			resp := jsonRequest(http.MethodGet, "/v1/crises/no-such-incident", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Describe("GET /v1/audit", func() {
		It("returns the audit snapshot", func() {
			jsonRequest(http.MethodPost, "/v1/analyze", match.Request{Description: "first query"})
			jsonRequest(http.MethodPost, "/v1/analyze", match.Request{Description: "second query"})

			resp := jsonRequest(http.MethodGet, "/v1/audit", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var snap auditlog.Snapshot
			decode(resp, &snap)
			Expect(snap.TotalCount).To(Equal(2))
			Expect(snap.MostRecent).To(HaveLen(2))
			Expect(snap.MostRecent[1].Description).To(Equal("second query"))
		})
	})
})
