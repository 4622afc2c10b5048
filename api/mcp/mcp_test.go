package mcp_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/echoguardhq/echoguard/api/mcp"
	"github.com/echoguardhq/echoguard/pkg/auditlog"
	"github.com/echoguardhq/echoguard/pkg/logger"
	"github.com/echoguardhq/echoguard/pkg/match"
	testutils "github.com/echoguardhq/echoguard/pkg/utils/test"
)

func TestMCP(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "MCP Suite")
}

var _ = Describe("MCP Server", func() {
	var (
		server  *mcp.Server
		matcher *match.Matcher
	)

	BeforeEach(func() {
		var err error
		matcher, err = match.NewMatcher(match.Options{
			Embedder: testutils.NewMockEmbedder(),
			Driver:   testutils.NewMockVectorDriver(),
			Audit:    auditlog.NewStore(),
		})
		Expect(err).NotTo(HaveOccurred())

		server, err = mcp.NewServer(mcp.Config{
			Matcher: matcher,
			Logger:  logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewServer", func() {
		It("returns an error when matcher is nil", func() {
			_, err := mcp.NewServer(mcp.Config{
				Logger: logger.Nop(),
			})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("matcher is required"))
		})

		It("returns an error when logger is nil", func() {
			_, err := mcp.NewServer(mcp.Config{
				Matcher: matcher,
			})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("logger is required"))
		})

		It("creates a server with valid config", func() {
			Expect(server).NotTo(BeNil())
		})

		It("returns an HTTP handler", func() {
			handler := server.Handler()
			Expect(handler).NotTo(BeNil())
		})

		It("allows a noop server with no dependencies", func() {
			_, err := mcp.NewServer(mcp.Config{Noop: true})
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
