package api

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/echoguardhq/echoguard/pkg/match"
)

// Server is the API server for the echoguard matching engine.
type Server struct {
	config  Config
	matcher *match.Matcher
	logger  *slog.Logger
	app     *fiber.App
}

// NewServer creates a new API server. The matcher is injected to allow
// sharing with other components. A non-nil mcpHandler is mounted at /mcp.
func NewServer(config Config, matcher *match.Matcher, mcpHandler http.Handler, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:  config,
		matcher: matcher,
		logger:  logger,
		app:     app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/v1/analyze", s.handleAnalyze)
	app.Post("/v1/incidents", s.handleSaveIncident)
	app.Get("/v1/crises", s.handleListCrises)
	app.Get("/v1/crises/:id", s.handleGetCrisis)
	app.Get("/v1/audit", s.handleAudit)

	if mcpHandler != nil {
		app.All("/mcp", adaptor.HTTPHandler(mcpHandler))
		app.All("/mcp/*", adaptor.HTTPHandler(mcpHandler))
	}

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
