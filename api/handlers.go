package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/echoguardhq/echoguard/pkg/crisis"
	"github.com/echoguardhq/echoguard/pkg/match"
	"github.com/echoguardhq/echoguard/pkg/vector"
)

// ErrorResponse is the JSON error body returned by all handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SaveIncidentRequest is the body for POST /v1/incidents.
type SaveIncidentRequest struct {
	Description string      `json:"description"`
	Meta        crisis.Meta `json:"meta"`
}

// SaveIncidentResponse is the body returned by POST /v1/incidents.
type SaveIncidentResponse struct {
	ID string `json:"id"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleAnalyze runs a crisis query through the matching pipeline.
// The request body is a match.Request; images are base64 in the JSON.
func (s *Server) handleAnalyze(c *fiber.Ctx) error {
	var req match.Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	report, err := s.matcher.Analyze(c.Context(), req)
	if err != nil {
		if errors.Is(err, match.ErrEmptyQuery) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "description is required"})
		}

		s.logger.Error("analyze failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(report)
}

// handleSaveIncident stores a user-reported incident in the vector store.
func (s *Server) handleSaveIncident(c *fiber.Ctx) error {
	var req SaveIncidentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	id, err := s.matcher.SaveIncident(c.Context(), req.Description, req.Meta)
	if err != nil {
		if errors.Is(err, match.ErrEmptyQuery) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "description is required"})
		}

		s.logger.Error("saving incident failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(SaveIncidentResponse{ID: id})
}

// handleListCrises returns stored incidents.
// Query parameters:
//   - limit (optional): maximum number of incidents to return
func (s *Server) handleListCrises(c *fiber.Ctx) error {
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "limit must be a positive integer"})
	}

	docs, err := s.matcher.ListCrises(c.Context(), limit)
	if err != nil {
		s.logger.Error("listing crises failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(map[string]any{
		"count":  len(docs),
		"crises": docs,
	})
}

// handleGetCrisis returns a single stored incident by ID.
func (s *Server) handleGetCrisis(c *fiber.Ctx) error {
	doc, err := s.matcher.GetCrisis(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, vector.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "incident not found"})
		}

		s.logger.Error("fetching crisis failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(doc)
}

// handleAudit returns the audit log snapshot.
// Query parameters:
//   - limit (optional, default 50): maximum number of incidents to return
func (s *Server) handleAudit(c *fiber.Ctx) error {
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "limit must be a positive integer"})
	}
	if limit == 0 {
		limit = 50
	}

	return c.JSON(s.matcher.AuditSnapshot(limit))
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return 0, errors.New("invalid limit")
	}
	return parsed, nil
}
