package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/echoguardhq/echoguard/pkg/match"
)

var (
	matchToolName    = "match_crisis"
	matchDescription = "Match a crisis description (and optional base64 image) against stored incidents. Returns ranked matches with similarity, recency decay, and severity weighting, plus the recommended response protocol."

	listToolName    = "list_crises"
	listDescription = "List stored crisis incidents from the vector store."
)

// MatchInput represents the input arguments for the match_crisis tool.
type MatchInput struct {
	Description string `json:"description" jsonschema:"the crisis description text to match against stored incidents"`
	Image       []byte `json:"image,omitempty" jsonschema:"optional base64-encoded image of the crisis scene"`
}

// MatchResult is a single ranked match.
type MatchResult struct {
	ID                string   `json:"id"`
	Type              string   `json:"type,omitempty"`
	Location          string   `json:"location,omitempty"`
	Severity          string   `json:"severity,omitempty"`
	SimilarityPercent float64  `json:"similarity_percent"`
	DecayFactor       float64  `json:"decay_factor"`
	AdjustedScore     float64  `json:"adjusted_score"`
	RelevanceScore    float64  `json:"relevance_score"`
	DataQuality       []string `json:"data_quality,omitempty"`
}

// MatchOutput represents the output of the match_crisis tool.
type MatchOutput struct {
	IncidentID  int64         `json:"incident_id"`
	Matches     []MatchResult `json:"matches"`
	Protocol    string        `json:"protocol,omitempty"`
	Actions     []string      `json:"actions"`
	Priority    string        `json:"priority"`
	Explanation string        `json:"explanation"`
	Confidence  float64       `json:"confidence"`
	Degraded    []string      `json:"degraded,omitempty"`
}

// handleMatch processes a match_crisis request.
func (s *Server) handleMatch(ctx context.Context, req *mcp.CallToolRequest, input MatchInput) (*mcp.CallToolResult, MatchOutput, error) {
	logger := s.config.Logger

	logger.Debug("MCP match request", "description_len", len(input.Description), "has_image", len(input.Image) > 0)

	report, err := s.config.Matcher.Analyze(ctx, match.Request{
		Description: input.Description,
		Image:       input.Image,
	})
	if err != nil {
		logger.Error("match failed", "error", err)
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to match crisis: %v", err)},
			},
		}, MatchOutput{}, nil
	}

	output := MatchOutput{
		IncidentID:  int64(report.IncidentID),
		Matches:     make([]MatchResult, 0, len(report.Matches)),
		Protocol:    report.ProtocolType,
		Actions:     report.Protocol.Actions,
		Priority:    report.Protocol.Priority,
		Explanation: report.Explanation,
		Confidence:  report.Confidence,
		Degraded:    report.Degraded,
	}

	for _, m := range report.Matches {
		output.Matches = append(output.Matches, MatchResult{
			ID:                m.ID,
			Type:              m.Meta.Type,
			Location:          m.Meta.Location,
			Severity:          m.Meta.Severity,
			SimilarityPercent: m.SimilarityPercent,
			DecayFactor:       m.DecayFactor,
			AdjustedScore:     m.AdjustedScore,
			RelevanceScore:    m.RelevanceScore,
			DataQuality:       m.DataQuality,
		})
	}

	// Serialize the structured output as JSON for the text field
	// Per MCP spec: tools returning structured content should also return
	// serialized JSON in a TextContent block for backwards compatibility
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal match output", "error", err)
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to serialize results: %v", err)},
			},
		}, MatchOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}

// ListInput represents the input arguments for the list_crises tool.
type ListInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of incidents to return (default: 50)"`
}

// ListedCrisis is a single stored incident.
type ListedCrisis struct {
	ID          string `json:"id"`
	Type        string `json:"type,omitempty"`
	Location    string `json:"location,omitempty"`
	Severity    string `json:"severity,omitempty"`
	Description string `json:"description,omitempty"`
}

// ListOutput represents the output of the list_crises tool.
type ListOutput struct {
	Crises []ListedCrisis `json:"crises"`
	Count  int            `json:"count"`
}

// handleListCrises processes a list_crises request.
func (s *Server) handleListCrises(ctx context.Context, req *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, ListOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}

	docs, err := s.config.Matcher.ListCrises(ctx, limit)
	if err != nil {
		s.config.Logger.Error("listing crises failed", "error", err)
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to list crises: %v", err)},
			},
		}, ListOutput{}, nil
	}

	output := ListOutput{
		Crises: make([]ListedCrisis, 0, len(docs)),
		Count:  len(docs),
	}
	for _, doc := range docs {
		output.Crises = append(output.Crises, ListedCrisis{
			ID:          doc.ID,
			Type:        doc.Meta.Type,
			Location:    doc.Meta.Location,
			Severity:    doc.Meta.Severity,
			Description: doc.Meta.Description,
		})
	}

	jsonBytes, err := json.Marshal(output)
	if err != nil {
		s.config.Logger.Error("failed to marshal list output", "error", err)
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to serialize results: %v", err)},
			},
		}, ListOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
