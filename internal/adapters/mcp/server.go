package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/internship-allocator/internal/core/domain"
	"github.com/kirillkom/internship-allocator/internal/core/ports"
)

const (
	ToolMatchApplicant = "match_applicant"
	ToolGetAllocations = "get_allocations"
)

// Tools exposes matching to MCP clients. Results are returned as JSON text.
type Tools struct {
	matcher ports.Matcher
	reader  ports.AllocationReader
}

func NewTools(matcher ports.Matcher, reader ports.AllocationReader) *Tools {
	return &Tools{matcher: matcher, reader: reader}
}

func NewServer(version string, tools *Tools) *server.MCPServer {
	s := server.NewMCPServer(
		"internship-allocator",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s.AddTool(mcp.NewTool(ToolMatchApplicant,
		mcp.WithDescription("Match an applicant against the internship corpus. Repeated calls for the same applicant return the stored allocations."),
		mcp.WithString("applicant_id", mcp.Required(), mcp.Description("Stable applicant identifier")),
		mcp.WithString("skills", mcp.Description("Skills, comma separated")),
		mcp.WithString("qualifications", mcp.Description("Highest qualification, e.g. B.Tech")),
		mcp.WithString("location_preferences", mcp.Description("Preferred work location")),
		mcp.WithString("native_location", mcp.Description(`Home district as "District, State"`)),
		mcp.WithString("social_category", mcp.Description("Social category, e.g. SC, ST, OBC, OC")),
		mcp.WithString("participation_status", mcp.Description("New, Rejected or Benefitted")),
	), tools.MatchApplicant)

	s.AddTool(mcp.NewTool(ToolGetAllocations,
		mcp.WithDescription("Return the stored allocations of an applicant"),
		mcp.WithString("applicant_id", mcp.Required(), mcp.Description("Applicant identifier")),
	), tools.GetAllocations)

	return s
}

func (t *Tools) MatchApplicant(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	applicantID, err := req.RequireString("applicant_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	profile := domain.ApplicantProfile{
		ApplicantID:         applicantID,
		Skills:              splitSkills(req.GetString("skills", "")),
		Qualifications:      req.GetString("qualifications", ""),
		LocationPreferences: req.GetString("location_preferences", ""),
		NativeLocation:      req.GetString("native_location", ""),
		SocialCategory:      domain.SocialCategory(req.GetString("social_category", "")),
		ParticipationStatus: domain.ParticipationStatus(req.GetString("participation_status", "")),
	}

	result, err := t.matcher.Match(ctx, profile)
	if err != nil {
		slog.Warn("mcp_match_failed", "applicant_id", applicantID, "error", err)
		return mcp.NewToolResultError(toolErrorMessage(err)), nil
	}
	return jsonResult(result)
}

func (t *Tools) GetAllocations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	applicantID, err := req.RequireString("applicant_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	records, err := t.reader.Allocations(ctx, applicantID)
	if err != nil {
		return mcp.NewToolResultError(toolErrorMessage(err)), nil
	}
	return jsonResult(domain.MatchResult{ApplicantID: applicantID, Replayed: true, Allocations: records})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func toolErrorMessage(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrInvalidRequest):
		return "invalid request: " + err.Error()
	case domain.IsKind(err, domain.ErrAllocationNotFound):
		return "no allocations stored for this applicant"
	case domain.IsKind(err, domain.ErrEngineNotInitialized):
		return "allocation engine is still loading, retry shortly"
	case domain.IsKind(err, domain.ErrStorageUnavailable), domain.IsKind(err, domain.ErrTemporary):
		return "allocation store unavailable, retry shortly"
	default:
		return "internal error"
	}
}

func splitSkills(raw string) domain.SkillList {
	var out domain.SkillList
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
