package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aknsr/linecap/internal/capture"
	"github.com/aknsr/linecap/internal/records"
)

// handleSearchRecords performs a text search over stored records.
func (s *Server) handleSearchRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}

	results, err := s.recs.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(results) == 0 {
		return mcp.NewToolResultText("No records matched the query."), nil
	}

	return mcp.NewToolResultText(formatRecords(results)), nil
}

// handleListRecords lists recent records, optionally filtered by type.
func (s *Server) handleListRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := records.ListFilter{
		LogicalType: request.GetString("type", ""),
		Limit:       request.GetInt("limit", 20),
	}
	if filter.LogicalType != "" && !capture.LogicalType(filter.LogicalType).Valid() {
		return mcp.NewToolResultError(fmt.Sprintf("unknown record type: %s", filter.LogicalType)), nil
	}

	results, err := s.recs.List(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing failed: %v", err)), nil
	}

	if len(results) == 0 {
		return mcp.NewToolResultText("No records stored yet."), nil
	}

	return mcp.NewToolResultText(formatRecords(results)), nil
}

// handleGetRecord returns one record by id.
func (s *Server) handleGetRecord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}

	rec, err := s.recs.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}
	if rec == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no record with id %q", id)), nil
	}

	return mcp.NewToolResultText(formatRecord(rec)), nil
}

// formatRecords renders records as plain text for AI agent consumption.
func formatRecords(recs []records.Record) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d record(s):\n", len(recs)))
	for i := range recs {
		sb.WriteString(fmt.Sprintf("\n--- Record %d ---\n", i+1))
		sb.WriteString(formatRecord(&recs[i]))
	}
	return sb.String()
}

func formatRecord(rec *records.Record) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID: %s\n", rec.ID))
	sb.WriteString(fmt.Sprintf("Type: %s\n", rec.LogicalType))
	if rec.Title != "" {
		sb.WriteString(fmt.Sprintf("Title: %s\n", rec.Title))
	}
	if rec.DueAt != nil {
		sb.WriteString(fmt.Sprintf("Due: %s\n", rec.DueAt.Format("2006-01-02 15:04")))
	}
	if rec.Priority != "" {
		sb.WriteString(fmt.Sprintf("Priority: %s\n", rec.Priority))
	}
	if rec.Assignee != "" {
		sb.WriteString(fmt.Sprintf("Assignee: %s\n", rec.Assignee))
	}
	if rec.Body != "" {
		sb.WriteString(fmt.Sprintf("Body: %s\n", rec.Body))
	}
	for k, v := range rec.Fields {
		sb.WriteString(fmt.Sprintf("%s: %s\n", k, v))
	}
	sb.WriteString(fmt.Sprintf("Created by %s at %s\n", rec.CreatedBy, rec.CreatedAt.Format("2006-01-02 15:04")))
	return sb.String()
}
