package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchRecordsTool defines the search_records MCP tool.
var searchRecordsTool = mcp.NewTool("search_records",
	mcp.WithDescription("Search captured business records (tasks, schedules, contacts, memos) by text."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Text to match against record titles, bodies and fields"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 10)"),
	),
)

// listRecordsTool defines the list_records MCP tool.
var listRecordsTool = mcp.NewTool("list_records",
	mcp.WithDescription("List recently captured records, optionally filtered by type."),
	mcp.WithString("type",
		mcp.Description("Filter by record type"),
		mcp.Enum("personal_schedule", "schedule", "task", "project", "contact", "appointment", "memo"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 20)"),
	),
)

// getRecordTool defines the get_record MCP tool.
var getRecordTool = mcp.NewTool("get_record",
	mcp.WithDescription("Get one captured record by id."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Record id"),
	),
)
