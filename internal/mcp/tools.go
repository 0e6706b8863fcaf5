package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// ToolDefinitions returns all tool definitions for the chatlyze MCP
// server.
func ToolDefinitions() []mcp.Tool {
	return []mcp.Tool{
		toolAnalyze(),
		toolInfo(),
		toolBestLines(),
	}
}

func toolAnalyze() mcp.Tool {
	return mcp.NewTool("chatlyze_analyze",
		mcp.WithDescription("Analyze a chat export file and return the full statistics report"),
		mcp.WithString("path",
			mcp.Description("Path to the chat export file"),
			mcp.Required(),
		),
		mcp.WithString("format",
			mcp.Description("Report format: json or text (default: json)"),
			mcp.Enum("json", "text"),
		),
	)
}

func toolInfo() mcp.Tool {
	return mcp.NewTool("chatlyze_info",
		mcp.WithDescription("Get basic facts about a chat export: participants, message count, date range"),
		mcp.WithString("path",
			mcp.Description("Path to the chat export file"),
			mcp.Required(),
		),
	)
}

func toolBestLines() mcp.Tool {
	return mcp.NewTool("chatlyze_best_lines",
		mcp.WithDescription("Get the highest scoring messages from a chat export"),
		mcp.WithString("path",
			mcp.Description("Path to the chat export file"),
			mcp.Required(),
		),
		mcp.WithString("author",
			mcp.Description("Only return lines written by this participant"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Number of lines to return (default 5)"),
		),
	)
}
