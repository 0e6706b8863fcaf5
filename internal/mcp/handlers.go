package mcp

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/iampreetdave-max/analyze-text/pkg/analyzer"
	"github.com/iampreetdave-max/analyze-text/pkg/parser"
	"github.com/iampreetdave-max/analyze-text/pkg/report"
)

// Handlers contains all tool handlers for the chatlyze MCP server.
type Handlers struct {
	parser *parser.Parser
	engine *analyzer.Engine
}

// NewHandlers creates a new Handlers instance with default parsing and
// analysis settings.
func NewHandlers() *Handlers {
	return &Handlers{
		parser: parser.New(),
		engine: analyzer.New(),
	}
}

// HandleAnalyze handles the chatlyze_analyze tool.
func (h *Handlers) HandleAnalyze(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path is required"), nil
	}

	format := req.GetString("format", "json")

	messages, err := h.parser.ParseFile(path)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to read export", err), nil
	}
	if len(messages) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no messages recognized in %s", path)), nil
	}

	analysis := h.engine.Analyze(messages)
	rep := report.NewReport(analysis, path)

	var formatter report.Formatter
	switch format {
	case "text":
		formatter = report.NewTextFormatter(report.FormatOptions{Verbose: true})
	default:
		formatter = report.NewJSONFormatter(report.FormatOptions{})
	}

	var buf bytes.Buffer
	if err := formatter.Format(ctx, rep, &buf); err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to render report", err), nil
	}

	return mcp.NewToolResultText(buf.String()), nil
}

// HandleInfo handles the chatlyze_info tool.
func (h *Handlers) HandleInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path is required"), nil
	}

	messages, err := h.parser.ParseFile(path)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to read export", err), nil
	}
	if len(messages) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no messages recognized in %s", path)), nil
	}

	info := parser.Info(messages)
	return mcp.NewToolResultText(formatInfo(path, info)), nil
}

// HandleBestLines handles the chatlyze_best_lines tool.
func (h *Handlers) HandleBestLines(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path is required"), nil
	}

	author := req.GetString("author", "")
	limit := req.GetInt("limit", 5)
	if limit < 1 {
		limit = 5
	}

	messages, err := h.parser.ParseFile(path)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to read export", err), nil
	}
	if len(messages) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no messages recognized in %s", path)), nil
	}

	analysis := h.engine.Analyze(messages)
	ranked := collectBestLines(analysis, author, limit)
	if len(ranked) == 0 {
		if author != "" {
			return mcp.NewToolResultText(fmt.Sprintf("No best lines found for %s.", author)), nil
		}
		return mcp.NewToolResultText("No best lines found."), nil
	}

	return mcp.NewToolResultText(formatBestLines(ranked)), nil
}

// rankedLine pairs a scored message with the participant who wrote it.
type rankedLine struct {
	Author string
	Line   analyzer.BestLine
}

// collectBestLines merges per-user best lines into a single ranking.
// Participants are visited in name order so equal scores resolve the
// same way on every run. Author matching is case-insensitive.
func collectBestLines(analysis *analyzer.Analysis, author string, limit int) []rankedLine {
	names := make([]string, 0, len(analysis.Users))
	for name := range analysis.Users {
		if author != "" && !strings.EqualFold(name, author) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var ranked []rankedLine
	for _, name := range names {
		for _, line := range analysis.Users[name].BestLines {
			ranked = append(ranked, rankedLine{Author: name, Line: line})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Line.Score > ranked[j].Line.Score
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func formatInfo(path string, info parser.ChatInfo) string {
	var lines []string

	lines = append(lines, fmt.Sprintf("=== %s ===", path))
	lines = append(lines, fmt.Sprintf("Messages: %d", info.TotalMessages))
	lines = append(lines, fmt.Sprintf("Participants: %d (%s)", info.Participants, strings.Join(info.ParticipantNames, ", ")))
	lines = append(lines, fmt.Sprintf("From: %s", info.StartDate.Format("2006-01-02 15:04")))
	lines = append(lines, fmt.Sprintf("To: %s", info.EndDate.Format("2006-01-02 15:04")))
	lines = append(lines, fmt.Sprintf("Duration: %d days", info.DurationDays))

	return strings.Join(lines, "\n")
}

func formatBestLines(ranked []rankedLine) string {
	lines := make([]string, 0, 2*len(ranked)+1)
	lines = append(lines, fmt.Sprintf("=== Best Lines (%d) ===", len(ranked)))

	for i, rl := range ranked {
		lines = append(lines, "")
		lines = append(lines, fmt.Sprintf("%d. %s [score %d, %s]", i+1, rl.Author, rl.Line.Score, rl.Line.Timestamp.Format("2006-01-02 15:04")))
		lines = append(lines, fmt.Sprintf("   %s", rl.Line.Body))
	}

	return strings.Join(lines, "\n")
}
