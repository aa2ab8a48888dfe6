package mcpserver

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/docscore/docscore/internal/content"
	"github.com/docscore/docscore/internal/engine"
	"github.com/docscore/docscore/internal/report"
	"github.com/docscore/docscore/internal/score"
)

// ScorePageTool handles the score_page MCP tool: scoring markdown
// passed inline by the calling agent.
type ScorePageTool struct {
	engine *engine.Engine
}

// NewScorePageTool creates a ScorePageTool.
func NewScorePageTool(eng *engine.Engine) *ScorePageTool {
	return &ScorePageTool{engine: eng}
}

// Definition returns the MCP tool definition for score_page.
func (t *ScorePageTool) Definition() mcp.Tool {
	return mcp.NewTool("score_page",
		mcp.WithDescription(
			"Score a documentation page for AI-friendliness. Pass the page content as markdown; "+
				"returns a 0-10 composite score with per-category breakdown and concrete fixes.",
		),
		mcp.WithString("markdown",
			mcp.Required(),
			mcp.Description("The page content as markdown"),
		),
		mcp.WithString("url",
			mcp.Description("Canonical URL of the page (used for link resolution and reporting)"),
		),
		mcp.WithString("title",
			mcp.Description("Page title, if known"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: summary (default) or markdown for the full report"),
		),
	)
}

// Handle processes the score_page tool call.
func (t *ScorePageTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	markdown := req.GetString("markdown", "")
	if markdown == "" {
		return mcp.NewToolResultError("'markdown' is required"), nil
	}
	url := req.GetString("url", "")
	if url == "" {
		url = "mcp://inline"
	}

	nc, err := content.ExtractMarkdown(url, []byte(markdown))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("extracting content: %v", err)), nil
	}
	if title := req.GetString("title", ""); title != "" {
		nc.Meta.Title = title
	}

	r, err := t.engine.Score(ctx, nc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scoring failed: %v", err)), nil
	}

	return renderResult(r, req.GetString("format", "summary"))
}

// ScoreURLTool handles the score_url MCP tool: fetching a live page
// over HTTP and scoring the extracted content.
type ScoreURLTool struct {
	engine *engine.Engine
}

// NewScoreURLTool creates a ScoreURLTool.
func NewScoreURLTool(eng *engine.Engine) *ScoreURLTool {
	return &ScoreURLTool{engine: eng}
}

// Definition returns the MCP tool definition for score_url.
func (t *ScoreURLTool) Definition() mcp.Tool {
	return mcp.NewTool("score_url",
		mcp.WithDescription(
			"Fetch a documentation page by URL and score it for AI-friendliness.",
		),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("URL of the page to fetch and score"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: summary (default) or markdown for the full report"),
		),
	)
}

// Handle processes the score_url tool call.
func (t *ScoreURLTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url := req.GetString("url", "")
	if url == "" {
		return mcp.NewToolResultError("'url' is required"), nil
	}

	nc, err := content.FetchURL(ctx, url)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetching %s: %v", url, err)), nil
	}

	r, err := t.engine.Score(ctx, nc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scoring failed: %v", err)), nil
	}

	return renderResult(r, req.GetString("format", "summary"))
}

func renderResult(r *score.ScoreReport, format string) (*mcp.CallToolResult, error) {
	if format == "markdown" {
		var buf bytes.Buffer
		if err := report.NewMarkdownExporter(&buf).Export(r); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("rendering report: %v", err)), nil
		}
		return mcp.NewToolResultText(buf.String()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", r.Summary)
	for _, key := range score.CategoryOrder {
		cat, ok := r.Categories[key]
		if !ok {
			continue
		}
		if cat.Score == nil {
			fmt.Fprintf(&b, "- %s: estimated (excluded)\n", cat.Name)
			continue
		}
		fmt.Fprintf(&b, "- %s: %.1f/10\n", cat.Name, *cat.Score)
	}
	if len(r.TopIssues) > 0 {
		b.WriteString("\nTop issues:\n")
		for _, issue := range r.TopIssues {
			fmt.Fprintf(&b, "- [%s] %s", issue.Severity, issue.Message)
			if issue.Fix != "" {
				fmt.Fprintf(&b, " (fix: %s)", issue.Fix)
			}
			b.WriteString("\n")
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}
