// Package report renders a finished score report for humans and
// machines: terminal, markdown, JSON, and CSV exporters behind one
// interface. Exporters never mutate the report.
package report

import (
	"io"

	"github.com/docscore/docscore/internal/score"
)

// Exporter writes one report to its destination.
type Exporter interface {
	Export(r *score.ScoreReport) error
}

// New returns the exporter for a format name. Unknown formats fall
// back to the terminal exporter.
func New(format string, w io.Writer) Exporter {
	switch format {
	case "json":
		return NewJSONExporter(w)
	case "markdown", "md":
		return NewMarkdownExporter(w)
	case "csv":
		return NewCSVExporter(w)
	default:
		return NewTerminalExporter(w)
	}
}

// Formats lists the supported export format names.
func Formats() []string {
	return []string{"terminal", "json", "markdown", "csv"}
}

// countBySeverity tallies issues for summary lines.
func countBySeverity(issues []score.Issue) (critical, warning, info int) {
	for _, issue := range issues {
		switch issue.Severity {
		case score.Critical:
			critical++
		case score.Warning:
			warning++
		case score.Info:
			info++
		}
	}
	return
}
