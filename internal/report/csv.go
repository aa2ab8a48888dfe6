package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/docscore/docscore/internal/score"
)

// CSVExporter writes one row per category plus a composite row, for
// spreadsheet-based tracking across runs.
type CSVExporter struct {
	w io.Writer
}

// NewCSVExporter creates a CSV exporter.
func NewCSVExporter(w io.Writer) *CSVExporter {
	return &CSVExporter{w: w}
}

// Export writes the rows.
func (e *CSVExporter) Export(r *score.ScoreReport) error {
	cw := csv.NewWriter(e.w)

	if err := cw.Write([]string{"category", "score", "weight", "estimated", "issues"}); err != nil {
		return err
	}
	for _, key := range score.CategoryOrder {
		cat, ok := r.Categories[key]
		if !ok {
			continue
		}
		scoreCell := ""
		if cat.Score != nil {
			scoreCell = fmt.Sprintf("%.1f", *cat.Score)
		}
		row := []string{
			cat.ID,
			scoreCell,
			fmt.Sprintf("%.2f", cat.Weight),
			fmt.Sprintf("%t", cat.Estimated),
			fmt.Sprintf("%d", len(cat.Issues)),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	composite := []string{
		"composite",
		fmt.Sprintf("%.1f", r.CompositeScore),
		"1.00",
		"false",
		fmt.Sprintf("%d", len(r.AllIssues)),
	}
	if err := cw.Write(composite); err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}
