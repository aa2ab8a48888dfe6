package report

import (
	"encoding/json"
	"io"

	"github.com/docscore/docscore/internal/score"
)

// JSONExporter writes the report as indented JSON. The report struct
// is the wire format; nothing is reshaped on the way out.
type JSONExporter struct {
	w io.Writer
}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter(w io.Writer) *JSONExporter {
	return &JSONExporter{w: w}
}

// Export encodes the report.
func (e *JSONExporter) Export(r *score.ScoreReport) error {
	encoder := json.NewEncoder(e.w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}
