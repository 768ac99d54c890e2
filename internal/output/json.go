package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/prdigest/internal/analyze"
)

// JSONWriter outputs the full report as JSON, structure verbatim.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, report *analyze.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
