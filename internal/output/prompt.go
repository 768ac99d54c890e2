package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/prdigest/internal/analyze"
	"github.com/dshills/prdigest/internal/pr"
)

// WritePrompt emits the raw analysis prompt followed by the full
// normalized record as JSON. This is the alternate downstream consumer
// to report generation, selected by configuration.
func WritePrompt(rec *pr.Record, outPath string) error {
	w, closeFn, err := openOut(outPath)
	if err != nil {
		return err
	}
	defer closeFn()
	return writePrompt(w, rec)
}

func writePrompt(w io.Writer, rec *pr.Record) error {
	fmt.Fprintln(w, "--- PROMPT ---")
	fmt.Fprintln(w, analyze.BuildPrompt(rec))
	fmt.Fprintln(w, "--- DATA ---")

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
