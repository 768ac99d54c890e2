package output

import (
	"fmt"
	"io"
	"os"

	"github.com/dshills/prdigest/internal/analyze"
)

// Writer writes a report in a specific format.
type Writer interface {
	Write(w io.Writer, report *analyze.Report) error
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "json":
		return &JSONWriter{}, nil
	case "markdown":
		return &MarkdownWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteReport writes the report to the specified output (file path or
// stdout when outPath is empty).
func WriteReport(report *analyze.Report, format, outPath string) error {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}

	w, closeFn, err := openOut(outPath)
	if err != nil {
		return err
	}
	defer closeFn()

	return writer.Write(w, report)
}

func openOut(outPath string) (io.Writer, func(), error) {
	if outPath == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
