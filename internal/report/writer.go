package report

import (
	"io"

	"github.com/nao1215/hopcrawl/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.Report) (int, error)
}

// MultiWriter writes to multiple Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers and stops on the
// first error.
func (m *MultiWriter) Write(report *model.Report) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// normalize makes sure a report always carries a summary.
func normalize(report *model.Report) *model.Report {
	if report == nil {
		return model.NewReport(nil)
	}
	if report.Summary == nil {
		return &model.Report{Summary: &model.Summary{}, Domain: report.Domain}
	}
	return report
}

// Status labels used by the text and Markdown writers.
const (
	statusComplete    = "complete"
	statusInterrupted = "interrupted (partial results)"
)

func statusOf(s *model.Summary) string {
	if s.Interrupted {
		return statusInterrupted
	}
	return statusComplete
}
