package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/hopcrawl/internal/model"
)

// Labels of the domain statistics lines.
const (
	LabelSubdomains    = "Subdomains"
	LabelInternalPages = "Internal pages"
)

// SimpleWriter outputs "label: value" lines, one per summary column in
// stats.csv order, followed by the domain statistics when present.
type SimpleWriter struct {
	baseWriter

	// header adds the home domain, timing and status above the counters.
	header bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithHeader prints run information above the counters.
func WithHeader(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.header = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report.
func (w *SimpleWriter) Write(report *model.Report) (int, error) {
	report = normalize(report)

	var sb strings.Builder
	if w.header {
		w.writeHeader(&sb, report.Summary)
	}

	values := report.Summary.Values()
	for i, label := range model.SummaryHeader {
		fmt.Fprintf(&sb, "%s: %d\n", label, values[i])
	}

	if report.Domain != nil {
		fmt.Fprintf(&sb, "%s: %d\n", LabelSubdomains, report.Domain.Subdomains)
		fmt.Fprintf(&sb, "%s: %d\n", LabelInternalPages, report.Domain.InternalPages)
	}

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the run information block.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, s *model.Summary) {
	sb.WriteString(strings.Repeat("=", 50))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "Home domain: %s\n", s.HomeDomain)
	if !s.StartedAt.IsZero() {
		fmt.Fprintf(sb, "Started:     %s\n", s.StartedAt.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintf(sb, "Duration:    %s\n", s.Duration().Round(time.Millisecond))
	fmt.Fprintf(sb, "Status:      %s\n", statusOf(s))
	sb.WriteString(strings.Repeat("=", 50))
	sb.WriteString("\n")
}
