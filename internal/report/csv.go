package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/hopcrawl/internal/model"
)

// ErrMalformedSummary is returned when a stats.csv table cannot be read.
var ErrMalformedSummary = errors.New("malformed summary table")

// CSVWriter writes the summary as a two-row table: the fixed header and
// one row of counters. Domain statistics are not part of the table.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary table.
func (w *CSVWriter) Write(report *model.Report) (int, error) {
	report = normalize(report)
	cw := &countingWriter{w: w.output}
	out := csv.NewWriter(cw)

	if err := out.Write(model.SummaryHeader); err != nil {
		return cw.n, err
	}
	if err := out.Write(report.Summary.Row()); err != nil {
		return cw.n, err
	}
	out.Flush()
	return cw.n, out.Error()
}

// WriteSummaryFile writes the summary table to path, replacing any
// existing file.
func WriteSummaryFile(path string, summary *model.Summary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	//nolint:gosec // path comes from the configured output directory
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}

	if _, err := NewCSVWriter(f).Write(model.NewReport(summary)); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write summary file: %w", err)
	}
	return f.Close()
}

// ReadSummaryCSV reads a summary table. Columns are matched by position,
// so the header text is only checked for its width.
func ReadSummaryCSV(r io.Reader) (*model.Summary, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSummary, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: expected a header and a row, got %d line(s)", ErrMalformedSummary, len(records))
	}
	if len(records[0]) != len(model.SummaryHeader) {
		return nil, fmt.Errorf("%w: header has %d columns", ErrMalformedSummary, len(records[0]))
	}

	summary, err := model.SummaryFromRow(records[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSummary, err)
	}
	return summary, nil
}

// ReadSummaryFile reads the summary table at path.
func ReadSummaryFile(path string) (*model.Summary, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the configured output directory
	if err != nil {
		return nil, fmt.Errorf("failed to open summary file: %w", err)
	}
	defer f.Close()

	return ReadSummaryCSV(f)
}

// countingWriter counts the bytes passed through to w.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
