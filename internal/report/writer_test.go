package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/hopcrawl/internal/model"
)

// createTestReport creates a report with sample data for testing.
func createTestReport() *model.Report {
	started := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	report := model.NewReport(&model.Summary{
		HomeDomain:          "spbu.ru",
		StartedAt:           started,
		FinishedAt:          started.Add(90 * time.Second),
		Links:               120,
		ExternalLinks:       30,
		UniqueExternalLinks: 12,
		DeadLinks:           4,
		DocumentLinks:       6,
		VisitedPages:        50,
	})
	report.Domain = &model.DomainStats{Subdomains: 3, InternalPages: 41}
	return report
}

// TestSimpleWriter tests the "label: value" writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes one line per column then domain statistics", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := strings.Join([]string{
			"Links: 120",
			"External links: 30",
			"Unique external links: 12",
			"Dead links: 4",
			"Unique links to docs: 6",
			"URLs visited: 50",
			"Subdomains: 3",
			"Internal pages: 41",
		}, "\n") + "\n"
		if buf.String() != want {
			t.Errorf("unexpected output:\n%s\nexpected:\n%s", buf.String(), want)
		}
	})

	t.Run("omits domain statistics when absent", func(t *testing.T) {
		t.Parallel()

		report := createTestReport()
		report.Domain = nil

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), LabelSubdomains) {
			t.Errorf("expected no domain statistics, got:\n%s", buf.String())
		}
	})

	t.Run("header shows run information", func(t *testing.T) {
		t.Parallel()

		report := createTestReport()
		report.Summary.Interrupted = true

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithHeader(true)).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		for _, want := range []string{"Home domain: spbu.ru", "Duration:    1m30s", statusInterrupted} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q:\n%s", want, output)
			}
		}
	})

	t.Run("nil report writes zero counters", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(buf.String(), "Links: 0\n") {
			t.Errorf("unexpected output: %q", buf.String())
		}
	})
}

// TestMarkdownWriter tests the Markdown writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes tables and chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewMarkdownWriter(&buf).Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n == 0 {
			t.Error("expected non-zero byte count")
		}

		output := buf.String()
		for _, want := range []string{
			"# hopcrawl Report",
			"spbu.ru",
			"## Summary",
			"Unique links to docs",
			"mermaid",
			"## Domain Statistics",
			"Internal pages",
			"4 page(s) could not be fetched.",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("interrupted run gets a warning", func(t *testing.T) {
		t.Parallel()

		report := createTestReport()
		report.Summary.Interrupted = true

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "interrupted after 50 visited page(s)") {
			t.Errorf("expected interruption warning:\n%s", buf.String())
		}
	})

	t.Run("empty run has no chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(model.NewReport(&model.Summary{HomeDomain: "spbu.ru"})); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "mermaid") {
			t.Error("expected no chart for an empty run")
		}
		if strings.Contains(buf.String(), "Domain Statistics") {
			t.Error("expected no domain section")
		}
	})
}

// TestJSONWriter tests the JSON writers.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact output decodes back", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Errorf("expected single-line output, got:\n%s", buf.String())
		}

		var decoded model.Report
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if decoded.Summary.VisitedPages != 50 || decoded.Domain.InternalPages != 41 {
			t.Errorf("unexpected decoded report: %+v %+v", decoded.Summary, decoded.Domain)
		}
	})

	t.Run("pretty print", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"summary\"") {
			t.Errorf("expected indented output, got:\n%s", buf.String())
		}
	})

	t.Run("full writer adds version", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewFullJSONWriter(&buf, "v1.2.3").Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded struct {
			Version string         `json:"version"`
			Summary *model.Summary `json:"summary"`
		}
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if decoded.Version != "v1.2.3" || decoded.Summary == nil || decoded.Summary.HomeDomain != "spbu.ru" {
			t.Errorf("unexpected decoded report: %+v", decoded)
		}
	})
}

// TestCSV tests writing and reading the summary table.
func TestCSV(t *testing.T) {
	t.Parallel()

	t.Run("writes header and one row", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewCSVWriter(&buf).Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := "Links,External links,Unique external links,Dead links,Unique links to docs,URLs visited\n120,30,12,4,6,50\n"
		if buf.String() != want {
			t.Errorf("unexpected CSV:\n%s", buf.String())
		}
		if n != len(want) {
			t.Errorf("expected %d bytes, got %d", len(want), n)
		}
	})

	t.Run("file round trip", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "logs", "stats.csv")
		if err := WriteSummaryFile(path, createTestReport().Summary); err != nil {
			t.Fatalf("failed to write summary: %v", err)
		}

		summary, err := ReadSummaryFile(path)
		if err != nil {
			t.Fatalf("failed to read summary: %v", err)
		}
		if summary.Links != 120 || summary.DocumentLinks != 6 || summary.VisitedPages != 50 {
			t.Errorf("unexpected summary: %+v", summary)
		}
	})

	t.Run("reads the legacy misspelt header by position", func(t *testing.T) {
		t.Parallel()

		input := "inks,External links,Unique external links,Dead links,Unique links to docs,URLs visited\n7,1,1,0,0,3\n"
		summary, err := ReadSummaryCSV(strings.NewReader(input))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.Links != 7 || summary.VisitedPages != 3 {
			t.Errorf("unexpected summary: %+v", summary)
		}
	})

	t.Run("malformed tables", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name  string
			input string
		}{
			{name: "empty", input: ""},
			{name: "header only", input: "Links,External links,Unique external links,Dead links,Unique links to docs,URLs visited\n"},
			{name: "narrow header", input: "a,b\n1,2\n"},
			{name: "not a number", input: "a,b,c,d,e,f\n1,2,x,4,5,6\n"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				_, err := ReadSummaryCSV(strings.NewReader(tt.input))
				if !errors.Is(err, ErrMalformedSummary) {
					t.Errorf("expected ErrMalformedSummary, got %v", err)
				}
			})
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		if _, err := ReadSummaryFile(filepath.Join(t.TempDir(), "stats.csv")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

// TestMultiWriter tests writing to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, csvOut bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&text), NewCSVWriter(&csvOut))

	n, err := mw.Write(createTestReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != text.Len()+csvOut.Len() {
		t.Errorf("expected %d bytes, got %d", text.Len()+csvOut.Len(), n)
	}
}
