package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/hopcrawl/internal/model"
)

// MarkdownWriter outputs reports in Markdown format, built with
// github.com/nao1215/markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	report = normalize(report)
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report.Summary)
	w.writeSummary(md, report.Summary)
	if report.Domain != nil {
		w.writeDomain(md, report.Domain)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the run information table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *model.Summary) {
	md.H1("hopcrawl Report")
	md.PlainText("")

	rows := [][]string{
		{"Home domain", "`" + s.HomeDomain + "`"},
	}
	if !s.StartedAt.IsZero() {
		rows = append(rows, []string{"Started", s.StartedAt.Format("2006-01-02 15:04:05 MST")})
	}
	rows = append(rows,
		[]string{"Duration", s.Duration().String()},
		[]string{"Status", statusOf(s)},
	)

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSummary writes the counters table, a chart of visited pages and an alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, s *model.Summary) {
	md.H2("Summary")
	md.PlainText("")

	values := s.Values()
	rows := make([][]string, len(values))
	for i, label := range model.SummaryHeader {
		rows[i] = []string{label, strconv.Itoa(values[i])}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if s.VisitedPages > 0 || s.DocumentLinks > 0 {
		w.writePieChart(md, s)
	}
	w.writeAlert(md, s)
}

// writePieChart writes a mermaid pie chart of how batch slots were spent.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s *model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Crawled URLs"),
		piechart.WithShowData(true),
	)

	if ok := s.VisitedPages - s.DeadLinks; ok > 0 {
		chart.LabelAndIntValue("Fetched", uint64(ok))
	}
	if s.DeadLinks > 0 {
		chart.LabelAndIntValue("Dead", uint64(s.DeadLinks))
	}
	if s.DocumentLinks > 0 {
		chart.LabelAndIntValue("Documents", uint64(s.DocumentLinks))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert describing the quality of the run.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, s *model.Summary) {
	switch {
	case s.Interrupted:
		md.Warningf("The crawl was interrupted after %d visited page(s). Counters are partial.", s.VisitedPages)
	case s.DeadLinks > 0:
		md.Importantf("%d page(s) could not be fetched.", s.DeadLinks)
	default:
		md.Tip("Every visited page was fetched successfully.")
	}
	md.PlainText("")
}

// writeDomain writes the statistics computed from the visited-URL log.
func (w *MarkdownWriter) writeDomain(md *markdown.Markdown, d *model.DomainStats) {
	md.H2("Domain Statistics")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{LabelSubdomains, strconv.Itoa(d.Subdomains)},
			{LabelInternalPages, strconv.Itoa(d.InternalPages)},
		},
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [hopcrawl](https://github.com/nao1215/hopcrawl)*")
}
