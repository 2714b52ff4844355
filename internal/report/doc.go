// Package report writes crawl run reports.
//
// Writers:
//   - SimpleWriter: "label: value" lines for the terminal
//   - MarkdownWriter: Markdown tables and a mermaid chart
//   - JSONWriter, FullJSONWriter: JSON for tool integration
//   - CSVWriter: the stats.csv summary table
//
// ReadSummaryCSV reads a stats.csv table back into a model.Summary.
// Report data structures live in the model package.
package report
