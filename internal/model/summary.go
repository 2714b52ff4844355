package model

import (
	"fmt"
	"strconv"
	"time"
)

// Column labels of the run summary, in serialization order.
// The order is part of the stats.csv format and must not change.
const (
	LabelLinks               = "Links"
	LabelExternalLinks       = "External links"
	LabelUniqueExternalLinks = "Unique external links"
	LabelDeadLinks           = "Dead links"
	LabelDocumentLinks       = "Unique links to docs"
	LabelVisitedPages        = "URLs visited"
)

// SummaryHeader is the fixed header row of the summary table.
var SummaryHeader = []string{
	LabelLinks,
	LabelExternalLinks,
	LabelUniqueExternalLinks,
	LabelDeadLinks,
	LabelDocumentLinks,
	LabelVisitedPages,
}

// Summary holds the final counters of a crawl run.
// All counters are monotonically increasing during the run and final once
// the run is done.
type Summary struct {
	// HomeDomain is the domain substring the run was scoped to.
	HomeDomain string `json:"home_domain"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the run reached its terminal state.
	FinishedAt time.Time `json:"finished_at"`

	// Links is the total number of discovered links, including the seed URL.
	Links int `json:"links"`

	// ExternalLinks counts every occurrence of a link outside the home domain.
	ExternalLinks int `json:"external_links"`

	// UniqueExternalLinks is the number of distinct external links.
	UniqueExternalLinks int `json:"unique_external_links"`

	// DeadLinks is the number of fetches that failed.
	DeadLinks int `json:"dead_links"`

	// DocumentLinks is the number of distinct document links (never fetched).
	DocumentLinks int `json:"document_links"`

	// VisitedPages is the size of the visited set at the end of the run.
	VisitedPages int `json:"visited_pages"`

	// Interrupted is true when the run was cancelled before the frontier was
	// exhausted or the hop limit was reached.
	Interrupted bool `json:"interrupted,omitempty"`
}

// Duration returns how long the run took.
// It returns zero if the run has not finished.
func (s *Summary) Duration() time.Duration {
	if s.FinishedAt.IsZero() || s.StartedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Values returns the counters in SummaryHeader order.
func (s *Summary) Values() []int {
	return []int{
		s.Links,
		s.ExternalLinks,
		s.UniqueExternalLinks,
		s.DeadLinks,
		s.DocumentLinks,
		s.VisitedPages,
	}
}

// Row returns the counters formatted as strings in SummaryHeader order.
func (s *Summary) Row() []string {
	values := s.Values()
	row := make([]string, len(values))
	for i, v := range values {
		row[i] = strconv.Itoa(v)
	}
	return row
}

// SummaryFromRow builds a Summary from a row of counters in SummaryHeader order.
func SummaryFromRow(row []string) (*Summary, error) {
	if len(row) != len(SummaryHeader) {
		return nil, fmt.Errorf("summary row has %d columns, expected %d", len(row), len(SummaryHeader))
	}

	values := make([]int, len(row))
	for i, cell := range row {
		v, err := strconv.Atoi(cell)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", SummaryHeader[i], err)
		}
		values[i] = v
	}

	return &Summary{
		Links:               values[0],
		ExternalLinks:       values[1],
		UniqueExternalLinks: values[2],
		DeadLinks:           values[3],
		DocumentLinks:       values[4],
		VisitedPages:        values[5],
	}, nil
}
