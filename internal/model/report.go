package model

// DomainStats holds statistics derived from the visited-URL log after a run.
type DomainStats struct {
	// Subdomains is the number of distinct subdomains of the home domain
	// that appear in the visited-URL log.
	Subdomains int `json:"subdomains"`

	// InternalPages is the number of logged pages that live directly on the
	// home domain (http or https).
	InternalPages int `json:"internal_pages"`
}

// Report is what the report writers print: the run summary and, when the
// statistics store has been populated, the per-domain statistics.
type Report struct {
	// Summary is the run summary. It is always present.
	Summary *Summary `json:"summary"`

	// Domain is nil until the visited-URL log has been analysed.
	Domain *DomainStats `json:"domain,omitempty"`
}

// NewReport creates a Report for the given summary.
func NewReport(summary *Summary) *Report {
	if summary == nil {
		summary = &Summary{}
	}
	return &Report{Summary: summary}
}
