package model

import "testing"

func TestNewReport(t *testing.T) {
	t.Parallel()

	t.Run("keeps the summary", func(t *testing.T) {
		t.Parallel()

		s := &Summary{HomeDomain: "spbu.ru", VisitedPages: 3}
		r := NewReport(s)
		if r.Summary != s {
			t.Error("expected the given summary to be used")
		}
		if r.Domain != nil {
			t.Error("expected no domain statistics")
		}
	})

	t.Run("nil summary becomes empty", func(t *testing.T) {
		t.Parallel()

		r := NewReport(nil)
		if r.Summary == nil {
			t.Fatal("expected a summary")
		}
		if r.Summary.VisitedPages != 0 || r.Summary.Links != 0 {
			t.Errorf("expected zero counters, got %+v", r.Summary)
		}
	})
}
