package crawler

import "testing"

func newTestFrontier(keep ...string) (*Frontier, *Stats) {
	stats := NewStats()
	return NewFrontier("example.com", NewQueryCleaner(keep...), stats), stats
}

func TestFrontier_AddCandidate(t *testing.T) {
	t.Parallel()

	t.Run("enqueue is idempotent across trailing slashes", func(t *testing.T) {
		t.Parallel()

		f, stats := newTestFrontier()

		if !f.AddCandidate("https://example.com/a") {
			t.Error("expected first add to queue the URL")
		}
		if f.AddCandidate("https://example.com/a/") {
			t.Error("expected equivalent URL to be ignored")
		}
		if f.AddCandidate("https://example.com/a") {
			t.Error("expected duplicate URL to be ignored")
		}

		if got := f.Len(); got != 1 {
			t.Errorf("expected 1 queued URL, got %d", got)
		}
		if got := stats.External(); got != 0 {
			t.Errorf("expected no external links, got %d", got)
		}
	})

	t.Run("each URL lands in exactly one of queue and external set", func(t *testing.T) {
		t.Parallel()

		f, stats := newTestFrontier()
		urls := []string{
			"https://example.com/a",
			"https://other.org",
			"https://math.example.com/staff",
			"https://other.org/x/",
		}
		for _, u := range urls {
			f.AddCandidate(u)
		}

		queued := make(map[string]bool)
		for _, u := range f.Queued() {
			queued[u] = true
		}
		for _, u := range []string{"https://example.com/a", "https://other.org", "https://math.example.com/staff", "https://other.org/x"} {
			inQueue := queued[u]
			inExternal := f.IsExternal(u)
			if inQueue == inExternal {
				t.Errorf("%s: queued=%v external=%v, expected exactly one", u, inQueue, inExternal)
			}
		}
		if got := stats.External(); got != 2 {
			t.Errorf("expected 2 external occurrences, got %d", got)
		}
	})

	t.Run("external occurrences are counted, unique set deduplicates", func(t *testing.T) {
		t.Parallel()

		f, stats := newTestFrontier()
		f.AddCandidate("https://other.org")
		f.AddCandidate("https://other.org/")
		f.AddCandidate("https://other.org")

		if got := stats.External(); got != 3 {
			t.Errorf("expected 3 external occurrences, got %d", got)
		}
		if got := f.ExternalCount(); got != 1 {
			t.Errorf("expected 1 unique external link, got %d", got)
		}
	})

	t.Run("visited and in-flight URLs are not queued again", func(t *testing.T) {
		t.Parallel()

		f, _ := newTestFrontier()
		f.AddCandidate("https://example.com/a")
		f.AddCandidate("https://example.com/b")

		batch := f.DrainBatch(1)
		if f.AddCandidate("https://example.com/a") {
			t.Error("expected in-flight URL to be ignored")
		}
		f.Commit(batch)
		if f.AddCandidate("https://example.com/a/") {
			t.Error("expected visited URL to be ignored")
		}
		if got := f.Len(); got != 1 {
			t.Errorf("expected 1 queued URL, got %d", got)
		}
	})

	t.Run("recorded documents are not queued again", func(t *testing.T) {
		t.Parallel()

		f, _ := newTestFrontier()
		f.AddCandidate("https://example.com/report.pdf")
		batch := f.DrainBatch(8)
		f.RecordDocument(batch[0])
		f.Commit(batch)

		if f.AddCandidate("https://example.com/report.pdf") {
			t.Error("expected recorded document to be ignored")
		}
	})
}

func TestFrontier_DrainBatch(t *testing.T) {
	t.Parallel()

	t.Run("drains in FIFO order up to the batch size", func(t *testing.T) {
		t.Parallel()

		f, _ := newTestFrontier()
		for _, p := range []string{"a", "b", "c"} {
			f.AddCandidate("https://example.com/" + p)
		}

		first := f.DrainBatch(2)
		if len(first) != 2 || first[0] != "https://example.com/a" || first[1] != "https://example.com/b" {
			t.Errorf("unexpected first batch: %v", first)
		}
		second := f.DrainBatch(2)
		if len(second) != 1 || second[0] != "https://example.com/c" {
			t.Errorf("unexpected second batch: %v", second)
		}
		if third := f.DrainBatch(2); len(third) != 0 {
			t.Errorf("expected empty batch, got %v", third)
		}
	})

	t.Run("cleans query and fragment at dequeue", func(t *testing.T) {
		t.Parallel()

		f, _ := newTestFrontier()
		f.AddCandidate("https://example.com/p?utm_source=x#top")

		batch := f.DrainBatch(8)
		if len(batch) != 1 || batch[0] != "https://example.com/p" {
			t.Errorf("expected cleaned URL, got %v", batch)
		}
	})

	t.Run("spellings that clean to the same URL take one slot", func(t *testing.T) {
		t.Parallel()

		f, _ := newTestFrontier()
		f.AddCandidate("https://example.com/p?x=1")
		f.AddCandidate("https://example.com/p?x=2")
		f.AddCandidate("https://example.com/q")

		batch := f.DrainBatch(2)
		if len(batch) != 2 || batch[0] != "https://example.com/p" || batch[1] != "https://example.com/q" {
			t.Errorf("unexpected batch: %v", batch)
		}
	})

	t.Run("cleaned URL already visited is skipped", func(t *testing.T) {
		t.Parallel()

		f, _ := newTestFrontier()
		f.AddCandidate("https://example.com/p")
		f.Commit(f.DrainBatch(8))

		f.AddCandidate("https://example.com/p?page=2")
		if batch := f.DrainBatch(8); len(batch) != 0 {
			t.Errorf("expected visited URL to be skipped, got %v", batch)
		}
	})

	t.Run("allowlisted query parameters survive", func(t *testing.T) {
		t.Parallel()

		f, _ := newTestFrontier("page")
		f.AddCandidate("https://example.com/news?utm=1&page=2")

		batch := f.DrainBatch(8)
		if len(batch) != 1 || batch[0] != "https://example.com/news?page=2" {
			t.Errorf("unexpected batch: %v", batch)
		}
	})
}

func TestFrontier_Commit(t *testing.T) {
	t.Parallel()

	f, _ := newTestFrontier()
	f.AddCandidate("https://example.com/a")
	f.AddCandidate("https://example.com/b")
	f.AddCandidate("https://example.com/c.pdf")

	batch := f.DrainBatch(8)
	f.RecordDocument("https://example.com/c.pdf")
	before := f.VisitedCount()
	pages := f.Commit(batch)

	if got := f.VisitedCount() - before; got != 2 {
		t.Errorf("expected visited set to grow by 2, got %d", got)
	}
	if len(pages) != 2 || pages[0] != "https://example.com/a" || pages[1] != "https://example.com/b" {
		t.Errorf("unexpected committed pages: %v", pages)
	}
	if f.IsVisited("https://example.com/c.pdf") {
		t.Error("expected document not to be visited")
	}
	if got := f.DocumentCount(); got != 1 {
		t.Errorf("expected 1 document, got %d", got)
	}
}

func TestQueryCleaner_Clean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		keep []string
		in   string
		want string
	}{
		{name: "plain URL", in: "https://example.com/a", want: "https://example.com/a"},
		{name: "trailing slash", in: "https://example.com/a/", want: "https://example.com/a"},
		{name: "query removed", in: "https://example.com/a/?b=1&c=2", want: "https://example.com/a"},
		{name: "fragment removed", in: "https://example.com/a#sec", want: "https://example.com/a"},
		{name: "question mark in fragment", in: "https://example.com/a#x?y", want: "https://example.com/a"},
		{name: "kept parameter", keep: []string{"id"}, in: "https://example.com/a?utm=1&id=7", want: "https://example.com/a?id=7"},
		{name: "kept parameters keep order", keep: []string{"id", "page"}, in: "https://example.com/a?page=2&x=1&id=7", want: "https://example.com/a?page=2&id=7"},
		{name: "nothing kept", keep: []string{"id"}, in: "https://example.com/a/?utm=1", want: "https://example.com/a"},
		{name: "escaped parameter name", keep: []string{"q s"}, in: "https://example.com/a?q%20s=1", want: "https://example.com/a?q%20s=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := NewQueryCleaner(tt.keep...).Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, expected %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	s := NewStats()
	if got := s.Links(); got != 1 {
		t.Errorf("expected seed to be counted, got %d", got)
	}
	s.AddLink()
	s.AddExternal()
	s.AddDead()
	s.AddDead()

	if s.Links() != 2 || s.External() != 1 || s.Dead() != 2 {
		t.Errorf("unexpected counters: links=%d external=%d dead=%d", s.Links(), s.External(), s.Dead())
	}
}
