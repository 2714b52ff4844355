package crawler

import (
	"strings"
	"sync"
)

// Frontier owns the crawl state shared by the fetch tasks of a batch: the
// FIFO queue of pending in-domain URLs and the visited, external and
// document sets. A single mutex guards all of it, so the membership check and
// the insert in AddCandidate happen atomically.
type Frontier struct {
	homeDomain string
	cleaner    *QueryCleaner
	stats      *Stats

	mu        sync.Mutex
	queue     []string
	queued    map[string]struct{}
	inFlight  map[string]struct{}
	visited   map[string]struct{}
	external  map[string]struct{}
	documents map[string]struct{}
}

// NewFrontier creates an empty Frontier for homeDomain. External link
// occurrences are counted in stats.
func NewFrontier(homeDomain string, cleaner *QueryCleaner, stats *Stats) *Frontier {
	if cleaner == nil {
		cleaner = NewQueryCleaner()
	}
	if stats == nil {
		stats = NewStats()
	}
	return &Frontier{
		homeDomain: homeDomain,
		cleaner:    cleaner,
		stats:      stats,
		queued:     make(map[string]struct{}),
		inFlight:   make(map[string]struct{}),
		visited:    make(map[string]struct{}),
		external:   make(map[string]struct{}),
		documents:  make(map[string]struct{}),
	}
}

// Seed queues the crawl root without classifying or counting it.
func (f *Frontier) Seed(rootURL string) {
	u := strings.TrimRight(rootURL, "/")

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.knownLocked(u) {
		return
	}
	f.queue = append(f.queue, u)
	f.queued[u] = struct{}{}
}

// AddCandidate routes a discovered URL. Trailing slashes are stripped first.
// A URL that is already visited, queued, being fetched or recorded as a
// document is ignored. Otherwise an in-domain URL is appended to the queue
// and any other URL is counted as external and added to the external set.
//
// It reports whether the URL was queued.
func (f *Frontier) AddCandidate(rawURL string) bool {
	u := strings.TrimRight(rawURL, "/")

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.knownLocked(u) {
		return false
	}
	if !IsInDomain(u, f.homeDomain) {
		f.stats.AddExternal()
		f.external[u] = struct{}{}
		return false
	}
	f.queue = append(f.queue, u)
	f.queued[u] = struct{}{}
	return true
}

func (f *Frontier) knownLocked(u string) bool {
	for _, set := range []map[string]struct{}{f.visited, f.queued, f.inFlight, f.documents} {
		if _, ok := set[u]; ok {
			return true
		}
	}
	return false
}

// DrainBatch removes up to maxSize URLs from the front of the queue and
// returns them cleaned, in FIFO order. A URL whose cleaned form was already
// visited, is being fetched, is a recorded document or appears earlier in
// the same batch is dropped without taking a slot. Returned URLs stay in
// flight until Commit.
func (f *Frontier) DrainBatch(maxSize int) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	batch := make([]string, 0, min(maxSize, len(f.queue)))
	for len(batch) < maxSize && len(f.queue) > 0 {
		raw := f.queue[0]
		f.queue[0] = ""
		f.queue = f.queue[1:]
		delete(f.queued, raw)

		u := f.cleaner.Clean(raw)
		if _, ok := f.visited[u]; ok {
			continue
		}
		if _, ok := f.inFlight[u]; ok {
			continue
		}
		if _, ok := f.documents[u]; ok {
			continue
		}
		f.inFlight[u] = struct{}{}
		batch = append(batch, u)
	}
	return batch
}

// RecordDocument adds u to the document set.
func (f *Frontier) RecordDocument(u string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.documents[u] = struct{}{}
}

// Commit marks a fully processed batch as visited. Documents are released
// from the in-flight set without being visited. It returns the URLs that
// became visited, in batch order.
func (f *Frontier) Commit(batch []string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	pages := make([]string, 0, len(batch))
	for _, u := range batch {
		delete(f.inFlight, u)
		if _, ok := f.documents[u]; ok {
			continue
		}
		f.visited[u] = struct{}{}
		pages = append(pages, u)
	}
	return pages
}

// Len returns the number of queued URLs.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// VisitedCount returns the size of the visited set.
func (f *Frontier) VisitedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.visited)
}

// ExternalCount returns the number of unique external links.
func (f *Frontier) ExternalCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.external)
}

// DocumentCount returns the number of unique document links.
func (f *Frontier) DocumentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.documents)
}

// Queued returns a copy of the queue in FIFO order.
func (f *Frontier) Queued() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queue...)
}

// IsVisited reports whether u is in the visited set.
func (f *Frontier) IsVisited(u string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.visited[u]
	return ok
}

// IsExternal reports whether u is in the external set.
func (f *Frontier) IsExternal(u string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.external[u]
	return ok
}
