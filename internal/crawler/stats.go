package crawler

import "sync/atomic"

// Stats holds the monotonically increasing counters of one crawl run.
// Counters are updated from concurrent fetch tasks.
type Stats struct {
	links    atomic.Int64
	external atomic.Int64
	dead     atomic.Int64
}

// NewStats creates a Stats whose link counter already includes the seed URL.
func NewStats() *Stats {
	s := &Stats{}
	s.links.Store(1)
	return s
}

// AddLink counts one discovered link.
func (s *Stats) AddLink() { s.links.Add(1) }

// AddExternal counts one occurrence of an external link.
func (s *Stats) AddExternal() { s.external.Add(1) }

// AddDead counts one failed fetch.
func (s *Stats) AddDead() { s.dead.Add(1) }

// Links returns the number of discovered links, seed included.
func (s *Stats) Links() int { return int(s.links.Load()) }

// External returns the number of external link occurrences.
func (s *Stats) External() int { return int(s.external.Load()) }

// Dead returns the number of failed fetches.
func (s *Stats) Dead() int { return int(s.dead.Load()) }
