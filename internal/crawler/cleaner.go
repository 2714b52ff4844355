package crawler

import (
	"net/url"
	"strings"
)

// QueryCleaner normalizes URLs as they leave the frontier. It drops the
// fragment and every query parameter whose name is not in the keep list,
// then strips trailing slashes.
type QueryCleaner struct {
	keep map[string]struct{}
}

// NewQueryCleaner creates a QueryCleaner that preserves the named query
// parameters. With no names, the whole query string is removed.
func NewQueryCleaner(keep ...string) *QueryCleaner {
	c := &QueryCleaner{keep: make(map[string]struct{}, len(keep))}
	for _, name := range keep {
		if name = strings.TrimSpace(name); name != "" {
			c.keep[name] = struct{}{}
		}
	}
	return c
}

// Clean returns the normalized form of rawURL. Kept parameters retain their
// original order and encoding.
func (c *QueryCleaner) Clean(rawURL string) string {
	s, _, _ := strings.Cut(rawURL, "#")
	s, query, hasQuery := strings.Cut(s, "?")

	if hasQuery && len(c.keep) > 0 {
		var kept []string
		for pair := range strings.SplitSeq(query, "&") {
			if pair == "" {
				continue
			}
			name, _, _ := strings.Cut(pair, "=")
			if decoded, err := url.QueryUnescape(name); err == nil {
				name = decoded
			}
			if _, ok := c.keep[name]; ok {
				kept = append(kept, pair)
			}
		}
		if len(kept) > 0 {
			return strings.TrimRight(s, "/") + "?" + strings.Join(kept, "&")
		}
	}
	return strings.TrimRight(s, "/")
}
