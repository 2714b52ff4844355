package crawler

import (
	"net/url"
	"strings"
)

// documentSuffixes are the path suffixes of links that are recorded but never fetched.
var documentSuffixes = []string{".doc", ".docx", ".pdf"}

// IsDocument reports whether the path of rawURL ends in a document suffix.
// The query string and fragment are ignored.
func IsDocument(rawURL string) bool {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	} else if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	for _, suffix := range documentSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// IsInDomain reports whether homeDomain occurs anywhere in rawURL.
// The match is a plain substring test, so subdomains such as math.spbu.ru
// belong to spbu.ru, and so does any URL that merely mentions the domain.
func IsInDomain(rawURL, homeDomain string) bool {
	return strings.Contains(rawURL, homeDomain)
}
