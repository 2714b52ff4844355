package crawler

import (
	"iter"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// ExtractLinks returns a single-pass sequence over the href targets of the
// anchors in content, in document order.
//
// Each element is (link, true) for an anchor with a target and ("", false)
// for an anchor without one, so the caller can skip it and keep iterating.
// Root-relative targets ("/path") are resolved against baseURL; every other
// target is yielded as written. A root-relative target that cannot be
// resolved is yielded as absent.
//
// The tokenizer never fails on malformed markup; it stops at the end of the
// input.
func ExtractLinks(baseURL, content string) iter.Seq2[string, bool] {
	return func(yield func(string, bool) bool) {
		base, baseErr := url.Parse(baseURL)
		z := html.NewTokenizer(strings.NewReader(content))

		for {
			switch z.Next() {
			case html.ErrorToken:
				return
			case html.StartTagToken, html.SelfClosingTagToken:
				name, hasAttr := z.TagName()
				if string(name) != "a" {
					continue
				}

				href := ""
				for hasAttr {
					var key, val []byte
					key, val, hasAttr = z.TagAttr()
					if string(key) == "href" {
						href = strings.TrimSpace(string(val))
						break
					}
				}

				link, ok := resolveHref(base, baseErr, href)
				if !yield(link, ok) {
					return
				}
			}
		}
	}
}

// resolveHref turns an href value into the link handed to the frontier.
func resolveHref(base *url.URL, baseErr error, href string) (string, bool) {
	if href == "" {
		return "", false
	}
	if !strings.HasPrefix(href, "/") {
		return href, true
	}
	if baseErr != nil {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}
