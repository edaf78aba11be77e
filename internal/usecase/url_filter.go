package usecase

import (
	"net/url"
	"strings"
)

// skippedExtensions lists binary resource types the crawler never fetches.
var skippedExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".pdf"}

// URLFilter decides whether a discovered link is worth visiting. It is a
// pure predicate; visited-set membership is the engine's concern.
type URLFilter struct {
	maxDepth       int
	sameDomainOnly bool
	seedHost       string
}

// NewURLFilter builds a filter scoped to the seed's host.
func NewURLFilter(maxDepth int, sameDomainOnly bool, seed *url.URL) *URLFilter {
	return &URLFilter{
		maxDepth:       maxDepth,
		sameDomainOnly: sameDomainOnly,
		seedHost:       strings.ToLower(seed.Host),
	}
}

// Accept reports whether candidate should be crawled at the given depth.
// Rejections: depth beyond the bound, unparsable or non-absolute URLs,
// non-HTTP schemes, skipped file extensions, and foreign hosts when the
// crawl is domain-restricted.
func (f *URLFilter) Accept(candidate string, depth int) bool {
	if depth > f.maxDepth {
		return false
	}

	u, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return false
	}
	if u.Host == "" {
		return false
	}

	path := strings.ToLower(u.Path)
	for _, ext := range skippedExtensions {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}

	if f.sameDomainOnly && !strings.EqualFold(u.Host, f.seedHost) {
		return false
	}
	return true
}
