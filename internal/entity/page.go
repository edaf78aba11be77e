package entity

import (
	"net/url"
	"time"
)

// Page is the result of a successful fetch. Body holds the decoded response
// bytes; FinalURL is the address after redirects and is the base for
// resolving relative links found on the page.
type Page struct {
	URL         *url.URL
	FinalURL    *url.URL
	StatusCode  int
	ContentType string
	Body        []byte
	FetchedAt   time.Time
}

// Base returns the URL that relative links on this page resolve against.
func (p *Page) Base() *url.URL {
	if p.FinalURL != nil {
		return p.FinalURL
	}
	return p.URL
}
