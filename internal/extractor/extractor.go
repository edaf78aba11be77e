package extractor

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/webcrawler/internal/entity"
)

// LinkExtractor turns fetched page content into absolute hyperlink targets.
type LinkExtractor interface {
	Links(page *entity.Page) []string
}

// HTMLExtractor extracts a[href] targets from HTML, resolved against the
// page's final URL so relative links work after redirects.
type HTMLExtractor struct{}

// New creates an HTML link extractor.
func New() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Links returns the absolute link targets found on the page, fragment
// stripped and deduplicated. Pseudo-protocol links are skipped here; full
// crawlability checks belong to the URL filter.
func (e *HTMLExtractor) Links(page *entity.Page) []string {
	if page == nil || len(page.Body) == 0 {
		return nil
	}
	base := page.Base()
	if base == nil {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		slog.Debug("link extraction failed", "url", base.String(), "error", err)
		return nil
	}

	seen := make(map[string]struct{})
	var links []string

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		if strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
			return
		}

		u, err := base.Parse(href)
		if err != nil {
			return
		}
		u.Fragment = ""

		link := u.String()
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})

	return links
}
