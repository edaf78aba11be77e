package extractor

import (
	"net/url"
	"testing"

	"github.com/user/webcrawler/internal/entity"
)

func pageWith(t *testing.T, base, html string) *entity.Page {
	t.Helper()
	u, err := url.Parse(base)
	if err != nil {
		t.Fatal(err)
	}
	return &entity.Page{URL: u, FinalURL: u, Body: []byte(html)}
}

func TestLinksResolvesRelative(t *testing.T) {
	html := `<html><body>
		<a href="/a">a</a>
		<a href="b/c">relative</a>
		<a href="https://other.test/d">absolute</a>
	</body></html>`
	e := New()
	links := e.Links(pageWith(t, "https://x.test/dir/", html))

	want := []string{
		"https://x.test/a",
		"https://x.test/dir/b/c",
		"https://other.test/d",
	}
	if len(links) != len(want) {
		t.Fatalf("got %d links %v, want %d", len(links), links, len(want))
	}
	for i := range want {
		if links[i] != want[i] {
			t.Errorf("links[%d] = %q, want %q", i, links[i], want[i])
		}
	}
}

func TestLinksSkipsPseudoProtocols(t *testing.T) {
	html := `<html><body>
		<a href="mailto:someone@x.test">mail</a>
		<a href="javascript:void(0)">js</a>
		<a href="/real">real</a>
	</body></html>`
	links := New().Links(pageWith(t, "https://x.test/", html))
	if len(links) != 1 || links[0] != "https://x.test/real" {
		t.Errorf("links = %v, want only /real", links)
	}
}

func TestLinksStripsFragmentsAndDedupes(t *testing.T) {
	html := `<html><body>
		<a href="/page#one">one</a>
		<a href="/page#two">two</a>
		<a href="/page">plain</a>
	</body></html>`
	links := New().Links(pageWith(t, "https://x.test/", html))
	if len(links) != 1 || links[0] != "https://x.test/page" {
		t.Errorf("links = %v, want single fragmentless /page", links)
	}
}

func TestLinksEmptyBody(t *testing.T) {
	if links := New().Links(&entity.Page{}); links != nil {
		t.Errorf("expected nil for empty page, got %v", links)
	}
	if links := New().Links(nil); links != nil {
		t.Errorf("expected nil for nil page, got %v", links)
	}
}

func TestLinksUsesFinalURLAsBase(t *testing.T) {
	start, _ := url.Parse("https://x.test/old")
	final, _ := url.Parse("https://x.test/moved/here")
	page := &entity.Page{URL: start, FinalURL: final, Body: []byte(`<a href="sibling">s</a>`)}
	links := New().Links(page)
	if len(links) != 1 || links[0] != "https://x.test/moved/sibling" {
		t.Errorf("links = %v, want resolution against the final URL", links)
	}
}
