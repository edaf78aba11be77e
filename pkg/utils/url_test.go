package utils

import (
	"net/url"
	"testing"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercases host", in: "https://Example.COM/Page", want: "https://example.com/Page"},
		{name: "lowercases scheme", in: "HTTPS://example.com/", want: "https://example.com/"},
		{name: "drops fragment", in: "https://example.com/a#section", want: "https://example.com/a"},
		{name: "adds root path", in: "https://example.com", want: "https://example.com/"},
		{name: "keeps query", in: "https://example.com/a?x=1", want: "https://example.com/a?x=1"},
		{name: "keeps path case", in: "https://example.com/A/B", want: "https://example.com/A/B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeURL(tt.in)
			if err != nil {
				t.Fatalf("NormalizeURL(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeURLEquivalence(t *testing.T) {
	a, err := NormalizeURL("https://Host.Test/page#top")
	if err != nil {
		t.Fatal(err)
	}
	b, err := NormalizeURL("https://host.test/page")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("expected equivalent URLs to normalize identically: %q vs %q", a, b)
	}
}

func TestHostKey(t *testing.T) {
	u, err := url.Parse("https://WWW.Example.Com:8080/path")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := HostKey(u), "www.example.com:8080"; got != want {
		t.Errorf("HostKey = %q, want %q", got, want)
	}
}

func TestHashURLStable(t *testing.T) {
	a := HashURL("https://example.com/")
	b := HashURL("https://example.com/")
	if a != b {
		t.Error("hash is not deterministic")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
	if HashURL("https://example.com/other") == a {
		t.Error("distinct URLs must not collide on trivial input")
	}
}
