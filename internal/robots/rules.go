package robots

import (
	"bufio"
	"io"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/temoto/robotstxt"
)

// Rules answers whether a URL on one host may be fetched. Implementations
// are immutable once built and safe for concurrent use.
type Rules interface {
	Allowed(u *url.URL) bool
}

type fixedRules bool

func (r fixedRules) Allowed(*url.URL) bool { return bool(r) }

// AllowAll permits every URL; it is the verdict for a missing or
// unreadable robots file under the fail-open policy.
var AllowAll Rules = fixedRules(true)

// DenyAll blocks every URL; it is the verdict for an unreadable robots
// file under the fail-closed policy.
var DenyAll Rules = fixedRules(false)

// PrefixRules evaluates the wildcard-capable path-prefix rules collected
// from the `User-agent: *` sections of a robots file.
type PrefixRules struct {
	patterns  []*regexp.Regexp
	FetchedAt time.Time
}

// Allowed reports whether the URL's path matches no disallow pattern.
func (r *PrefixRules) Allowed(u *url.URL) bool {
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	for _, p := range r.patterns {
		if p.MatchString(path) {
			return false
		}
	}
	return true
}

// Len returns the number of collected disallow patterns.
func (r *PrefixRules) Len() int { return len(r.patterns) }

// ParsePrefixRules reads a robots file and collects Disallow directives.
// Only sections whose User-agent value is exactly "*" are honored; blank
// lines and # comments are skipped. A `*` inside a path matches any run of
// characters, and rules match as path prefixes.
func ParsePrefixRules(r io.Reader) *PrefixRules {
	rules := &PrefixRules{FetchedAt: time.Now()}

	applies := false
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if value, ok := directive(line, "user-agent"); ok {
			applies = value == "*"
			continue
		}
		if !applies {
			continue
		}
		if path, ok := directive(line, "disallow"); ok && path != "" {
			if p := compilePathPattern(path); p != nil {
				rules.patterns = append(rules.patterns, p)
			}
		}
	}
	return rules
}

// directive matches a "Key: value" line case-insensitively on the key.
func directive(line, key string) (string, bool) {
	if len(line) <= len(key) || !strings.EqualFold(line[:len(key)], key) {
		return "", false
	}
	rest := line[len(key):]
	if !strings.HasPrefix(rest, ":") {
		return "", false
	}
	return strings.TrimSpace(rest[1:]), true
}

// compilePathPattern turns a disallow path into an anchored prefix regexp
// where `*` matches any character run.
func compilePathPattern(path string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(path)
	quoted = strings.ReplaceAll(quoted, `\*`, ".*")
	p, err := regexp.Compile("^" + quoted)
	if err != nil {
		return nil
	}
	return p
}

// StandardRules evaluates a robots file with full robots.txt semantics,
// honoring the crawler's own agent token with fallback to "*".
type StandardRules struct {
	data  *robotstxt.RobotsData
	agent string
}

// NewStandardRules wraps parsed robots data for the given agent token.
func NewStandardRules(data *robotstxt.RobotsData, agent string) *StandardRules {
	return &StandardRules{data: data, agent: agent}
}

// Allowed reports whether the matched agent group permits the URL's path.
func (r *StandardRules) Allowed(u *url.URL) bool {
	group := r.data.FindGroup(r.agent)
	if group == nil {
		group = r.data.FindGroup("*")
		if group == nil {
			return true
		}
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return group.Test(path)
}
