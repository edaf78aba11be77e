package robots

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"github.com/user/webcrawler/pkg/utils"
	"golang.org/x/sync/singleflight"
)

// robots files larger than this are truncated; real files are tiny.
const maxRobotsBytes = 512 * 1024

// Options configures the robots policy cache.
type Options struct {
	// UserAgent is sent on robots.txt requests and, in standard mode,
	// selects the agent group to evaluate.
	UserAgent string
	// Timeout bounds the robots.txt request, independent of the main
	// request timeout.
	Timeout time.Duration
	// FailClosed makes an unreadable robots file deny the whole host
	// instead of the default fail-open behavior.
	FailClosed bool
	// Standard switches rule evaluation from wildcard path-prefix rules
	// to full robots.txt semantics.
	Standard bool
}

// Cache is a per-host cache of robots verdicts. Rules are fetched on first
// encounter of a host, never re-fetched within a run, and the first fetch
// for a host is collapsed to a single request under concurrency.
type Cache struct {
	client *http.Client
	opts   Options

	mu    sync.RWMutex
	rules map[string]Rules
	group singleflight.Group
}

// NewCache builds a robots cache with its own short-timeout HTTP client.
func NewCache(opts Options) *Cache {
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Second
	}
	return &Cache{
		client: &http.Client{Timeout: opts.Timeout},
		opts:   opts,
		rules:  make(map[string]Rules),
	}
}

// Allowed reports whether the URL may be fetched under the host's robots
// rules. A URL whose host cannot be determined is allowed; malformed input
// is not this gate's concern.
func (c *Cache) Allowed(ctx context.Context, u *url.URL) bool {
	if u == nil || u.Host == "" {
		return true
	}
	host := utils.HostKey(u)

	c.mu.RLock()
	rules, ok := c.rules[host]
	c.mu.RUnlock()

	if !ok {
		v, _, _ := c.group.Do(host, func() (any, error) {
			fetched := c.fetch(ctx, u.Scheme, host)
			c.mu.Lock()
			c.rules[host] = fetched
			c.mu.Unlock()
			return fetched, nil
		})
		rules = v.(Rules)
	}
	return rules.Allowed(u)
}

// fetch retrieves and parses one host's robots file. Any failure yields
// the configured failure verdict, which the caller caches so the failure
// is not retried per-URL.
func (c *Cache) fetch(ctx context.Context, scheme, host string) Rules {
	robotsURL := scheme + "://" + host + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return c.failureVerdict(host, err)
	}
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return c.failureVerdict(host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Debug("robots.txt unavailable", "host", host, "status", resp.StatusCode)
		return c.failureVerdict(host, nil)
	}

	body := io.LimitReader(resp.Body, maxRobotsBytes)
	if c.opts.Standard {
		raw, err := io.ReadAll(body)
		if err != nil {
			return c.failureVerdict(host, err)
		}
		data, err := robotstxt.FromBytes(raw)
		if err != nil {
			return c.failureVerdict(host, err)
		}
		return NewStandardRules(data, c.opts.UserAgent)
	}
	return ParsePrefixRules(body)
}

func (c *Cache) failureVerdict(host string, err error) Rules {
	if err != nil {
		slog.Debug("robots.txt fetch failed", "host", host, "error", err)
	}
	if c.opts.FailClosed {
		return DenyAll
	}
	return AllowAll
}

// CachedHosts returns the number of hosts with cached rules.
func (c *Cache) CachedHosts() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rules)
}
