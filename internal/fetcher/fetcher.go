package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/user/webcrawler/internal/entity"
)

// Fetcher retrieves one page. Implementations classify failures and own
// all retry logic; callers see either a page or a definitive error.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*entity.Page, error)
}

// StatusError reports a non-success HTTP status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", e.Code)
}

// Transient reports whether the status is worth retrying: rate limiting
// or a server-side error.
func (e *StatusError) Transient() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Options controls HTTP fetching behavior.
type Options struct {
	UserAgent    string
	Timeout      time.Duration
	MaxAttempts  int
	Backoff      Policy
	MaxBodyBytes int64
}

// HTTPFetcher implements Fetcher via net/http with bounded retries.
type HTTPFetcher struct {
	client *http.Client
	opts   Options
}

// New constructs an HTTP fetcher using the provided options.
func New(opts Options) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.Backoff == nil {
		opts.Backoff = FixedDelay(2 * time.Second)
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 6 * 1024 * 1024
	}

	transport := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: opts.Timeout, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   opts.Timeout,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &HTTPFetcher{
		client: &http.Client{Timeout: opts.Timeout, Transport: transport},
		opts:   opts,
	}
}

// Fetch retrieves a URL, retrying transient failures (429, 5xx, network
// errors) up to the attempt bound with the configured backoff. Any other
// HTTP status fails immediately. Cancellation during an inter-attempt wait
// aborts without further attempts.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*entity.Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	var lastErr error
	for attempt := 1; attempt <= f.opts.MaxAttempts; attempt++ {
		page, err := f.attempt(ctx, u)
		if err == nil {
			return page, nil
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Transient() {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err

		if attempt == f.opts.MaxAttempts {
			break
		}
		slog.Warn("fetch attempt failed, retrying",
			"url", rawURL, "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.opts.Backoff.Delay(attempt)):
		}
	}
	return nil, fmt.Errorf("fetch %s: giving up after %d attempts: %w",
		rawURL, f.opts.MaxAttempts, lastErr)
}

func (f *HTTPFetcher) attempt(ctx context.Context, u *url.URL) (*entity.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http fetch failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		_ = resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := f.readBody(resp)
	if err != nil {
		return nil, err
	}

	finalURL := u
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL
	}

	return &entity.Page{
		URL:         u,
		FinalURL:    finalURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		FetchedAt:   time.Now(),
	}, nil
}

func (f *HTTPFetcher) readBody(resp *http.Response) ([]byte, error) {
	reader := io.Reader(resp.Body)
	closers := []io.Closer{resp.Body}

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		reader = gz
		closers = append(closers, gz)
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fl := flate.NewReader(resp.Body)
		reader = fl
		closers = append(closers, fl)
	}

	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}()

	limited := io.LimitReader(reader, f.opts.MaxBodyBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.opts.MaxBodyBytes {
		return nil, fmt.Errorf("response body exceeds limit of %d bytes", f.opts.MaxBodyBytes)
	}
	return body, nil
}
