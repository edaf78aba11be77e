package fetcher

import (
	"context"
	"net/url"
	"time"

	"github.com/user/webcrawler/internal/entity"
)

// InstrumentedFetcher times each fetch, retries included, and reports the
// outcome through a callback. Keeps measurement concerns out of the retry
// loop itself.
type InstrumentedFetcher struct {
	Next     Fetcher
	OnResult func(host string, duration time.Duration, err error)
}

func (f *InstrumentedFetcher) Fetch(ctx context.Context, rawURL string) (*entity.Page, error) {
	start := time.Now()
	page, err := f.Next.Fetch(ctx, rawURL)
	if f.OnResult != nil {
		host := ""
		if u, perr := url.Parse(rawURL); perr == nil {
			host = u.Host
		}
		f.OnResult(host, time.Since(start), err)
	}
	return page, err
}
