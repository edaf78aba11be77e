package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/user/webcrawler/internal/entity"
	"github.com/user/webcrawler/internal/extractor"
	"github.com/user/webcrawler/internal/fetcher"
	"github.com/user/webcrawler/internal/politeness"
	"github.com/user/webcrawler/internal/repository"
	"github.com/user/webcrawler/internal/robots"
	"github.com/user/webcrawler/pkg/config"
	"github.com/user/webcrawler/pkg/utils"
	"golang.org/x/sync/errgroup"
)

// idlePollInterval is how often an idle worker re-checks the frontier while
// other workers are still processing entries that may yield new links.
const idlePollInterval = 25 * time.Millisecond

// Crawler drives one breadth-first crawl run.
type Crawler interface {
	// Run crawls from the configured start URL until the frontier drains
	// or the context is canceled. Only seed validation and repository
	// failures are fatal; per-page failures are reported to the observer
	// and skipped.
	Run(ctx context.Context) error
	// Stats returns a snapshot of run counters.
	Stats(ctx context.Context) (Stats, error)
}

// Stats is a point-in-time summary of a crawl run.
type Stats struct {
	PagesCrawled  int64 `json:"pages_crawled"`
	RobotsBlocked int64 `json:"robots_blocked"`
	FetchErrors   int64 `json:"fetch_errors"`
	Enqueued      int64 `json:"enqueued"`
	FrontierSize  int64 `json:"frontier_size"`
	VisitedSize   int64 `json:"visited_size"`
}

type crawlerUseCase struct {
	cfg       *config.Config
	frontier  repository.FrontierRepository
	visited   repository.VisitedRepository
	robots    *robots.Cache
	scheduler *politeness.Scheduler
	fetcher   fetcher.Fetcher
	extractor extractor.LinkExtractor
	observer  Observer

	filter *URLFilter

	// mu guards the frontier-pop-plus-active-count critical section that
	// termination detection depends on.
	mu     sync.Mutex
	active int

	crawled     atomic.Int64
	blocked     atomic.Int64
	fetchErrors atomic.Int64
	enqueued    atomic.Int64
}

// NewCrawlerUseCase wires the crawl engine. A nil observer disables event
// reporting.
func NewCrawlerUseCase(
	cfg *config.Config,
	frontier repository.FrontierRepository,
	visited repository.VisitedRepository,
	robotsCache *robots.Cache,
	scheduler *politeness.Scheduler,
	fetch fetcher.Fetcher,
	links extractor.LinkExtractor,
	observer Observer,
) Crawler {
	if observer == nil {
		observer = NopObserver{}
	}
	return &crawlerUseCase{
		cfg:       cfg,
		frontier:  frontier,
		visited:   visited,
		robots:    robotsCache,
		scheduler: scheduler,
		fetcher:   fetch,
		extractor: links,
		observer:  observer,
	}
}

func (uc *crawlerUseCase) Run(ctx context.Context) error {
	seed, err := parseSeed(uc.cfg.StartURL)
	if err != nil {
		return err
	}
	uc.filter = NewURLFilter(uc.cfg.MaxDepth, uc.cfg.SameDomainOnly, seed)

	normalized, err := utils.NormalizeURL(uc.cfg.StartURL)
	if err != nil {
		return fmt.Errorf("normalize start URL: %w", err)
	}
	fresh, err := uc.visited.MarkIfNew(ctx, normalized)
	if err != nil {
		return fmt.Errorf("seed visited check: %w", err)
	}
	if fresh {
		if err := uc.frontier.Push(ctx, entity.FrontierEntry{URL: normalized, Depth: 0}); err != nil {
			return fmt.Errorf("seed enqueue: %w", err)
		}
		uc.enqueued.Add(1)
	}

	slog.Info("starting crawl",
		"start_url", normalized,
		"max_depth", uc.cfg.MaxDepth,
		"workers", uc.cfg.CrawlWorkers,
		"respect_robots", uc.cfg.RespectRobotsTxt)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < uc.cfg.CrawlWorkers; i++ {
		g.Go(func() error {
			return uc.worker(ctx)
		})
	}
	return g.Wait()
}

func parseSeed(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid start URL %q: %w", raw, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, fmt.Errorf("invalid start URL %q: http or https scheme required", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid start URL %q: host required", raw)
	}
	return u, nil
}

// worker pops and processes frontier entries until the crawl is complete.
// Completion means the frontier is empty and no worker is mid-entry, since
// only an in-flight entry can produce new frontier entries.
func (uc *crawlerUseCase) worker(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		entry, ok, err := uc.next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			done, err := uc.idle(ctx)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(idlePollInterval):
			}
			continue
		}

		uc.process(ctx, entry)

		uc.mu.Lock()
		uc.active--
		uc.mu.Unlock()
	}
}

// next pops one entry, counting the worker as active before the lock is
// released so termination checks cannot miss in-flight work.
func (uc *crawlerUseCase) next(ctx context.Context) (entity.FrontierEntry, bool, error) {
	uc.mu.Lock()
	entry, err := uc.frontier.Pop(ctx)
	if err == nil {
		uc.active++
	}
	uc.mu.Unlock()

	if errors.Is(err, repository.ErrFrontierEmpty) {
		return entity.FrontierEntry{}, false, nil
	}
	if err != nil {
		return entity.FrontierEntry{}, false, fmt.Errorf("frontier pop: %w", err)
	}
	return entry, true, nil
}

// idle reports whether the crawl is finished: no active workers and a
// still-empty frontier. Pushes only happen while a worker is active, so
// once active drops to zero the frontier size is final.
func (uc *crawlerUseCase) idle(ctx context.Context) (bool, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.active > 0 {
		return false, nil
	}
	size, err := uc.frontier.Size(ctx)
	if err != nil {
		return false, fmt.Errorf("frontier size: %w", err)
	}
	return size == 0, nil
}

// process handles one frontier entry end to end. Failures are reported and
// swallowed; a bad page never stops the run.
func (uc *crawlerUseCase) process(ctx context.Context, entry entity.FrontierEntry) {
	if entry.Depth > uc.cfg.MaxDepth {
		return
	}
	u, err := url.Parse(entry.URL)
	if err != nil {
		uc.fetchErrors.Add(1)
		uc.observer.FetchError(entry.URL, "invalid URL: "+err.Error())
		return
	}

	if err := uc.scheduler.Wait(ctx, utils.HostKey(u)); err != nil {
		return
	}

	if uc.cfg.RespectRobotsTxt && !uc.robots.Allowed(ctx, u) {
		uc.blocked.Add(1)
		uc.observer.Blocked(entry.URL)
		return
	}

	page, err := uc.fetcher.Fetch(ctx, entry.URL)
	if err != nil {
		uc.fetchErrors.Add(1)
		uc.observer.FetchError(entry.URL, err.Error())
		return
	}

	uc.crawled.Add(1)
	uc.observer.Crawled(entry.URL, entry.Depth)

	// Children would exceed the depth bound, so parsing is wasted work.
	if entry.Depth >= uc.cfg.MaxDepth {
		return
	}
	for _, link := range uc.extractor.Links(page) {
		uc.offer(ctx, link, entry.Depth+1)
	}
}

// offer normalizes, filters, dedups, and enqueues one discovered link.
func (uc *crawlerUseCase) offer(ctx context.Context, link string, depth int) {
	normalized, err := utils.NormalizeURL(link)
	if err != nil {
		slog.Debug("skipping malformed link", "link", link, "error", err)
		return
	}
	if !uc.filter.Accept(normalized, depth) {
		return
	}
	if uc.cfg.MaxPages > 0 && uc.enqueued.Load() >= int64(uc.cfg.MaxPages) {
		return
	}

	fresh, err := uc.visited.MarkIfNew(ctx, normalized)
	if err != nil {
		slog.Error("visited check failed", "url", normalized, "error", err)
		return
	}
	if !fresh {
		return
	}

	if err := uc.frontier.Push(ctx, entity.FrontierEntry{URL: normalized, Depth: depth}); err != nil {
		slog.Error("enqueue failed", "url", normalized, "error", err)
		return
	}
	uc.enqueued.Add(1)
}

func (uc *crawlerUseCase) Stats(ctx context.Context) (Stats, error) {
	frontierSize, err := uc.frontier.Size(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("frontier size: %w", err)
	}
	visitedSize, err := uc.visited.Size(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("visited size: %w", err)
	}
	return Stats{
		PagesCrawled:  uc.crawled.Load(),
		RobotsBlocked: uc.blocked.Load(),
		FetchErrors:   uc.fetchErrors.Load(),
		Enqueued:      uc.enqueued.Load(),
		FrontierSize:  frontierSize,
		VisitedSize:   visitedSize,
	}, nil
}
