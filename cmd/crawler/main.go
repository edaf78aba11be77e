package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/user/webcrawler/internal/adapter/memory"
	redisadapter "github.com/user/webcrawler/internal/adapter/redis"
	"github.com/user/webcrawler/internal/delivery/http/handler"
	"github.com/user/webcrawler/internal/delivery/http/router"
	"github.com/user/webcrawler/internal/extractor"
	"github.com/user/webcrawler/internal/fetcher"
	"github.com/user/webcrawler/internal/politeness"
	"github.com/user/webcrawler/internal/repository"
	"github.com/user/webcrawler/internal/robots"
	"github.com/user/webcrawler/internal/usecase"
	"github.com/user/webcrawler/pkg/config"
	"github.com/user/webcrawler/pkg/logger"
	"github.com/user/webcrawler/pkg/metrics"
)

var rootCmd = &cobra.Command{
	Use:          "crawler [start-url]",
	Short:        "Polite breadth-first web crawler",
	Long:         "Crawls from a start URL breadth-first, honoring robots.txt and a per-host delay.",
	Args:         cobra.MaximumNArgs(1),
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	f := rootCmd.Flags()
	f.String("start-url", "", "URL to start crawling from (overrides START_URL)")
	f.Int("max-depth", 0, "maximum link depth from the start URL")
	f.Int("max-pages", 0, "stop enqueueing after this many URLs, 0 for unlimited")
	f.Int("workers", 0, "number of concurrent crawl workers")
	f.Duration("domain-delay", 0, "minimum delay between fetches to the same host")
	f.Bool("respect-robots", true, "honor robots.txt rules")
	f.Bool("same-domain-only", true, "restrict the crawl to the start URL's host")
	f.String("server-port", "", "expose the control API on this port, empty to disable")
	f.String("redis-addr", "", "back the frontier and visited set with redis")
	f.String("log-level", "", "log level: debug, info, warn, error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// applyFlagOverrides maps explicitly-set flags onto the environment keys
// the config loader reads, so flags win over both .env and the process
// environment.
func applyFlagOverrides(cmd *cobra.Command, args []string) {
	if len(args) == 1 {
		os.Setenv("START_URL", args[0])
	}
	set := func(flag, key, value string) {
		if cmd.Flags().Changed(flag) {
			os.Setenv(key, value)
		}
	}
	flags := cmd.Flags()
	if v, err := flags.GetString("start-url"); err == nil {
		set("start-url", "START_URL", v)
	}
	if v, err := flags.GetInt("max-depth"); err == nil {
		set("max-depth", "MAX_DEPTH", strconv.Itoa(v))
	}
	if v, err := flags.GetInt("max-pages"); err == nil {
		set("max-pages", "MAX_PAGES", strconv.Itoa(v))
	}
	if v, err := flags.GetInt("workers"); err == nil {
		set("workers", "CRAWL_WORKERS", strconv.Itoa(v))
	}
	if v, err := flags.GetDuration("domain-delay"); err == nil {
		set("domain-delay", "DOMAIN_DELAY", v.String())
	}
	if v, err := flags.GetBool("respect-robots"); err == nil {
		set("respect-robots", "RESPECT_ROBOTS_TXT", strconv.FormatBool(v))
	}
	if v, err := flags.GetBool("same-domain-only"); err == nil {
		set("same-domain-only", "SAME_DOMAIN_ONLY", strconv.FormatBool(v))
	}
	if v, err := flags.GetString("server-port"); err == nil {
		set("server-port", "SERVER_PORT", v)
	}
	if v, err := flags.GetString("redis-addr"); err == nil {
		set("redis-addr", "REDIS_ADDR", v)
	}
	if v, err := flags.GetString("log-level"); err == nil {
		set("log-level", "LOG_LEVEL", v)
	}
}

func run(cmd *cobra.Command, args []string) error {
	applyFlagOverrides(cmd, args)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.StartURL == "" {
		return errors.New("a start URL is required, via argument, --start-url, or START_URL")
	}

	logger.Init(os.Stdout, logger.ParseLevel(cfg.LogLevel))
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	frontier, visited, err := buildRepositories(ctx, cfg)
	if err != nil {
		return err
	}

	robotsCache := robots.NewCache(robots.Options{
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.RobotsTimeout,
		FailClosed: cfg.RobotsOnFailure == config.RobotsFailDeny,
		Standard:   cfg.RobotsEvaluator == config.RobotsEvalStandard,
	})

	var backoff fetcher.Policy = fetcher.FixedDelay(cfg.RetryDelay)
	if cfg.RetryBackoff == config.BackoffExponential {
		backoff = fetcher.ExponentialDelay{Initial: cfg.RetryDelay, Jitter: 0.2}
	}
	fetch := &fetcher.InstrumentedFetcher{
		Next: fetcher.New(fetcher.Options{
			UserAgent:    cfg.UserAgent,
			Timeout:      cfg.RequestTimeout,
			MaxAttempts:  cfg.MaxRetries,
			Backoff:      backoff,
			MaxBodyBytes: cfg.MaxBodyBytes,
		}),
		OnResult: func(host string, duration time.Duration, _ error) {
			metrics.FetchDuration.WithLabelValues(host).Observe(duration.Seconds())
		},
	}

	engine := usecase.NewCrawlerUseCase(
		cfg,
		frontier,
		visited,
		robotsCache,
		politeness.NewScheduler(cfg.DomainDelay),
		fetch,
		extractor.New(),
		usecase.MultiObserver{usecase.LogObserver{}, usecase.MetricsObserver{}},
	)

	go pollFrontierSize(ctx, frontier)

	if cfg.ServerPort != "" {
		shutdown := startControlAPI(cfg.ServerPort, engine)
		defer shutdown()
	}

	if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	stats, err := engine.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("final stats: %w", err)
	}
	slog.Info("crawl finished",
		"pages_crawled", stats.PagesCrawled,
		"robots_blocked", stats.RobotsBlocked,
		"fetch_errors", stats.FetchErrors,
		"enqueued", stats.Enqueued)
	return nil
}

// buildRepositories picks redis-backed frontier and visited implementations
// when an address is configured, in-memory ones otherwise.
func buildRepositories(ctx context.Context, cfg *config.Config) (repository.FrontierRepository, repository.VisitedRepository, error) {
	if cfg.RedisAddr == "" {
		return memory.NewFrontierRepo(), memory.NewVisitedRepo(), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	slog.Info("using redis-backed frontier and visited set", "addr", cfg.RedisAddr)
	return redisadapter.NewFrontierRepo(rdb), redisadapter.NewVisitedRepo(rdb, cfg.DedupTTL), nil
}

func pollFrontierSize(ctx context.Context, frontier repository.FrontierRepository) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if size, err := frontier.Size(ctx); err == nil {
				metrics.FrontierSize.Set(float64(size))
			}
		}
	}
}

func startControlAPI(port string, engine usecase.Crawler) func() {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router.New(handler.NewHandler(engine)),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		slog.Info("control API listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("control API server failed", "error", err)
		}
	}()
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}
