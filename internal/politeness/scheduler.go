package politeness

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Scheduler enforces the minimum delay between two fetches to the same
// host. Each host gets its own rate limiter (one token per delay window),
// so the read-compare-sleep-record sequence is atomic per host even with
// concurrent workers: two callers for the same host are granted turns at
// least one delay apart.
type Scheduler struct {
	delay time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	last     map[string]time.Time
}

// NewScheduler creates a scheduler with the given per-host delay.
// A non-positive delay disables waiting.
func NewScheduler(delay time.Duration) *Scheduler {
	return &Scheduler{
		delay:    delay,
		limiters: make(map[string]*rate.Limiter),
		last:     make(map[string]time.Time),
	}
}

// Wait blocks until the host's turn comes up, then records the access
// time. Context cancellation aborts the wait.
func (s *Scheduler) Wait(ctx context.Context, host string) error {
	host = strings.ToLower(host)
	if s.delay <= 0 {
		s.record(host)
		return ctx.Err()
	}

	s.mu.Lock()
	limiter, ok := s.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(s.delay), 1)
		s.limiters[host] = limiter
	}
	s.mu.Unlock()

	if err := limiter.Wait(ctx); err != nil {
		return err
	}
	s.record(host)
	return nil
}

func (s *Scheduler) record(host string) {
	s.mu.Lock()
	s.last[host] = time.Now()
	s.mu.Unlock()
}

// LastAccess returns the most recent recorded fetch start for a host.
func (s *Scheduler) LastAccess(host string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.last[strings.ToLower(host)]
	return t, ok
}
