package politeness

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestWaitSpacesSameHost(t *testing.T) {
	const delay = 100 * time.Millisecond
	s := NewScheduler(delay)
	ctx := context.Background()

	start := time.Now()
	if err := s.Wait(ctx, "a.test"); err != nil {
		t.Fatal(err)
	}
	if err := s.Wait(ctx, "a.test"); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < delay {
		t.Errorf("second wait for the same host returned after %v, want >= %v", elapsed, delay)
	}
}

func TestWaitDistinctHostsDoNotBlock(t *testing.T) {
	s := NewScheduler(time.Second)
	ctx := context.Background()

	start := time.Now()
	for _, host := range []string{"a.test", "b.test", "c.test"} {
		if err := s.Wait(ctx, host); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Errorf("distinct hosts waited %v, expected no delay", elapsed)
	}
}

func TestWaitHostCaseInsensitive(t *testing.T) {
	const delay = 100 * time.Millisecond
	s := NewScheduler(delay)
	ctx := context.Background()

	start := time.Now()
	if err := s.Wait(ctx, "A.Test"); err != nil {
		t.Fatal(err)
	}
	if err := s.Wait(ctx, "a.test"); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < delay {
		t.Errorf("mixed-case host bypassed the delay: %v < %v", elapsed, delay)
	}
}

func TestWaitConcurrentCallersSerialized(t *testing.T) {
	const delay = 60 * time.Millisecond
	s := NewScheduler(delay)
	ctx := context.Background()

	var mu sync.Mutex
	var grants []time.Time
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Wait(ctx, "busy.test"); err != nil {
				t.Errorf("Wait: %v", err)
				return
			}
			mu.Lock()
			grants = append(grants, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(grants) != 3 {
		t.Fatalf("got %d grants, want 3", len(grants))
	}
	earliest, latest := grants[0], grants[0]
	for _, g := range grants[1:] {
		if g.Before(earliest) {
			earliest = g
		}
		if g.After(latest) {
			latest = g
		}
	}
	// Three grants need at least two full delay windows between first and last.
	if span := latest.Sub(earliest); span < 2*delay-10*time.Millisecond {
		t.Errorf("grants spanned %v, want >= %v", span, 2*delay)
	}
}

func TestWaitCancellation(t *testing.T) {
	s := NewScheduler(time.Minute)
	if err := s.Wait(context.Background(), "slow.test"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := s.Wait(ctx, "slow.test")
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if time.Since(start) > time.Second {
		t.Error("cancelled wait did not return promptly")
	}
}

func TestLastAccessRecorded(t *testing.T) {
	s := NewScheduler(10 * time.Millisecond)
	if _, ok := s.LastAccess("a.test"); ok {
		t.Fatal("LastAccess before any wait should report false")
	}
	if err := s.Wait(context.Background(), "a.test"); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.LastAccess("A.TEST"); !ok {
		t.Error("LastAccess after wait should report true, case-insensitively")
	}
}
