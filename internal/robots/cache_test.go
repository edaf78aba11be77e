package robots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func robotsServer(t *testing.T, hits *atomic.Int32, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		hits.Add(1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func serverURL(t *testing.T, srv *httptest.Server, path string) *url.URL {
	t.Helper()
	u, err := url.Parse(srv.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestCacheEnforcesDisallow(t *testing.T) {
	var hits atomic.Int32
	srv := robotsServer(t, &hits, http.StatusOK, "User-agent: *\nDisallow: /private\n")
	cache := NewCache(Options{UserAgent: "testbot/1.0"})

	ctx := context.Background()
	if cache.Allowed(ctx, serverURL(t, srv, "/private/1")) {
		t.Error("/private/1 must be denied")
	}
	if !cache.Allowed(ctx, serverURL(t, srv, "/public/1")) {
		t.Error("/public/1 must be allowed")
	}
	if hits.Load() != 1 {
		t.Errorf("robots.txt fetched %d times, want 1", hits.Load())
	}
}

func TestCacheFailOpenIsCached(t *testing.T) {
	var hits atomic.Int32
	srv := robotsServer(t, &hits, http.StatusInternalServerError, "")
	cache := NewCache(Options{})

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if !cache.Allowed(ctx, serverURL(t, srv, "/any")) {
			t.Fatal("fail-open policy must allow when robots.txt is unavailable")
		}
	}
	if hits.Load() != 1 {
		t.Errorf("failure must be cached, got %d fetches", hits.Load())
	}
}

func TestCacheFailClosed(t *testing.T) {
	var hits atomic.Int32
	srv := robotsServer(t, &hits, http.StatusNotFound, "")
	cache := NewCache(Options{FailClosed: true})

	if cache.Allowed(context.Background(), serverURL(t, srv, "/any")) {
		t.Error("fail-closed policy must deny when robots.txt is unavailable")
	}
}

func TestCacheUnreachableHostFailsOpen(t *testing.T) {
	cache := NewCache(Options{Timeout: 200 * time.Millisecond})
	u, _ := url.Parse("http://127.0.0.1:1/page")
	if !cache.Allowed(context.Background(), u) {
		t.Error("connection refused must fail open by default")
	}
}

func TestCacheStandardEvaluator(t *testing.T) {
	var hits atomic.Int32
	body := "User-agent: testbot\nDisallow: /private\n\nUser-agent: *\nDisallow: /everyone\n"
	srv := robotsServer(t, &hits, http.StatusOK, body)
	cache := NewCache(Options{UserAgent: "testbot", Standard: true})

	ctx := context.Background()
	if cache.Allowed(ctx, serverURL(t, srv, "/private/x")) {
		t.Error("standard mode must honor the crawler's own agent group")
	}
	if !cache.Allowed(ctx, serverURL(t, srv, "/open")) {
		t.Error("/open must be allowed")
	}
}

func TestCacheSingleFetchPerHost(t *testing.T) {
	var hits atomic.Int32
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		time.Sleep(50 * time.Millisecond)
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /private\n"))
	}))
	defer slow.Close()

	cache := NewCache(Options{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cache.Allowed(ctx, serverURL(t, slow, "/public"))
		}()
	}
	wg.Wait()

	if hits.Load() != 1 {
		t.Errorf("concurrent first access fetched robots.txt %d times, want 1", hits.Load())
	}
	if cache.CachedHosts() != 1 {
		t.Errorf("CachedHosts = %d, want 1", cache.CachedHosts())
	}
}
