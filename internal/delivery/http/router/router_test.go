package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/user/webcrawler/internal/delivery/http/handler"
	"github.com/user/webcrawler/internal/delivery/http/response"
	"github.com/user/webcrawler/internal/usecase"
	"github.com/user/webcrawler/pkg/metrics"
)

var errInjected = errors.New("injected failure")

type stubCrawler struct {
	stats usecase.Stats
	err   error
}

func (s *stubCrawler) Run(context.Context) error { return nil }

func (s *stubCrawler) Stats(context.Context) (usecase.Stats, error) {
	return s.stats, s.err
}

func TestMain(m *testing.M) {
	metrics.Init()
	m.Run()
}

func TestHealthEndpoint(t *testing.T) {
	srv := httptest.NewServer(New(handler.NewHandler(&stubCrawler{})))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body response.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
}

func TestStatsEndpoint(t *testing.T) {
	stub := &stubCrawler{stats: usecase.Stats{PagesCrawled: 7, FrontierSize: 2}}
	srv := httptest.NewServer(New(handler.NewHandler(stub)))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/stats")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	var body response.StatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.PagesCrawled != 7 || body.FrontierSize != 2 {
		t.Errorf("body = %+v, want crawled 7 frontier 2", body)
	}
}

func TestStatsEndpointRepositoryFailure(t *testing.T) {
	stub := &stubCrawler{err: errInjected}
	srv := httptest.NewServer(New(handler.NewHandler(stub)))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/stats")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := httptest.NewServer(New(handler.NewHandler(&stubCrawler{})))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
