package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestSearXNG(t *testing.T, handler http.HandlerFunc) *SearXNG {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewSearXNG(server.URL, "duckduckgo,bing", "eidolon-test/1.0", 5*time.Second, 1<<20)
}

func TestSearXNG_ParsesResults(t *testing.T) {
	provider := newTestSearXNG(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("format"); got != "json" {
			t.Errorf("format = %q, want json", got)
		}
		if got := r.URL.Query().Get("safesearch"); got != "0" {
			t.Errorf("safesearch = %q, want 0", got)
		}
		w.Write([]byte(`{"results":[
			{"title":"Trailhead Gear - Official Site","url":"https://trailheadgear.com/","content":"Outdoor gear","engine":"duckduckgo","score":2.5},
			{"title":"","url":"https://example.com/","content":"","engine":""}
		]}`))
	})

	results := provider.Search(context.Background(), "outdoor apparel", 10)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Title != "Trailhead Gear - Official Site" {
		t.Errorf("unexpected title %q", results[0].Title)
	}
	if !results[0].HasScore || results[0].Relevance() != 2.5 {
		t.Errorf("expected relevance 2.5, got %v", results[0].Relevance())
	}
	// Missing fields get defaults.
	if results[1].Title != "Untitled" || results[1].Source != "searxng" {
		t.Errorf("missing-field defaults not applied: %+v", results[1])
	}
	if results[1].HasScore || results[1].Relevance() != 1.0 {
		t.Errorf("absent score should default relevance to 1.0, got %v", results[1].Relevance())
	}
}

func TestSearXNG_RetriesWithoutEngineRestriction(t *testing.T) {
	var engineParams []string
	provider := newTestSearXNG(t, func(w http.ResponseWriter, r *http.Request) {
		engines := r.URL.Query().Get("engines")
		engineParams = append(engineParams, engines)
		if engines != "" {
			w.Write([]byte(`{"results":[]}`))
			return
		}
		w.Write([]byte(`{"results":[{"title":"t","url":"https://x.com/","content":"c","engine":"bing"}]}`))
	})

	results := provider.Search(context.Background(), "q", 5)
	if len(results) != 1 {
		t.Fatalf("expected 1 result from unrestricted retry, got %d", len(results))
	}
	if len(engineParams) != 2 || engineParams[0] == "" || engineParams[1] != "" {
		t.Errorf("expected restricted then unrestricted attempt, got %v", engineParams)
	}
}

func TestSearXNG_FailsClosed(t *testing.T) {
	provider := newTestSearXNG(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	if results := provider.Search(context.Background(), "q", 5); results != nil {
		t.Fatalf("expected nil on upstream failure, got %d results", len(results))
	}

	// Unconfigured provider is disabled and returns nothing.
	off := NewSearXNG("", "", "ua", time.Second, 1<<20)
	if off.Enabled() {
		t.Error("provider with empty base URL must be disabled")
	}
	if results := off.Search(context.Background(), "q", 5); results != nil {
		t.Error("disabled provider must return nil")
	}
}

func TestSearXNG_RespectsLimit(t *testing.T) {
	provider := newTestSearXNG(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[
			{"title":"a","url":"https://a.com/"},
			{"title":"b","url":"https://b.com/"},
			{"title":"c","url":"https://c.com/"}
		]}`))
	})
	if results := provider.Search(context.Background(), "q", 2); len(results) != 2 {
		t.Fatalf("expected limit to cap results at 2, got %d", len(results))
	}
}
