package search

import (
	"context"
	"testing"
	"time"

	"github.com/eidolonhq/eidolon/internal/cache"
	"github.com/eidolonhq/eidolon/internal/model"
)

type countingSearcher struct {
	calls    int
	provider string
	results  []model.SearchResult
}

func (c *countingSearcher) Search(_ context.Context, _ string, _ int) (string, []model.SearchResult) {
	c.calls++
	return c.provider, c.results
}

func TestCachedSearcherReplays(t *testing.T) {
	inner := &countingSearcher{
		provider: "searxng",
		results:  []model.SearchResult{{Title: "T", URL: "https://t.example/", Source: "searxng"}},
	}
	s := NewCachedSearcher(inner, cache.NewMemoryCache(time.Minute), time.Minute, nil)

	provider, results := s.Search(context.Background(), "q", 10)
	if provider != "searxng" || len(results) != 1 {
		t.Fatalf("first call: %s %v", provider, results)
	}
	provider, results = s.Search(context.Background(), "q", 10)
	if provider != "searxng" || len(results) != 1 {
		t.Fatalf("replayed call: %s %v", provider, results)
	}
	if inner.calls != 1 {
		t.Errorf("identical query must hit the cache, inner calls = %d", inner.calls)
	}

	// Different limit is a different key.
	s.Search(context.Background(), "q", 5)
	if inner.calls != 2 {
		t.Errorf("limit participates in the key, inner calls = %d", inner.calls)
	}
}

func TestCachedSearcherSkipsFailures(t *testing.T) {
	inner := &countingSearcher{provider: "none"}
	s := NewCachedSearcher(inner, cache.NewMemoryCache(time.Minute), time.Minute, nil)

	s.Search(context.Background(), "q", 10)
	s.Search(context.Background(), "q", 10)
	if inner.calls != 2 {
		t.Errorf("failed responses must not be cached, inner calls = %d", inner.calls)
	}
}
