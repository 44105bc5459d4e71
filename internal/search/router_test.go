package search

import (
	"context"
	"testing"
	"time"

	"github.com/eidolonhq/eidolon/internal/model"
)

// fakeProvider is a configurable in-memory provider for router tests.
type fakeProvider struct {
	name        string
	enabled     bool
	cost        float64
	reliability float64
	freshness   float64
	results     []model.SearchResult
	calls       int
}

func (f *fakeProvider) Name() string          { return f.name }
func (f *fakeProvider) Enabled() bool         { return f.enabled }
func (f *fakeProvider) CostPerQuery() float64 { return f.cost }
func (f *fakeProvider) Reliability() float64  { return f.reliability }
func (f *fakeProvider) Freshness() float64    { return f.freshness }

func (f *fakeProvider) Search(_ context.Context, _ string, limit int) []model.SearchResult {
	f.calls++
	if len(f.results) > limit {
		return f.results[:limit]
	}
	return f.results
}

func someResults(n int) []model.SearchResult {
	out := make([]model.SearchResult, n)
	for i := range out {
		out[i] = model.SearchResult{Title: "t", URL: "https://example.com/", Source: "test"}
	}
	return out
}

func TestRouter_PrefersZeroCostProvider(t *testing.T) {
	free := &fakeProvider{name: "free", enabled: true, cost: 0, reliability: 0.5, freshness: 0.5, results: someResults(3)}
	paid := &fakeProvider{name: "paid", enabled: true, cost: 0.01, reliability: 0.99, freshness: 0.99, results: someResults(3)}

	router := NewRouterWithProviders([]Provider{paid, free}, 100, 10.0, nil)

	name, results := router.Search(context.Background(), "q", 5)
	if name != "free" {
		t.Fatalf("expected free provider to win, got %q", name)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if paid.calls != 0 {
		t.Errorf("paid provider should not have been invoked, got %d calls", paid.calls)
	}
}

func TestRouter_FallsBackOnEmptyResults(t *testing.T) {
	empty := &fakeProvider{name: "empty", enabled: true, cost: 0, reliability: 0.9, freshness: 0.9}
	backup := &fakeProvider{name: "backup", enabled: true, cost: 0.005, reliability: 0.8, freshness: 0.8, results: someResults(2)}

	router := NewRouterWithProviders([]Provider{empty, backup}, 100, 10.0, nil)

	name, results := router.Search(context.Background(), "q", 5)
	if name != "backup" {
		t.Fatalf("expected fallback to backup, got %q", name)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	// Empty results are not charged against the budget.
	b := router.Budget()
	if b.DailyQueries != 1 {
		t.Errorf("expected 1 charged query, got %d", b.DailyQueries)
	}
	if b.MonthlySpend != 0.005 {
		t.Errorf("expected spend 0.005, got %v", b.MonthlySpend)
	}
}

func TestRouter_DailyBudgetGate(t *testing.T) {
	free := &fakeProvider{name: "free", enabled: true, cost: 0, reliability: 0.9, freshness: 0.9, results: someResults(1)}
	router := NewRouterWithProviders([]Provider{free}, 3, 10.0, nil)

	for i := 0; i < 3; i++ {
		if name, _ := router.Search(context.Background(), "q", 5); name != "free" {
			t.Fatalf("query %d: expected free, got %q", i, name)
		}
	}

	callsBefore := free.calls
	name, results := router.Search(context.Background(), "q", 5)
	if name != "none" || results != nil {
		t.Fatalf("expected (none, nil) after budget exhaustion, got (%q, %d results)", name, len(results))
	}
	if free.calls != callsBefore {
		t.Error("budget-blocked provider must not be invoked")
	}
}

func TestRouter_MonthlySpendGate(t *testing.T) {
	paid := &fakeProvider{name: "paid", enabled: true, cost: 0.6, reliability: 0.9, freshness: 0.9, results: someResults(1)}
	router := NewRouterWithProviders([]Provider{paid}, 100, 1.0, nil)

	// First query spends 0.60 of the $1 cap; the second would push spend to
	// 1.20 and must be rejected before the provider is touched.
	if name, _ := router.Search(context.Background(), "q", 5); name != "paid" {
		t.Fatal("first query should pass the spend gate")
	}
	callsBefore := paid.calls
	if name, _ := router.Search(context.Background(), "q", 5); name != "none" {
		t.Fatalf("expected spend gate to block, got %q", name)
	}
	if paid.calls != callsBefore {
		t.Error("spend-blocked provider must not be invoked")
	}
}

func TestRouter_BudgetResetsOnDayRollover(t *testing.T) {
	free := &fakeProvider{name: "free", enabled: true, cost: 0, reliability: 0.9, freshness: 0.9, results: someResults(1)}
	router := NewRouterWithProviders([]Provider{free}, 1, 10.0, nil)

	base := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	router.now = func() time.Time { return base }
	router.state = newBudgetState(base)

	if name, _ := router.Search(context.Background(), "q", 5); name != "free" {
		t.Fatal("first query should pass")
	}
	if name, _ := router.Search(context.Background(), "q", 5); name != "none" {
		t.Fatal("second query should be budget-blocked")
	}

	// Next day: the daily counter resets lazily on access.
	router.now = func() time.Time { return base.Add(24 * time.Hour) }
	if name, _ := router.Search(context.Background(), "q", 5); name != "free" {
		t.Fatal("query after day rollover should pass")
	}
}

func TestRouter_SkipsDisabledProviders(t *testing.T) {
	disabled := &fakeProvider{name: "off", enabled: false, cost: 0, reliability: 1, freshness: 1, results: someResults(1)}
	router := NewRouterWithProviders([]Provider{disabled}, 100, 10.0, nil)

	if name, _ := router.Search(context.Background(), "q", 5); name != "none" {
		t.Fatalf("expected none with no enabled providers, got %q", name)
	}
	if disabled.calls != 0 {
		t.Error("disabled provider must not be invoked")
	}
}
