package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/eidolonhq/eidolon/internal/model"
)

// fakeSearcher returns canned results for queries matching a substring.
type fakeSearcher struct {
	byQuerySubstring map[string][]model.SearchResult
	queries          []string
}

func (f *fakeSearcher) Search(_ context.Context, query string, limit int) (string, []model.SearchResult) {
	f.queries = append(f.queries, query)
	for substr, results := range f.byQuerySubstring {
		if strings.Contains(query, substr) {
			if len(results) > limit {
				results = results[:limit]
			}
			return "searxng", results
		}
	}
	return "none", nil
}

func TestCollectUniverseCandidates(t *testing.T) {
	searcher := &fakeSearcher{byQuerySubstring: map[string][]model.SearchResult{
		"outdoor apparel": {
			{Title: "Trailhead Gear - Official Site", URL: "https://www.trailheadgear.com/", Snippet: "viral growth launch", Source: "duckduckgo"},
			{Title: "Best Outdoor Brands 2026", URL: "https://forbes.com/best-outdoor", Snippet: "listicle", Source: "bing"},
			{Title: "Trailhead on Instagram", URL: "https://instagram.com/trailhead", Snippet: "", Source: "bing"},
		},
		"trail running": {
			{Title: "Trailhead Gear", URL: "https://shop.trailheadgear.com/run", Snippet: "sold out", Source: "bing"},
		},
	}}

	candidates := CollectUniverseCandidates(context.Background(), searcher)

	if len(searcher.queries) != len(universeQueryLanes) {
		t.Fatalf("expected one search per lane, got %d", len(searcher.queries))
	}
	agg, ok := candidates["trailheadgear.com"]
	if !ok {
		t.Fatalf("expected trailheadgear.com aggregate, have %v", candidates)
	}
	if agg.Appearances != 2 {
		t.Errorf("appearances = %d, want 2 (www and shop hosts collapse)", agg.Appearances)
	}
	if len(agg.Engines) != 2 {
		t.Errorf("engines = %v, want duckduckgo+bing", agg.Engines)
	}
	// "viral", "growth", "launch" in lane one, "sold out" in lane two.
	if agg.MomentumHits != 4 {
		t.Errorf("momentum hits = %d, want 4", agg.MomentumHits)
	}
	if agg.PrimaryCategory() != "Outdoor" {
		t.Errorf("primary category = %q", agg.PrimaryCategory())
	}

	// Publisher and social hosts never become candidates.
	if _, ok := candidates["forbes.com"]; ok {
		t.Error("publisher host must be dropped")
	}
	if _, ok := candidates["instagram.com"]; ok {
		t.Error("excluded host must be dropped")
	}
}

func TestRankCandidates(t *testing.T) {
	// Identical except the second host carries risk-term hits, which the
	// composite penalizes at 8 points each.
	clean := newCandidateAggregate("clean.com")
	clean.Appearances = 3
	clean.Engines["bing"] = struct{}{}
	clean.MomentumHits = 2

	risky := newCandidateAggregate("risky.com")
	risky.Appearances = 3
	risky.Engines["bing"] = struct{}{}
	risky.MomentumHits = 2
	risky.RiskHits = 2

	ranked := RankCandidates(map[string]*CandidateAggregate{
		"risky.com": risky,
		"clean.com": clean,
	})
	if ranked[0].Host != "clean.com" {
		t.Errorf("expected clean.com to outrank risky.com, got %q first", ranked[0].Host)
	}
}

func TestRankCandidatesDeterministicTieBreak(t *testing.T) {
	a := newCandidateAggregate("aaa.com")
	b := newCandidateAggregate("bbb.com")
	a.Appearances, b.Appearances = 1, 1

	for i := 0; i < 5; i++ {
		ranked := RankCandidates(map[string]*CandidateAggregate{"bbb.com": b, "aaa.com": a})
		if ranked[0].Host != "aaa.com" {
			t.Fatal("equal scores must order by host")
		}
	}
}
