package ingest

import (
	"context"
	"sort"
	"strings"

	"github.com/eidolonhq/eidolon/internal/search"
)

// evidenceRow is a trimmed search hit: the shape retained for seed evidence
// and fed into snapshot metric computation.
type evidenceRow struct {
	Title   string
	URL     string
	Snippet string
	Source  string
}

// CandidateAggregate accumulates every lane hit for one host.
type CandidateAggregate struct {
	Host         string
	Categories   map[string]int
	Appearances  int
	Visibility   float64
	Engines      map[string]struct{}
	MomentumHits int
	RiskHits     int
	SeedEvidence []evidenceRow
}

func newCandidateAggregate(host string) *CandidateAggregate {
	return &CandidateAggregate{
		Host:       host,
		Categories: make(map[string]int),
		Engines:    make(map[string]struct{}),
	}
}

// PrimaryCategory is the lane category that produced the most hits. Ties
// break alphabetically so refreshes stay deterministic.
func (a *CandidateAggregate) PrimaryCategory() string {
	if len(a.Categories) == 0 {
		return "Unknown"
	}
	best := ""
	bestCount := -1
	for category, count := range a.Categories {
		if count > bestCount || (count == bestCount && category < best) {
			best = category
			bestCount = count
		}
	}
	return best
}

// CollectUniverseCandidates runs every universe query lane through the router
// and folds the hits into per-host aggregates. Excluded and publisher hosts
// are dropped at ingestion time.
func CollectUniverseCandidates(ctx context.Context, searcher search.Searcher) map[string]*CandidateAggregate {
	candidates := make(map[string]*CandidateAggregate)

	for _, lane := range universeQueryLanes {
		_, results := searcher.Search(ctx, lane.query, 25)
		for _, r := range results {
			host := hostOf(r.URL)
			if host == "" {
				continue
			}
			if isExcludedHost(host) || isPublisherHost(host) {
				continue
			}

			agg, ok := candidates[host]
			if !ok {
				agg = newCandidateAggregate(host)
				candidates[host] = agg
			}

			agg.Appearances++
			agg.Categories[lane.category]++
			engine := strings.ToLower(r.Source)
			if engine == "" {
				engine = "searxng"
			}
			agg.Engines[engine] = struct{}{}
			agg.Visibility += r.Relevance()
			text := r.Title + " " + r.Snippet
			agg.MomentumHits += countTermHits(text, momentumTerms)
			agg.RiskHits += countTermHits(text, riskTerms)
			if len(agg.SeedEvidence) < 6 {
				agg.SeedEvidence = append(agg.SeedEvidence, evidenceRow{
					Title:   truncate(cleanText(r.Title), 240),
					URL:     truncate(cleanText(r.URL), 500),
					Snippet: truncate(cleanText(r.Snippet), 600),
					Source:  truncate(cleanText(r.Source), 120),
				})
			}
		}
	}
	return candidates
}

// compositeScore prioritizes acceleration keywords plus repeated appearance
// across lanes.
func compositeScore(a *CandidateAggregate) float64 {
	return float64(a.Appearances)*6.0 +
		float64(len(a.Engines))*4.0 +
		float64(a.MomentumHits)*5.0 +
		a.Visibility*0.6 -
		float64(a.RiskHits)*8.0
}

// RankCandidates orders aggregates by composite score, best first.
func RankCandidates(candidates map[string]*CandidateAggregate) []*CandidateAggregate {
	ranked := make([]*CandidateAggregate, 0, len(candidates))
	for _, agg := range candidates {
		ranked = append(ranked, agg)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := compositeScore(ranked[i]), compositeScore(ranked[j])
		if si != sj {
			return si > sj
		}
		return ranked[i].Host < ranked[j].Host
	})
	return ranked
}
