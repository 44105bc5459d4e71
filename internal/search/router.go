package search

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eidolonhq/eidolon/internal/model"
)

// budgetState tracks the shared retrieval budget. Counters reset lazily when
// the calendar day or month rolls over; there is no background timer.
type budgetState struct {
	day          time.Time // date only
	year, month  int
	dailyQueries int
	monthlySpend float64
}

func newBudgetState(now time.Time) budgetState {
	return budgetState{
		day:   dateOf(now),
		year:  now.Year(),
		month: int(now.Month()),
	}
}

func (b *budgetState) refresh(now time.Time) {
	today := dateOf(now)
	if !today.Equal(b.day) {
		b.day = today
		b.dailyQueries = 0
	}
	if now.Year() != b.year || int(now.Month()) != b.month {
		b.year = now.Year()
		b.month = int(now.Month())
		b.monthlySpend = 0
	}
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// BudgetSnapshot exposes the current counters for health/budget output.
type BudgetSnapshot struct {
	DailyQueries int     `json:"daily_queries"`
	DailyLimit   int     `json:"daily_limit"`
	MonthlySpend float64 `json:"monthly_spend"`
	MonthlyLimit float64 `json:"monthly_limit"`
}

// Router selects the best available provider for each query under the shared
// budget. Providers are ranked by quality-per-dollar, so the zero-cost
// aggregator is always tried before paid APIs regardless of its reliability:
// cost containment deliberately wins over quality.
type Router struct {
	providers []Provider

	dailyBudget  int
	monthlyLimit float64

	mu    sync.Mutex
	state budgetState
	now   func() time.Time

	log *logrus.Logger
}

// NewRouter builds the fixed provider pool from configuration. The provider
// set is a closed strategy selection; nothing registers at runtime.
func NewRouter(cfg model.SearchConfig, httpCfg model.HTTPConfig, log *logrus.Logger) *Router {
	providers := []Provider{
		NewSearXNG(cfg.SearXNGBaseURL, cfg.SearXNGEngines, httpCfg.UserAgent, httpCfg.SearchTimeout, httpCfg.MaxBodyBytes),
		NewStubPaid("brave", cfg.BraveAPIKey, 0.003, 0.84, 0.84),
		NewStubPaid("serpapi", cfg.SerpAPIKey, 0.01, 0.9, 0.88),
		NewStubPaid("google_cse", cfg.GoogleCSEAPIKey, 0.005, 0.85, 0.85),
		NewStubPaid("dataforseo", cfg.DataForSEOLogin, 0.015, 0.86, 0.9),
		NewStubPaid("opencorporates", cfg.OpenCorporatesAPIKey, 0.002, 0.8, 0.65),
	}
	return NewRouterWithProviders(providers, cfg.DailyQueryBudget, cfg.MonthlySpendLimitUSD, log)
}

// NewRouterWithProviders wires an explicit provider list, mainly for tests.
func NewRouterWithProviders(providers []Provider, dailyBudget int, monthlyLimit float64, log *logrus.Logger) *Router {
	if log == nil {
		log = logrus.New()
	}
	return &Router{
		providers:    providers,
		dailyBudget:  dailyBudget,
		monthlyLimit: monthlyLimit,
		state:        newBudgetState(time.Now()),
		now:          time.Now,
		log:          log,
	}
}

// rank returns enabled providers sorted ascending by cost per quality unit.
// Zero-cost providers sort first since the numerator is zero.
func (r *Router) rank() []Provider {
	enabled := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		if p.Enabled() {
			enabled = append(enabled, p)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		return routeScore(enabled[i]) < routeScore(enabled[j])
	})
	return enabled
}

func routeScore(p Provider) float64 {
	quality := p.Reliability()*0.6 + p.Freshness()*0.4
	if quality < 0.01 {
		quality = 0.01
	}
	return p.CostPerQuery() / quality
}

// budgetAvailable checks the gate for one candidate provider. Caller holds mu.
func (r *Router) budgetAvailable(p Provider) bool {
	r.state.refresh(r.now())
	if r.state.dailyQueries >= r.dailyBudget {
		return false
	}
	if r.state.monthlySpend+p.CostPerQuery() > r.monthlyLimit {
		return false
	}
	return true
}

// Search iterates ranked providers, skipping any the budget gate rejects.
// The first provider to return a non-empty result list is charged one daily
// query plus its per-query cost; empty results cost nothing and cede the
// query to the next provider. Returns ("none", nil) when everything is
// exhausted or budget-blocked.
func (r *Router) Search(ctx context.Context, query string, limit int) (string, []model.SearchResult) {
	for _, provider := range r.rank() {
		r.mu.Lock()
		ok := r.budgetAvailable(provider)
		r.mu.Unlock()
		if !ok {
			continue
		}

		results := provider.Search(ctx, query, limit)
		if len(results) == 0 {
			continue
		}

		r.mu.Lock()
		r.state.dailyQueries++
		r.state.monthlySpend += provider.CostPerQuery()
		r.mu.Unlock()

		r.log.WithFields(logrus.Fields{
			"provider": provider.Name(),
			"results":  len(results),
		}).Debug("search routed")
		return provider.Name(), results
	}
	return "none", nil
}

// Budget returns the current budget counters.
func (r *Router) Budget() BudgetSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.refresh(r.now())
	return BudgetSnapshot{
		DailyQueries: r.state.dailyQueries,
		DailyLimit:   r.dailyBudget,
		MonthlySpend: r.state.monthlySpend,
		MonthlyLimit: r.monthlyLimit,
	}
}
