// Package search implements the provider abstraction and the budget-aware
// source router that every retrieval pass goes through.
package search

import (
	"context"

	"github.com/eidolonhq/eidolon/internal/model"
)

// Provider abstracts one search backend. Implementations never return an
// error: any transport or parse failure yields an empty result list, which
// is the core failure-isolation mechanism of the pipeline.
type Provider interface {
	// Name identifies the provider in router output and evidence rows.
	Name() string

	// Enabled reports whether the provider is configured (API key, base URL).
	Enabled() bool

	// Static routing traits.
	CostPerQuery() float64
	Reliability() float64
	Freshness() float64

	// Search runs one query, capped at limit results. Never errors.
	Search(ctx context.Context, query string, limit int) []model.SearchResult
}

// Searcher is the retrieval surface the router exposes to collectors. The
// returned provider name is "none" when the budget is exhausted or every
// provider came back empty.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) (provider string, results []model.SearchResult)
}
