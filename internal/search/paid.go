package search

import (
	"context"

	"github.com/eidolonhq/eidolon/internal/model"
)

// StubPaid is a placeholder adapter for a paid search API. It participates in
// routing and budget accounting but returns no results until a concrete
// integration lands; the router then falls through to the next provider.
type StubPaid struct {
	name        string
	apiKey      string
	cost        float64
	reliability float64
	freshness   float64
}

// NewStubPaid creates a paid-provider stub, enabled iff a key is configured.
func NewStubPaid(name, apiKey string, cost, reliability, freshness float64) *StubPaid {
	return &StubPaid{
		name:        name,
		apiKey:      apiKey,
		cost:        cost,
		reliability: reliability,
		freshness:   freshness,
	}
}

func (p *StubPaid) Name() string          { return p.name }
func (p *StubPaid) Enabled() bool         { return p.apiKey != "" }
func (p *StubPaid) CostPerQuery() float64 { return p.cost }
func (p *StubPaid) Reliability() float64  { return p.reliability }
func (p *StubPaid) Freshness() float64    { return p.freshness }

func (p *StubPaid) Search(ctx context.Context, query string, limit int) []model.SearchResult {
	_ = ctx
	_, _ = query, limit
	return nil
}
