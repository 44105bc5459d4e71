package model

import "time"

// Brand is the canonical persisted entity for a tracked consumer brand.
// The id is a stable hash of the resolved host, so repeated refreshes of the
// same site always land on the same row.
type Brand struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	EntityKey   string `json:"entity_key"` // normalized dedupe key, see internal/entity
	Category    string `json:"category"`
	Region      string `json:"region"`
	Website     string `json:"website"`
	Description string `json:"description"`
}

// Scorecard is one week's heuristic scoring snapshot for a brand. Exactly one
// row exists per (brand, snapshot week); re-running a refresh within the same
// week overwrites in place.
type Scorecard struct {
	BrandID      string    `json:"brand_id"`
	SnapshotWeek time.Time `json:"snapshot_week"` // Monday of the ISO week

	HeatScore        float64 `json:"heat_score"`
	RiskScore        float64 `json:"risk_score"`
	AsymmetryIndex   float64 `json:"asymmetry_index"`
	CapitalIntensity float64 `json:"capital_intensity"`

	RevenueP10 float64 `json:"revenue_p10"` // annual revenue band, $M
	RevenueP50 float64 `json:"revenue_p50"`
	RevenueP90 float64 `json:"revenue_p90"`

	DeltaHeat         float64  `json:"delta_heat"` // vs most recent prior week
	Confidence        float64  `json:"confidence"`
	ConfidenceReasons []string `json:"confidence_reasons"`

	SuggestedDealStructure string  `json:"suggested_deal_structure"`
	CapitalRequiredMUSD    float64 `json:"capital_required_musd"`
}

// TimeSeriesPoint is one observation of one metric for one brand, upserted by
// (brand, metric, observed date) so sparklines show motion within a week.
type TimeSeriesPoint struct {
	BrandID     string    `json:"brand_id"`
	Metric      string    `json:"metric"`
	ObservedAt  time.Time `json:"observed_at"`
	Value       float64   `json:"value"`
	Source      string    `json:"source"`
	Reliability float64   `json:"reliability"`
}

// EvidenceCitation is a retained search result supporting a brand's scores.
// Deduplicated by URL within a brand; retention is capped per refresh pass.
type EvidenceCitation struct {
	BrandID     string  `json:"brand_id"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Snippet     string  `json:"snippet"`
	Source      string  `json:"source"`
	Reliability float64 `json:"reliability"`
}

// RefreshSummary reports what a universe refresh pass did.
type RefreshSummary struct {
	Status    string `json:"status"`
	Brands    int    `json:"brands"`
	Created   int    `json:"created"`
	Updated   int    `json:"updated"`
	Snapshots int    `json:"snapshots"`
	Wiped     bool   `json:"wiped"` // legacy synthetic data was detected and cleared
}
