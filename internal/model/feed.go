package model

import "time"

// SortMode selects the ranking column for the feed.
type SortMode string

const (
	SortHeat            SortMode = "heat"
	SortAsymmetry       SortMode = "asymmetry"
	SortRisk            SortMode = "risk"
	SortRevenue         SortMode = "revenue"
	SortCapitalRequired SortMode = "capital_required"
)

// FeedItem is one ranked row of the weekly feed.
type FeedItem struct {
	Rank                    int     `json:"rank"`
	BrandID                 string  `json:"brand_id"`
	Name                    string  `json:"name"`
	Category                string  `json:"category"`
	Region                  string  `json:"region"`
	HeatScore               float64 `json:"heat_score"`
	RiskScore               float64 `json:"risk_score"`
	AsymmetryIndex          float64 `json:"asymmetry_index"`
	CapitalIntensity        float64 `json:"capital_intensity"`
	RevenueP50              float64 `json:"revenue_p50"`
	CapitalRequiredMUSD     float64 `json:"capital_required_musd"`
	DeltaHeat               float64 `json:"delta_heat"`
	Confidence              float64 `json:"confidence"`
	DeeperAnalysisRequired  bool    `json:"deeper_analysis_required"`
}

// FeedResponse is the deduplicated ranked feed for the latest snapshot week.
type FeedResponse struct {
	GeneratedAt time.Time  `json:"generated_at"`
	Sort        SortMode   `json:"sort"`
	Items       []FeedItem `json:"items"`
}

// ConfidenceEnvelope carries the overall confidence plus the human-readable
// reasons chosen at scoring time.
type ConfidenceEnvelope struct {
	Overall float64  `json:"overall"`
	Reasons []string `json:"reasons"`
}

// SignalPoint is one labelled metric with its current value and the delta
// across the stored observation window.
type SignalPoint struct {
	Metric  string  `json:"metric"`
	Current float64 `json:"current"`
	Delta   float64 `json:"delta_12w"`
	Source  string  `json:"source"`
}

// SignalSnapshot groups the proxy metrics the way the collection layer is
// organized: social, commerce, then search/cultural.
type SignalSnapshot struct {
	SocialSignals         []SignalPoint `json:"social_signals"`
	CommerceSignals       []SignalPoint `json:"commerce_signals"`
	SearchCulturalSignals []SignalPoint `json:"search_cultural_signals"`
	AccelerationNote      string        `json:"acceleration_priority_note"`
}

// EngagementBreakdown is derived from the scorecard plus stored timeseries.
type EngagementBreakdown struct {
	CommentsToLikesRatio   float64 `json:"comments_to_likes_ratio"`
	RepeatCommenterDensity float64 `json:"repeat_commenter_density"`
	UGCDepthScore          float64 `json:"ugc_depth_score"`
	SentimentScore         float64 `json:"sentiment_score"`
	InfluencerOverlapScore float64 `json:"influencer_overlap_score"`
	GeographicSpreadScore  float64 `json:"geographic_spread_score"`
}

// FinancialInference is the traffic x conversion x AOV proxy model with its
// cross-check assumptions and any asymmetry flags it triggered.
type FinancialInference struct {
	TrafficEstimateKMo      float64  `json:"traffic_estimate_kmo"`
	ConversionAssumptionPct float64  `json:"conversion_assumption_pct"`
	AverageOrderValueUSD    float64  `json:"average_order_value_usd"`
	SKUCountEstimate        int      `json:"sku_count_estimate"`
	SellThroughPct          float64  `json:"sell_through_assumption_pct"`
	GrossMarginPct          float64  `json:"gross_margin_estimate_pct"`
	CACProxyUSD             float64  `json:"cac_proxy_usd"`
	LTVProxyUSD             float64  `json:"ltv_proxy_usd"`
	ScenarioFlags           []string `json:"scenario_flags"`
	InferenceNotes          []string `json:"inference_notes"`
}

// RiskScan summarizes signal-derived legal/platform/supplier exposure.
type RiskScan struct {
	TrademarkStrength         string   `json:"trademark_strength"` // strong, moderate, weak
	CorporateRegistryVerified bool     `json:"corporate_registry_verified"`
	LitigationFlags           []string `json:"litigation_flags"`
	PlatformDependencyRisk    string   `json:"platform_dependency_risk"` // low, medium, high
	AlgorithmExposureRisk     string   `json:"algorithm_exposure_risk"`
	SupplierConcentrationRisk string   `json:"supplier_concentration_risk"`
	FounderDependencyScore    float64  `json:"founder_dependency_score"`
	KeyRisks                  []string `json:"key_risks"`
}

// DealStructuringPlan is the suggested entry structure plus outreach draft.
type DealStructuringPlan struct {
	SuggestedEntryStrategy      string  `json:"suggested_entry_strategy"`
	SuggestedOwnershipTargetPct string  `json:"suggested_ownership_target_pct"`
	EstimatedCapitalMUSD        float64 `json:"estimated_capital_required_musd"`
	FounderAlignmentThesis      string  `json:"founder_alignment_thesis"`
	DraftOutreachEmail          string  `json:"draft_outreach_email"`
	DeeperAnalysisRequired      bool    `json:"deeper_analysis_required"`
}

// BrandProfile is the full assembled view of one brand: latest scorecard,
// retained evidence, and the derived narrative blocks.
type BrandProfile struct {
	Brand               Brand               `json:"brand"`
	Scorecard           Scorecard           `json:"scorecard"`
	Confidence          ConfidenceEnvelope  `json:"confidence"`
	Evidence            []EvidenceCitation  `json:"evidence"`
	ProductionSnapshot  ProductionSnapshot  `json:"production_snapshot"`
	ProductionOptions   []ProductionOption  `json:"production_options"`
	CostReduction       []CostOpportunity   `json:"cost_reduction_opportunities"`
	Signals             SignalSnapshot      `json:"data_collection_snapshot"`
	EngagementBreakdown EngagementBreakdown `json:"engagement_breakdown"`
	FinancialInference  FinancialInference  `json:"financial_inference"`
	RiskScan            RiskScan            `json:"risk_scan"`
	DealStructuring     DealStructuringPlan `json:"deal_structuring"`
	MemoPreview         string              `json:"memo_preview"`
}

// TimeSeriesResponse lists all stored observations for one brand.
type TimeSeriesResponse struct {
	BrandID string            `json:"brand_id"`
	Points  []TimeSeriesPoint `json:"points"`
}
