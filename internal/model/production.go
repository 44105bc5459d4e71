package model

// ProductionSnapshot characterizes how a brand most likely manufactures
// today, derived from category priors and the latest scorecard.
type ProductionSnapshot struct {
	CurrentModel          string   `json:"current_model"`
	UnitEconomicsPressure string   `json:"unit_economics_pressure"` // low-to-moderate, moderate-to-high, high
	Bottlenecks           []string `json:"bottlenecks"`
	Confidence            float64  `json:"confidence"`
}

// ProductionOption is one candidate restructuring of the production setup.
type ProductionOption struct {
	OptionName          string  `json:"option_name"`
	Mode                string  `json:"mode"` // outsource, hybrid, licensing, inhouse
	EstimatedSavingsPct float64 `json:"estimated_savings_pct"`
	CapexImpactMUSD     float64 `json:"capex_impact_musd"`
	TimeToImpactMonths  int     `json:"time_to_impact_months"`
	ExecutionRisk       string  `json:"execution_risk"` // low, medium, high
	Rationale           string  `json:"rationale"`
}

// CostOpportunity is a ranked cost-down lever with a savings band.
type CostOpportunity struct {
	Title                  string  `json:"title"`
	Lever                  string  `json:"lever"`
	EstimatedSavingsPctLow float64 `json:"estimated_savings_pct_low"`
	EstimatedSavingsPctHigh float64 `json:"estimated_savings_pct_high"`
	Confidence             float64 `json:"confidence"`
	Rationale              string  `json:"rationale"`
}
