package model

import "time"

// DiscoveryCandidate is a raw deduplicated search hit from a discovery pass.
// Discovery output is session-scoped and never persisted.
type DiscoveryCandidate struct {
	NameGuess string `json:"name_guess"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Snippet   string `json:"snippet"`
	Source    string `json:"source"`
	Query     string `json:"query"`
}

// DiscoveryCompanyReport is the scored view of one discovered company.
type DiscoveryCompanyReport struct {
	Name                    string   `json:"name"`
	SourceURL               string   `json:"source_url"`
	Source                  string   `json:"source"`
	FitScore                float64  `json:"fit_score"`
	MomentumScore           float64  `json:"momentum_score"`
	RiskScore               float64  `json:"risk_score"`
	AsymmetryScore          float64  `json:"asymmetry_score"`
	EstimatedRevenueBand    string   `json:"estimated_revenue_band"`
	SuggestedDealStructure  string   `json:"suggested_deal_structure"`
	ProductionCostDownAngle string   `json:"production_cost_down_angle"`
	OpportunityThesis       string   `json:"opportunity_thesis"`
	NextStep                string   `json:"next_step"`
	KeyRisks                []string `json:"key_risks"`
	DiligenceQuestions      []string `json:"diligence_questions"`
	CostDownActions         []string `json:"operational_cost_down_actions"`
	ExecutionPlan306090     []string `json:"execution_plan_30_60_90"`
	Confidence              float64  `json:"confidence"`
}

// IndustryReport is the narrative wrapper around ranked company reports.
type IndustryReport struct {
	Industry       string                   `json:"industry"`
	Region         string                   `json:"region,omitempty"`
	Narrative      string                   `json:"narrative"`
	TopSignals     []string                 `json:"top_signals"`
	CompanyReports []DiscoveryCompanyReport `json:"company_reports"`
}

// DiscoverResponse is the full result of one ad-hoc industry discovery call.
type DiscoverResponse struct {
	GeneratedAt      time.Time            `json:"generated_at"`
	Industry         string               `json:"industry"`
	Region           string               `json:"region,omitempty"`
	ProviderAttempts []string             `json:"provider_attempts"`
	Items            []DiscoveryCandidate `json:"items"`
	Report           IndustryReport       `json:"report"`
}
