package scoring

import "github.com/eidolonhq/eidolon/internal/model"

// ProductionInputs are the scorecard-derived values feeding the production
// heuristics.
type ProductionInputs struct {
	Category         string
	HeatScore        float64
	RiskScore        float64
	AsymmetryIndex   float64
	CapitalIntensity float64
	RevenueP50       float64
	Confidence       float64
}

var categoryHints = map[string]string{
	"Beauty":          "formula and packaging suppliers",
	"Personal Care":   "contract fill-finish and packaging suppliers",
	"Food & Beverage": "co-packers and ingredient procurement",
	"Apparel":         "cut-and-sew partners and fabric sourcing",
	"Home Goods":      "tooling vendors and freight lanes",
	"Consumer Tech":   "OEM assembly and component sourcing",
	"Pet":             "co-manufacturing and packaging",
	"Outdoor":         "materials sourcing and fulfillment footprint",
	"Childcare":       "compliance-grade suppliers and packaging",
	"Wellness":        "ingredient sourcing and contract manufacturing",
}

func currentProductionModel(in ProductionInputs) string {
	switch {
	case in.CapitalIntensity < 38:
		return "Asset-light contract manufacturing"
	case in.CapitalIntensity < 68:
		return "Hybrid model (contract manufacturing plus controlled finishing/assembly)"
	default:
		return "Capex-heavy dedicated line or in-house production"
	}
}

func pressureLabel(in ProductionInputs) string {
	pressure := (in.CapitalIntensity*0.55 + in.RiskScore*0.45) / 100
	switch {
	case pressure < 0.42:
		return "low-to-moderate"
	case pressure < 0.68:
		return "moderate-to-high"
	default:
		return "high"
	}
}

func productionBottlenecks(in ProductionInputs) []string {
	var bottlenecks []string
	if in.CapitalIntensity > 58 {
		bottlenecks = append(bottlenecks, "working-capital drag from inventory and MOQs")
	}
	if in.RiskScore > 62 {
		bottlenecks = append(bottlenecks, "supplier concentration and channel fragility")
	}
	if in.HeatScore > 72 && in.RevenueP50 < 22 {
		bottlenecks = append(bottlenecks, "demand outpacing production planning cadence")
	}
	if in.AsymmetryIndex > 70 {
		bottlenecks = append(bottlenecks, "margin leakage from fragmented vendor terms")
	}
	if len(bottlenecks) == 0 {
		bottlenecks = append(bottlenecks, "limited procurement leverage at current scale")
	}
	return bottlenecks
}

// BuildProductionSnapshot characterizes the likely current production model.
func BuildProductionSnapshot(in ProductionInputs) model.ProductionSnapshot {
	return model.ProductionSnapshot{
		CurrentModel:          currentProductionModel(in),
		UnitEconomicsPressure: pressureLabel(in),
		Bottlenecks:           productionBottlenecks(in),
		Confidence:            round3(clamp(in.Confidence-0.05, 0.35, 0.95)),
	}
}

// baseSavings: higher capital intensity and risk create more recoverable
// inefficiency.
func baseSavings(in ProductionInputs) float64 {
	return clamp(2.0+in.CapitalIntensity*0.08+in.RiskScore*0.05, 2.0, 14.0)
}

// BuildProductionOptions lists candidate restructurings from cheapest rebid
// to a full in-house move.
func BuildProductionOptions(in ProductionInputs) []model.ProductionOption {
	base := baseSavings(in)
	supplierHint, ok := categoryHints[in.Category]
	if !ok {
		supplierHint = "supplier network"
	}
	return []model.ProductionOption{
		{
			OptionName:          "Strategic Contract Rebid",
			Mode:                "outsource",
			EstimatedSavingsPct: round2(base * 0.7),
			CapexImpactMUSD:     0.4,
			TimeToImpactMonths:  3,
			ExecutionRisk:       "low",
			Rationale: "Run structured RFP across " + supplierHint +
				" to compress COGS and lock better terms with dual-source coverage.",
		},
		{
			OptionName:          "Hybrid Regionalization",
			Mode:                "hybrid",
			EstimatedSavingsPct: round2(base * 0.95),
			CapexImpactMUSD:     1.4,
			TimeToImpactMonths:  6,
			ExecutionRisk:       "medium",
			Rationale:           "Split production by region to reduce freight, improve lead times, and protect against single-node disruption.",
		},
		{
			OptionName:          "SKU + Packaging Simplification",
			Mode:                "licensing",
			EstimatedSavingsPct: round2(base * 0.8),
			CapexImpactMUSD:     0.2,
			TimeToImpactMonths:  4,
			ExecutionRisk:       "low",
			Rationale:           "Rationalize long-tail SKUs and standardize components to lower MOQ waste and conversion complexity.",
		},
		{
			OptionName:          "Selective In-House Critical Process",
			Mode:                "inhouse",
			EstimatedSavingsPct: round2(base * 1.1),
			CapexImpactMUSD:     4.8,
			TimeToImpactMonths:  12,
			ExecutionRisk:       "high",
			Rationale:           "Internalize the single highest-margin-loss step only when scale and utilization can support fixed-cost absorption.",
		},
	}
}

// BuildCostReduction ranks the cost-down levers with savings bands.
func BuildCostReduction(in ProductionInputs) []model.CostOpportunity {
	base := baseSavings(in)
	confidence := clamp(in.Confidence-0.08, 0.35, 0.93)

	return []model.CostOpportunity{
		{
			Title:                   "Supplier portfolio rebalance",
			Lever:                   "procurement",
			EstimatedSavingsPctLow:  round2(base * 0.45),
			EstimatedSavingsPctHigh: round2(base * 0.9),
			Confidence:              round3(confidence),
			Rationale:               "Reprice top spend categories with volume commitments and indexed terms.",
		},
		{
			Title:                   "Freight + fulfillment lane optimization",
			Lever:                   "logistics",
			EstimatedSavingsPctLow:  round2(base * 0.25),
			EstimatedSavingsPctHigh: round2(base * 0.55),
			Confidence:              round3(clamp(confidence-0.05, 0.3, 1)),
			Rationale:               "Use regional 3PL split and demand-cluster routing to reduce landed cost volatility.",
		},
		{
			Title:                   "SKU and packaging architecture cleanup",
			Lever:                   "product mix",
			EstimatedSavingsPctLow:  round2(base * 0.3),
			EstimatedSavingsPctHigh: round2(base * 0.6),
			Confidence:              round3(clamp(confidence-0.02, 0.32, 1)),
			Rationale:               "Reduce low-velocity SKU drag and standardize packaging components.",
		},
	}
}
