package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/eidolonhq/eidolon/internal/entity"
	"github.com/eidolonhq/eidolon/internal/model"
	"github.com/eidolonhq/eidolon/internal/store"
)

// sortValue extracts the ranking column for one feed row.
func sortValue(mode model.SortMode, sc model.Scorecard) float64 {
	switch mode {
	case model.SortAsymmetry:
		return sc.AsymmetryIndex
	case model.SortRisk:
		return sc.RiskScore
	case model.SortRevenue:
		return sc.RevenueP50
	case model.SortCapitalRequired:
		return sc.CapitalRequiredMUSD
	default:
		return sc.HeatScore
	}
}

func matchesSearch(b model.Brand, tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}
	haystack := strings.ToLower(b.Name + " " + b.Category + " " + b.Region + " " + b.Website)
	for _, tok := range tokens {
		if strings.Contains(haystack, tok) {
			return true
		}
	}
	return false
}

// BuildFeed assembles the ranked feed from the latest snapshot week. Rows are
// deduplicated by canonical display name so near-identical brand rows never
// appear twice; an empty store yields an empty feed, never an error.
func BuildFeed(ctx context.Context, st *store.Store, sortMode model.SortMode, limit int, search string) (model.FeedResponse, error) {
	resp := model.FeedResponse{GeneratedAt: time.Now().UTC(), Sort: sortMode}

	week, err := st.LatestSnapshotWeek(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return resp, nil
		}
		return resp, err
	}

	rows, err := st.FeedRows(ctx, week)
	if err != nil {
		return resp, err
	}

	var tokens []string
	for _, tok := range strings.Fields(strings.ToLower(search)) {
		tokens = append(tokens, tok)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		vi, vj := sortValue(sortMode, rows[i].Scorecard), sortValue(sortMode, rows[j].Scorecard)
		if vi != vj {
			return vi > vj
		}
		return rows[i].Scorecard.Confidence > rows[j].Scorecard.Confidence
	})

	seen := make(map[string]struct{})
	for _, row := range rows {
		if !matchesSearch(row.Brand, tokens) {
			continue
		}
		displayName := entity.CanonicalDisplayName(row.Brand.Name)
		dedupeKey := strings.ToLower(displayName)
		if _, dup := seen[dedupeKey]; dup {
			continue
		}
		seen[dedupeKey] = struct{}{}

		sc := row.Scorecard
		resp.Items = append(resp.Items, model.FeedItem{
			Rank:                   len(resp.Items) + 1,
			BrandID:                row.Brand.ID,
			Name:                   displayName,
			Category:               row.Brand.Category,
			Region:                 row.Brand.Region,
			HeatScore:              round2(sc.HeatScore),
			RiskScore:              round2(sc.RiskScore),
			AsymmetryIndex:         round2(sc.AsymmetryIndex),
			CapitalIntensity:       round2(sc.CapitalIntensity),
			RevenueP50:             round2(sc.RevenueP50),
			CapitalRequiredMUSD:    round2(sc.CapitalRequiredMUSD),
			DeltaHeat:              round2(sc.DeltaHeat),
			Confidence:             round3(sc.Confidence),
			DeeperAnalysisRequired: DeeperAnalysisRequired(sc.HeatScore),
		})
		if len(resp.Items) >= limit {
			break
		}
	}
	return resp, nil
}

func avgMetric(points []model.TimeSeriesPoint, metric string, fallback float64) float64 {
	var sum float64
	var n int
	for _, p := range points {
		if p.Metric == metric {
			sum += p.Value
			n++
		}
	}
	if n == 0 {
		return fallback
	}
	return sum / float64(n)
}

// metricCurrentAndDelta returns the latest observation and its change since
// the earliest stored one. Points arrive already ordered by observation date.
func metricCurrentAndDelta(points []model.TimeSeriesPoint, metric string) (current, delta float64) {
	var first, last float64
	found := false
	for _, p := range points {
		if p.Metric != metric {
			continue
		}
		if !found {
			first = p.Value
			found = true
		}
		last = p.Value
	}
	if !found {
		return 0, 0
	}
	return last, last - first
}

func buildSignalGroup(points []model.TimeSeriesPoint, configs []signalConfig) []model.SignalPoint {
	out := make([]model.SignalPoint, 0, len(configs))
	for _, cfg := range configs {
		current, delta := metricCurrentAndDelta(points, cfg.metric)
		out = append(out, model.SignalPoint{
			Metric:  cfg.label,
			Current: round3(current),
			Delta:   round3(delta),
			Source:  cfg.source,
		})
	}
	return out
}

func buildSignalSnapshot(points []model.TimeSeriesPoint) model.SignalSnapshot {
	return model.SignalSnapshot{
		SocialSignals:         buildSignalGroup(points, socialSignalConfig),
		CommerceSignals:       buildSignalGroup(points, commerceSignalConfig),
		SearchCulturalSignals: buildSignalGroup(points, searchCulturalSignalConfig),
		AccelerationNote:      "Signals prioritize velocity and acceleration over absolute scale.",
	}
}

func buildEngagementBreakdown(sc model.Scorecard, points []model.TimeSeriesPoint) model.EngagementBreakdown {
	avgQuality := avgMetric(points, "engagement_quality", 0.86)
	return model.EngagementBreakdown{
		CommentsToLikesRatio:   round3(clamp(0.03+avgQuality*0.1, 0.03, 0.35)),
		RepeatCommenterDensity: round3(clamp(0.18+sc.HeatScore/160+sc.Confidence*0.2, 0.15, 0.92)),
		UGCDepthScore:          round2(clamp(sc.HeatScore*0.72+sc.DeltaHeat*1.8, 5.0, 99.0)),
		SentimentScore:         round2(clamp(58+sc.HeatScore*0.28-sc.RiskScore*0.32, 5.0, 99.0)),
		InfluencerOverlapScore: round2(clamp(35+sc.HeatScore*0.35+sc.AsymmetryIndex*0.25, 5.0, 99.0)),
		GeographicSpreadScore:  round2(clamp(24+sc.HeatScore*0.42-sc.RiskScore*0.12, 5.0, 99.0)),
	}
}

func buildFinancialInference(sc model.Scorecard, category string) model.FinancialInference {
	aov := AOVFor(category)
	conversionPct := clamp(1.1+sc.HeatScore/58-sc.RiskScore/160, 0.7, 5.5)
	denom := aov * (conversionPct / 100)
	if denom < 1.0 {
		denom = 1.0
	}
	trafficKMo := sc.RevenueP50 * 1_000_000 / denom / 1000
	skuEstimate := int(clamp(math.Round(sc.RevenueP50*1.7+sc.CapitalIntensity*0.55), 10, 600))

	flags := []string{}
	if sc.HeatScore >= 75 && sc.RevenueP50 < 25 {
		flags = append(flags, "High Heat with Low Revenue")
	}
	if sc.RevenueP50 >= 80 && sc.CapitalIntensity >= 55 {
		flags = append(flags, "High Revenue with Operational Inefficiency")
	}
	if sc.RevenueP50 >= 70 && sc.AsymmetryIndex >= 65 {
		flags = append(flags, "High Revenue with Underleveraged IP")
	}
	if len(flags) == 0 {
		flags = append(flags, "No critical financial asymmetry flags triggered.")
	}

	return model.FinancialInference{
		TrafficEstimateKMo:      round2(trafficKMo),
		ConversionAssumptionPct: round2(conversionPct),
		AverageOrderValueUSD:    round2(aov),
		SKUCountEstimate:        skuEstimate,
		SellThroughPct:          round2(clamp(52+sc.HeatScore*0.3-sc.RiskScore*0.16, 30, 97)),
		GrossMarginPct:          round2(clamp(28+sc.AsymmetryIndex*0.31-sc.CapitalIntensity*0.11, 15, 87)),
		CACProxyUSD:             round2(clamp(aov*(0.34+sc.RiskScore/240+sc.CapitalIntensity/300), 7, 350)),
		LTVProxyUSD:             round2(clamp(aov*(1.6+sc.HeatScore/70+sc.AsymmetryIndex/130), 35, 1800)),
		ScenarioFlags:           flags,
		InferenceNotes: []string{
			"Revenue proxy uses traffic x conversion x average order value baseline.",
			"Cross-check includes SKU x price x estimated sell-through.",
			"Hiring/ad-activity momentum is treated as directional, not definitive.",
		},
	}
}

func buildRiskScan(sc model.Scorecard, evidence []model.EvidenceCitation, production model.ProductionSnapshot) model.RiskScan {
	registryVerified := false
	for _, e := range evidence {
		if e.Source == "public_registry" {
			registryVerified = true
			break
		}
	}

	trademarkStrength := "weak"
	switch {
	case registryVerified && sc.RiskScore < 45:
		trademarkStrength = "strong"
	case sc.RiskScore < 70:
		trademarkStrength = "moderate"
	}

	var litigationFlags []string
	switch {
	case sc.RiskScore > 78:
		litigationFlags = []string{
			"Potential litigation sensitivity detected in claims, labeling, or IP perimeter.",
			"Manual legal counsel review recommended before outreach escalation.",
		}
	case sc.RiskScore > 62:
		litigationFlags = []string{"Moderate legal sensitivity; verify trademark classes and open disputes."}
	default:
		litigationFlags = []string{"No active litigation flags detected in available public signals."}
	}

	platformDependency := sc.RiskScore*0.55 + (100-sc.AsymmetryIndex)*0.45
	algorithmExposure := sc.HeatScore*0.62 + math.Abs(sc.DeltaHeat)*6.0
	supplierConcentration := sc.CapitalIntensity*0.7 + sc.RiskScore*0.3

	founderDependency := clamp(
		28+sc.AsymmetryIndex*0.38+math.Max(0, 80-sc.RevenueP50)*0.18,
		8.0, 98.0)

	bottleneck := "limited procurement leverage at current scale"
	if len(production.Bottlenecks) > 0 {
		bottleneck = production.Bottlenecks[0]
	}

	return model.RiskScan{
		TrademarkStrength:         trademarkStrength,
		CorporateRegistryVerified: registryVerified,
		LitigationFlags:           litigationFlags,
		PlatformDependencyRisk:    riskBucket(platformDependency),
		AlgorithmExposureRisk:     riskBucket(algorithmExposure),
		SupplierConcentrationRisk: riskBucket(supplierConcentration),
		FounderDependencyScore:    round2(founderDependency),
		KeyRisks: []string{
			fmt.Sprintf("Platform dependency risk is %s.", riskBucket(platformDependency)),
			fmt.Sprintf("Algorithm exposure risk is %s.", riskBucket(algorithmExposure)),
			fmt.Sprintf("Supplier concentration risk is %s.", riskBucket(supplierConcentration)),
			"Primary operational bottleneck: " + bottleneck,
		},
	}
}

func buildFounderAlignmentThesis(brandName string, sc model.Scorecard, deeperRequired bool) string {
	tone := "measured"
	if deeperRequired {
		tone = "high-urgency"
	}
	return fmt.Sprintf(
		"%s appears founder-led with a %s opportunity to align on growth while preserving brand voice. "+
			"Anchor around safeguarding creative control, improving operating cadence, and using capital against "+
			"the highest-friction constraint (risk=%.1f, asymmetry=%.1f).",
		brandName, tone, sc.RiskScore, sc.AsymmetryIndex)
}

func buildOutreachEmail(brandName, structure, ownershipTarget string, capitalMUSD float64) string {
	return fmt.Sprintf(
		"Subject: %s growth partnership discussion\n\n"+
			"Hi [Founder Name],\n\n"+
			"We've been tracking %s's acceleration and see strong potential to support the next phase of growth. "+
			"Our initial view is a %s with a target stake of %s and about $%.1fM of growth capital.\n\n"+
			"If helpful, we can share a concise operating blueprint covering supply-chain resilience, "+
			"COGS reduction levers, and scenario-tested downside protections.\n\n"+
			"Would you be open to a short intro call next week?\n\n"+
			"Best,\nEidolon",
		brandName, brandName, strings.ToLower(structure), ownershipTarget, capitalMUSD)
}

// BuildBrandProfile assembles the full dossier for one brand from its latest
// scorecard, retained evidence, and stored observations.
func BuildBrandProfile(ctx context.Context, st *store.Store, brandID string) (model.BrandProfile, error) {
	brand, err := st.GetBrand(ctx, brandID)
	if err != nil {
		return model.BrandProfile{}, err
	}
	sc, err := st.LatestScorecard(ctx, brandID)
	if err != nil {
		return model.BrandProfile{}, err
	}
	evidence, err := st.ListEvidence(ctx, brandID, 8)
	if err != nil {
		return model.BrandProfile{}, err
	}
	points, err := st.ListTimeSeries(ctx, brandID)
	if err != nil {
		return model.BrandProfile{}, err
	}

	displayName := entity.CanonicalDisplayName(brand.Name)
	brand.Name = displayName
	deeperRequired := DeeperAnalysisRequired(sc.HeatScore)

	inputs := ProductionInputs{
		Category:         brand.Category,
		HeatScore:        sc.HeatScore,
		RiskScore:        sc.RiskScore,
		AsymmetryIndex:   sc.AsymmetryIndex,
		CapitalIntensity: sc.CapitalIntensity,
		RevenueP50:       sc.RevenueP50,
		Confidence:       sc.Confidence,
	}
	productionSnapshot := BuildProductionSnapshot(inputs)
	productionOptions := BuildProductionOptions(inputs)
	costReduction := BuildCostReduction(inputs)

	ownershipTarget := OwnershipTargetForStructure(sc.SuggestedDealStructure)
	founderAlignment := buildFounderAlignmentThesis(displayName, sc, deeperRequired)
	outreachEmail := buildOutreachEmail(displayName, sc.SuggestedDealStructure, ownershipTarget, sc.CapitalRequiredMUSD)

	memoPreview := fmt.Sprintf(
		"%s shows heat %.1f, asymmetry %.1f, and risk %.1f. Revenue midpoint is $%.1fM with "+
			"capital requirement around $%.1fM. Suggested structure: %s targeting %s. "+
			"Current production model is %s with %.1f%% to %.1f%% cost-down potential from the lead procurement lever.",
		displayName, sc.HeatScore, sc.AsymmetryIndex, sc.RiskScore, sc.RevenueP50, sc.CapitalRequiredMUSD,
		sc.SuggestedDealStructure, ownershipTarget, strings.ToLower(productionSnapshot.CurrentModel),
		costReduction[0].EstimatedSavingsPctLow, costReduction[0].EstimatedSavingsPctHigh)

	return model.BrandProfile{
		Brand:               brand,
		Scorecard:           sc,
		Confidence:          model.ConfidenceEnvelope{Overall: round3(sc.Confidence), Reasons: sc.ConfidenceReasons},
		Evidence:            evidence,
		ProductionSnapshot:  productionSnapshot,
		ProductionOptions:   productionOptions,
		CostReduction:       costReduction,
		Signals:             buildSignalSnapshot(points),
		EngagementBreakdown: buildEngagementBreakdown(sc, points),
		FinancialInference:  buildFinancialInference(sc, brand.Category),
		RiskScan:            buildRiskScan(sc, evidence, productionSnapshot),
		DealStructuring: model.DealStructuringPlan{
			SuggestedEntryStrategy:      sc.SuggestedDealStructure,
			SuggestedOwnershipTargetPct: ownershipTarget,
			EstimatedCapitalMUSD:        round2(sc.CapitalRequiredMUSD),
			FounderAlignmentThesis:      founderAlignment,
			DraftOutreachEmail:          outreachEmail,
			DeeperAnalysisRequired:      deeperRequired,
		},
		MemoPreview: memoPreview,
	}, nil
}

// Timeseries returns all stored observations for a brand.
func Timeseries(ctx context.Context, st *store.Store, brandID string) (model.TimeSeriesResponse, error) {
	points, err := st.ListTimeSeries(ctx, brandID)
	if err != nil {
		return model.TimeSeriesResponse{}, err
	}
	for i := range points {
		points[i].Value = round3(points[i].Value)
	}
	return model.TimeSeriesResponse{BrandID: brandID, Points: points}, nil
}
