// Package llm is the optional grounded analyst layer. It answers questions
// about a brand profile through an OpenAI-compatible chat endpoint, with the
// computed profile as the only allowed context. Answers never feed back into
// scoring, and every path degrades to a deterministic profile-grounded
// response when the endpoint is unavailable or misconfigured.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/eidolonhq/eidolon/internal/model"
)

// Analysis modes. Anything else falls back to plain analysis guidance.
const (
	ModeAnalysis       = "analysis"
	ModeMemo           = "memo"
	ModeDiligence      = "diligence"
	ModeProductionPlan = "production_plan"
)

// Provider is one configured chat-completion backend.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Analyze answers one question about a brand profile. The profile is the
	// strict grounding context; a nil profile yields universe-level guidance.
	Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error)

	// IsAvailable checks whether the backend is reachable and configured.
	IsAvailable(ctx context.Context) bool
}

// AnalyzeRequest is the input for one analyst call.
type AnalyzeRequest struct {
	// Profile is the grounding context. May be nil for universe questions.
	Profile *model.BrandProfile

	// Mode selects the output shape: analysis, memo, diligence, production_plan.
	Mode string

	// Question is the user's free-form question.
	Question string

	// Model overrides the configured model for this call.
	Model string

	// MaxTokens limits the response length.
	MaxTokens int
}

// AnalyzeResponse is the analyst's answer with its supporting citations.
type AnalyzeResponse struct {
	Answer     string
	Confidence float64
	Citations  []model.EvidenceCitation
	Model      string
	TokensUsed int
}

const systemPrompt = "You are Eidolon's diligence analyst. Return strict JSON with keys: " +
	"answer (string), confidence (0..1), citations (array of objects: title,url,source,snippet). " +
	"Always include at least 2 citations if available from provided evidence. " +
	"Every answer must stay grounded in the deal-flow workflow and explicitly include production options " +
	"plus cost-reduction opportunities when relevant. " +
	"Prioritize acceleration/rate-of-change interpretation over absolute scale when signals conflict. " +
	"When a brand is selected, include a clear view on ownership target, capital required, and outreach posture."

const workflowAnchor = "Deal-flow workflow anchor:\n" +
	"Cultural signal -> Engagement analysis -> Financial inference -> Risk scan -> Structured outreach\n\n" +
	"Outputs to include when relevant:\n" +
	"- Heat score (0-100), revenue range proxy, capital intensity proxy, risk score (0-100), asymmetry index\n" +
	"- Suggested deal structure, ownership target, capital required\n" +
	"- Production/cost-down hypotheses and a verification plan\n\n" +
	"Rule: if evidence is insufficient, say so and list what to verify next. Never invent facts."

func modeGuidance(mode string) string {
	switch mode {
	case ModeProductionPlan:
		return "Mode is production_plan. Build an actionable production-cost plan with sections: " +
			"Current production model; Top 3 cheaper production options; 30/60/90-day execution plan; " +
			"Expected savings range; key risks and mitigations."
	case ModeMemo:
		return "Mode is memo. Deliver concise investment memo style output with thesis, downside, and structure."
	case ModeDiligence:
		return "Mode is diligence. Emphasize unknowns, verification steps, and confidence caveats."
	default:
		return "Mode is analysis. Provide clear synthesis with practical next actions."
	}
}

// buildContext flattens the profile into the grounding block sent to the
// model. Only computed values appear here; the model sees nothing else.
func buildContext(p *model.BrandProfile) string {
	if p == nil {
		return ""
	}

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line("Brand: %s", p.Brand.Name)
	line("Category: %s", p.Brand.Category)
	line("Region: %s", p.Brand.Region)
	line("Heat: %.1f", p.Scorecard.HeatScore)
	line("Risk: %.1f", p.Scorecard.RiskScore)
	line("Asymmetry: %.1f", p.Scorecard.AsymmetryIndex)
	line("Revenue P50: %.1f", p.Scorecard.RevenueP50)
	line("Capital required: %.1f", p.Scorecard.CapitalRequiredMUSD)
	line("Deeper analysis required: %t", p.DealStructuring.DeeperAnalysisRequired)
	line("Production model estimate: %s", p.ProductionSnapshot.CurrentModel)
	line("Unit economics pressure: %s", p.ProductionSnapshot.UnitEconomicsPressure)

	line("Production bottlenecks:")
	for _, bottleneck := range p.ProductionSnapshot.Bottlenecks {
		line("- %s", bottleneck)
	}

	line("Production options:")
	for _, opt := range p.ProductionOptions {
		line("- %s | mode=%s | savings=%.1f%% | time=%d months | risk=%s",
			opt.OptionName, opt.Mode, opt.EstimatedSavingsPct, opt.TimeToImpactMonths, opt.ExecutionRisk)
	}

	line("Cost-down opportunities:")
	for _, opp := range p.CostReduction {
		line("- %s | lever=%s | savings=%.1f-%.1f%%",
			opp.Title, opp.Lever, opp.EstimatedSavingsPctLow, opp.EstimatedSavingsPctHigh)
	}

	line("Data collection layer snapshot (current | delta | source):")
	writeSignals := func(label string, signals []model.SignalPoint) {
		line("%s:", label)
		for _, s := range signals {
			line("- %s | current=%.3f | delta=%.3f | source=%s", s.Metric, s.Current, s.Delta, s.Source)
		}
	}
	writeSignals("Social signals", p.Signals.SocialSignals)
	writeSignals("Commerce signals", p.Signals.CommerceSignals)
	writeSignals("Search + cultural signals", p.Signals.SearchCulturalSignals)
	line("Acceleration priority note: %s", p.Signals.AccelerationNote)

	line("Engagement breakdown:")
	line("- comments_to_likes=%.3f | repeat_density=%.3f | sentiment=%.1f",
		p.EngagementBreakdown.CommentsToLikesRatio, p.EngagementBreakdown.RepeatCommenterDensity,
		p.EngagementBreakdown.SentimentScore)

	line("Financial inference:")
	line("- traffic_kmo=%.1f | conversion_pct=%.2f | gross_margin_pct=%.1f | cac=%.1f | ltv=%.1f",
		p.FinancialInference.TrafficEstimateKMo, p.FinancialInference.ConversionAssumptionPct,
		p.FinancialInference.GrossMarginPct, p.FinancialInference.CACProxyUSD, p.FinancialInference.LTVProxyUSD)
	line("Financial scenario flags:")
	for _, flag := range p.FinancialInference.ScenarioFlags {
		line("- %s", flag)
	}

	line("Risk scan summary:")
	line("- trademark=%s | registry_verified=%t | platform_dependency=%s | algorithm_exposure=%s | "+
		"supplier_concentration=%s | founder_dependency_score=%.1f",
		p.RiskScan.TrademarkStrength, p.RiskScan.CorporateRegistryVerified,
		p.RiskScan.PlatformDependencyRisk, p.RiskScan.AlgorithmExposureRisk,
		p.RiskScan.SupplierConcentrationRisk, p.RiskScan.FounderDependencyScore)

	line("Deal structuring:")
	line("- strategy=%s | ownership_target=%s | capital_required=%.1f",
		p.DealStructuring.SuggestedEntryStrategy, p.DealStructuring.SuggestedOwnershipTargetPct,
		p.DealStructuring.EstimatedCapitalMUSD)
	line("Founder alignment thesis:")
	line("- %s", p.DealStructuring.FounderAlignmentThesis)

	line("Evidence:")
	for i, ev := range p.Evidence {
		if i >= 10 {
			break
		}
		line("- %s | %s | %s", ev.Title, ev.URL, ev.Source)
	}

	return b.String()
}

// groundingDenialTriggers mark answers where the model pretends it has no
// context despite being handed a full profile.
var groundingDenialTriggers = []string{
	"cannot provide",
	"no data",
	"insufficient data",
	"only contains information about",
	"we would need",
	"run a fresh analysis",
	"not enough information",
}

func shouldForceGrounding(answer string) bool {
	lowered := strings.ToLower(answer)
	for _, trigger := range groundingDenialTriggers {
		if strings.Contains(lowered, trigger) {
			return true
		}
	}
	return false
}

// groundedAnswer composes a deterministic answer from the computed profile.
// Used whenever the backend is down, misconfigured, or denies its context.
func groundedAnswer(p *model.BrandProfile, mode string) string {
	topOption := p.ProductionOptions[0]
	topCost := p.CostReduction[0]

	if mode == ModeProductionPlan {
		return fmt.Sprintf(
			"%s production cost-down plan:\n"+
				"Current model: %s.\n"+
				"Top cheaper options: (1) %s, (2) %s, (3) %s.\n"+
				"30/60/90 plan: 30d baseline unit economics + vendor map, "+
				"60d execute targeted rebids/pilots, "+
				"90d renegotiate and scale winning production mix.\n"+
				"Expected savings: %.1f%% to %.1f%% with %s execution risk.",
			p.Brand.Name, p.ProductionSnapshot.CurrentModel,
			p.ProductionOptions[0].OptionName, p.ProductionOptions[1].OptionName, p.ProductionOptions[2].OptionName,
			topCost.EstimatedSavingsPctLow, topCost.EstimatedSavingsPctHigh, topOption.ExecutionRisk)
	}

	return fmt.Sprintf(
		"%s is currently at Heat %.1f, Risk %.1f, Asymmetry %.1f, Revenue P50 $%.1fM. "+
			"Most practical cost-down path is %s with %.1f%% estimated savings and %d month time-to-impact. "+
			"Deal structure baseline: %s at %s ownership target.",
		p.Brand.Name, p.Scorecard.HeatScore, p.Scorecard.RiskScore, p.Scorecard.AsymmetryIndex,
		p.Scorecard.RevenueP50, topOption.OptionName, topOption.EstimatedSavingsPct, topOption.TimeToImpactMonths,
		p.DealStructuring.SuggestedEntryStrategy, p.DealStructuring.SuggestedOwnershipTargetPct)
}

// Fallback builds the no-backend response. Never errors.
func Fallback(p *model.BrandProfile, mode string) *AnalyzeResponse {
	if p == nil {
		return &AnalyzeResponse{
			Answer: "AI is not configured and no brand context is available. " +
				"Select a brand from the feed to get a deterministic, grounded summary, " +
				"or configure an LLM provider to enable analysis.",
			Confidence: 0.2,
			Model:      "fallback-no-context",
		}
	}
	citations := p.Evidence
	if len(citations) > 6 {
		citations = citations[:6]
	}
	return &AnalyzeResponse{
		Answer:     groundedAnswer(p, mode),
		Confidence: 0.72,
		Citations:  citations,
		Model:      "fallback-profile-grounded",
	}
}
