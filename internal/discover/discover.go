// Package discover runs ad-hoc industry scouting: a few templated queries
// through the source router, entity-deduplicated candidates, and heuristic
// company reports. Results are session-scoped and never persisted.
package discover

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/eidolonhq/eidolon/internal/entity"
	"github.com/eidolonhq/eidolon/internal/model"
	"github.com/eidolonhq/eidolon/internal/search"
)

var (
	spaceRe      = regexp.MustCompile(`\s+`)
	titleSplitRe = regexp.MustCompile(`\s[-|:]\s`)
	wordRe       = regexp.MustCompile(`[a-z0-9]+`)
)

var sourceReliability = map[string]float64{
	"reddit":          0.72,
	"news":            0.78,
	"public_registry": 0.84,
	"searxng":         0.62,
	"google":          0.68,
	"bing":            0.66,
	"duckduckgo":      0.64,
}

var momentumTerms = []string{
	"growth", "surge", "expansion", "viral", "record", "raised",
	"launch", "partnership", "opening", "scale", "scaled", "momentum",
}

var riskTerms = []string{
	"lawsuit", "recall", "decline", "bankrupt", "shutdown", "layoff",
	"controversy", "investigation", "ban", "fraud", "default", "warning",
}

var publisherHostHints = []string{
	"forbes", "techcrunch", "wikipedia", "reddit", "youtube", "linkedin",
	"substack", "bloomberg", "fortune", "medium", "nytimes", "wsj",
	"businessinsider", "theverge", "axios",
}

func cleanText(value string) string {
	return spaceRe.ReplaceAllString(strings.TrimSpace(value), " ")
}

// tokenize lowercases and keeps alphanumeric runs of three or more chars.
func tokenize(value string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range wordRe.FindAllString(strings.ToLower(value), -1) {
		if len(tok) >= 3 {
			tokens[tok] = struct{}{}
		}
	}
	return tokens
}

func clamp(value, low, high float64) float64 {
	return math.Max(low, math.Min(high, value))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

func sourceWeight(source string) float64 {
	lowered := strings.ToLower(source)
	for key, value := range sourceReliability {
		if strings.Contains(lowered, key) {
			return value
		}
	}
	return 0.58
}

func isPublisherURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Host)
	for _, hint := range publisherHostHints {
		if strings.Contains(host, hint) {
			return true
		}
	}
	return false
}

// nameGuessFromTitle takes the head of the title before the first separator,
// capped at seven words.
func nameGuessFromTitle(title string) string {
	cleaned := cleanText(title)
	if cleaned == "" {
		return "Unknown"
	}
	guess := titleSplitRe.Split(cleaned, -1)[0]
	words := strings.Fields(guess)
	if len(words) > 7 {
		words = words[:7]
	}
	return strings.Join(words, " ")
}

// deriveCompanyName prefers the title head, falling back to a domain-derived
// name when the title reads like a listicle and the host is not a publisher.
func deriveCompanyName(title, rawURL string) string {
	guess := nameGuessFromTitle(title)
	normGuess := entity.NormalizeCompanyName(guess)

	if entity.IsGenericName(normGuess) {
		domainName := entity.TitleCaseWords(entity.DomainLabelFromURL(rawURL))
		if domainName != "" && !isPublisherURL(rawURL) {
			return domainName
		}
	}
	return guess
}

func queryPlan(industry, region string) []string {
	geo := ""
	if region != "" {
		geo = " " + region
	}
	return []string{
		"emerging " + industry + " consumer brand" + geo,
		industry + " d2c brand growth" + geo,
		industry + " startup retail expansion" + geo,
		industry + " founder-led company momentum" + geo,
	}
}

func estimatedRevenueBand(fit, momentum float64) string {
	composite := fit*0.55 + momentum*0.45
	switch {
	case composite < 45:
		return "$5M-$20M"
	case composite < 60:
		return "$20M-$60M"
	case composite < 75:
		return "$60M-$150M"
	default:
		return "$150M-$350M"
	}
}

func dealStructure(fit, momentum, risk, asymmetry float64) string {
	switch {
	case asymmetry >= 72 && risk <= 45:
		return "Minority growth investment"
	case risk >= 68:
		return "Licensing structure"
	case fit >= 70 && momentum >= 65:
		return "IP partnership"
	case asymmetry >= 66 && risk < 60:
		return "Debt plus earnout"
	default:
		return "Control acquisition"
	}
}

func productionCostDownAngle(industry string) string {
	i := strings.ToLower(industry)
	switch {
	case strings.Contains(i, "beauty"), strings.Contains(i, "skin"),
		strings.Contains(i, "cosmetic"), strings.Contains(i, "personal care"):
		return "Contract fill-finish rebid plus packaging simplification to compress COGS."
	case strings.Contains(i, "food"), strings.Contains(i, "beverage"), strings.Contains(i, "snack"):
		return "Co-packer lane optimization and ingredient contract rebid for procurement savings."
	case strings.Contains(i, "apparel"), strings.Contains(i, "fashion"), strings.Contains(i, "outdoor"):
		return "Supplier portfolio rebalance with regionalized finishing to reduce material and freight pressure."
	case strings.Contains(i, "home"), strings.Contains(i, "furniture"):
		return "SKU architecture cleanup and 3PL lane optimization to lower landed cost volatility."
	case strings.Contains(i, "tech"), strings.Contains(i, "electronics"):
		return "OEM repricing and component dual-sourcing to lower unit cost risk."
	default:
		return "Strategic contract rebid and regional fulfillment optimization as primary cost-down lever."
	}
}

func countTokenHits(tokens map[string]struct{}, terms []string) int {
	hits := 0
	for _, term := range terms {
		if _, ok := tokens[term]; ok {
			hits++
		}
	}
	return hits
}

func tokenOverlap(text, reference map[string]struct{}) float64 {
	if len(reference) == 0 {
		return 0
	}
	overlap := 0
	for tok := range reference {
		if _, ok := text[tok]; ok {
			overlap++
		}
	}
	return float64(overlap) / float64(len(reference))
}

func scoreCompany(candidate model.DiscoveryCandidate, industry, region string) model.DiscoveryCompanyReport {
	companyName := candidate.NameGuess
	text := strings.ToLower(cleanText(companyName + " " + candidate.Title + " " + candidate.Snippet + " " + candidate.Query))
	textTokens := tokenize(text)
	industryTokens := tokenize(industry)
	regionTokens := tokenize(region)

	industryOverlap := tokenOverlap(textTokens, industryTokens)
	regionOverlap := tokenOverlap(textTokens, regionTokens)

	weight := sourceWeight(candidate.Source)
	momentumHits := float64(countTokenHits(textTokens, momentumTerms))
	riskHits := float64(countTokenHits(textTokens, riskTerms))

	fitScore := clamp(42+industryOverlap*42+regionOverlap*10+weight*10, 5, 99)
	momentumScore := clamp(34+momentumHits*8+weight*22, 5, 99)
	riskScore := clamp(20+riskHits*15+(1-weight)*18, 5, 98)
	asymmetryScore := clamp(fitScore*0.5+momentumScore*0.35-riskScore*0.23+19, 5, 98)

	confidence := clamp(0.42+weight*0.35+fitScore/260+momentumScore/320-riskScore/700, 0.3, 0.94)

	structure := dealStructure(fitScore, momentumScore, riskScore, asymmetryScore)

	return model.DiscoveryCompanyReport{
		Name:                    companyName,
		SourceURL:               candidate.URL,
		Source:                  candidate.Source,
		FitScore:                round2(fitScore),
		MomentumScore:           round2(momentumScore),
		RiskScore:               round2(riskScore),
		AsymmetryScore:          round2(asymmetryScore),
		EstimatedRevenueBand:    estimatedRevenueBand(fitScore, momentumScore),
		SuggestedDealStructure:  structure,
		ProductionCostDownAngle: productionCostDownAngle(industry),
		OpportunityThesis: fmt.Sprintf(
			"%s shows fit %.1f and momentum %.1f in %s signals. Asymmetry is estimated at %.1f with risk %.1f; best initial structure is %s.",
			companyName, fitScore, momentumScore, strings.ToLower(industry), asymmetryScore, riskScore, strings.ToLower(structure)),
		NextStep: "Run full dossier pull: engagement breakdown, financial inference, risk scan, and founder outreach draft before outreach.",
		KeyRisks: []string{
			fmt.Sprintf("Signal-derived risk score sits at %.1f; validate legal/IP perimeter before term-sheet motion.", riskScore),
			"Platform/channel concentration may amplify volatility; map channel mix and dependency caps.",
			"Supplier concentration and lead-time risk should be stress-tested under demand acceleration.",
		},
		DiligenceQuestions: []string{
			"What is the verified 12-month net revenue and gross margin trend by channel?",
			"Which suppliers represent >20% of COGS and what alternate capacity exists?",
			"What founder priorities are non-negotiable in ownership and governance design?",
		},
		CostDownActions: []string{
			"Run strategic contract rebid across top spend categories and key manufacturing nodes.",
			"Regionalize fulfillment lanes to reduce freight volatility and shorten lead times.",
			"Simplify SKU and packaging architecture to reduce MOQ drag and conversion complexity.",
		},
		ExecutionPlan306090: []string{
			"30d: build COGS baseline, supplier map, and channel economics view.",
			"60d: launch targeted RFPs, pilot dual-source options, and validate savings assumptions.",
			"90d: lock negotiated terms, rollout winning lanes, and track realized savings versus plan.",
		},
		Confidence: round3(confidence),
	}
}

func buildTopSignals(reports []model.DiscoveryCompanyReport, providerAttempts []string) []string {
	if len(reports) == 0 {
		return []string{"No strong candidate signals yet."}
	}

	successful := 0
	for _, attempt := range providerAttempts {
		if !strings.HasSuffix(attempt, "=> none") {
			successful++
		}
	}

	top := reports[0]
	return []string{
		fmt.Sprintf("Successful query lanes: %d/%d.", successful, len(providerAttempts)),
		fmt.Sprintf("Top candidate: %s (fit %.1f, asymmetry %.1f).", top.Name, top.FitScore, top.AsymmetryScore),
		fmt.Sprintf("Median fit %.1f, median risk %.1f, median asymmetry %.1f.",
			medianOf(reports, func(r model.DiscoveryCompanyReport) float64 { return r.FitScore }),
			medianOf(reports, func(r model.DiscoveryCompanyReport) float64 { return r.RiskScore }),
			medianOf(reports, func(r model.DiscoveryCompanyReport) float64 { return r.AsymmetryScore })),
	}
}

func medianOf(reports []model.DiscoveryCompanyReport, value func(model.DiscoveryCompanyReport) float64) float64 {
	values := make([]float64, len(reports))
	for i, r := range reports {
		values[i] = value(r)
	}
	sort.Float64s(values)
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}

func buildNarrative(industry, region string, reports []model.DiscoveryCompanyReport) string {
	geo := ""
	if region != "" {
		geo = " in " + region
	}
	if len(reports) == 0 {
		return fmt.Sprintf("No high-confidence companies found for %s%s. Try broader terms or remove region filter.", industry, geo)
	}

	top := reports
	if len(top) > 3 {
		top = top[:3]
	}
	names := make([]string, len(top))
	for i, r := range top {
		names[i] = r.Name
	}
	return fmt.Sprintf(
		"Discovery pass for %s%s surfaced %d unique candidate companies. Highest-priority names are %s. "+
			"Focus first diligence on production cost-down leverage and ownership-fit alignment.",
		industry, geo, len(reports), strings.Join(names, ", "))
}

// Discover runs one scouting pass for an industry and optional region.
func Discover(ctx context.Context, searcher search.Searcher, industry, region string, limit int) (model.DiscoverResponse, error) {
	industry = cleanText(industry)
	if industry == "" {
		return model.DiscoverResponse{}, fmt.Errorf("industry must not be empty")
	}
	region = cleanText(region)
	if limit < 1 {
		limit = 12
	}

	queries := queryPlan(industry, region)
	perQuery := (limit + len(queries) - 1) / len(queries)
	if perQuery < 3 {
		perQuery = 3
	}
	if perQuery > 10 {
		perQuery = 10
	}

	var providerAttempts []string
	var rawRows []model.DiscoveryCandidate
	seenKeys := make(map[string]struct{})

collect:
	for _, query := range queries {
		provider, results := searcher.Search(ctx, query, perQuery)
		providerAttempts = append(providerAttempts, query+" => "+provider)

		for _, result := range results {
			resultURL := cleanText(result.URL)
			title := cleanText(result.Title)
			if resultURL == "" || title == "" {
				continue
			}

			parsed, err := url.Parse(resultURL)
			if err != nil {
				continue
			}
			dedupeKey := strings.ToLower(parsed.Host) + "|" + strings.ToLower(title)
			if _, dup := seenKeys[dedupeKey]; dup {
				continue
			}
			seenKeys[dedupeKey] = struct{}{}

			rawRows = append(rawRows, model.DiscoveryCandidate{
				NameGuess: deriveCompanyName(title, resultURL),
				Title:     title,
				URL:       resultURL,
				Snippet:   cleanText(result.Snippet),
				Source:    result.Source,
				Query:     query,
			})
			if len(rawRows) >= limit {
				break collect
			}
		}
	}

	// Entity-level dedupe: listicle titles from the same publisher must not
	// merge distinct companies, and one company seen twice keeps one row.
	var uniqueRows []model.DiscoveryCandidate
	seenEntities := make(map[string]struct{})
	for _, row := range rawRows {
		key := entity.Key(row.NameGuess, row.URL)
		if _, dup := seenEntities[key]; dup {
			continue
		}
		seenEntities[key] = struct{}{}
		uniqueRows = append(uniqueRows, row)
	}

	reports := make([]model.DiscoveryCompanyReport, 0, len(uniqueRows))
	for _, row := range uniqueRows {
		reports = append(reports, scoreCompany(row, industry, region))
	}
	sort.SliceStable(reports, func(i, j int) bool {
		if reports[i].FitScore != reports[j].FitScore {
			return reports[i].FitScore > reports[j].FitScore
		}
		if reports[i].AsymmetryScore != reports[j].AsymmetryScore {
			return reports[i].AsymmetryScore > reports[j].AsymmetryScore
		}
		return reports[i].RiskScore < reports[j].RiskScore
	})

	reportCap := limit
	if reportCap > 10 {
		reportCap = 10
	}
	if reportCap < 1 {
		reportCap = 1
	}
	cappedReports := reports
	if len(cappedReports) > reportCap {
		cappedReports = cappedReports[:reportCap]
	}

	items := uniqueRows
	if len(items) > limit {
		items = items[:limit]
	}

	return model.DiscoverResponse{
		GeneratedAt:      time.Now().UTC(),
		Industry:         industry,
		Region:           region,
		ProviderAttempts: providerAttempts,
		Items:            items,
		Report: model.IndustryReport{
			Industry:       industry,
			Region:         region,
			Narrative:      buildNarrative(industry, region, reports),
			TopSignals:     buildTopSignals(reports, providerAttempts),
			CompanyReports: cappedReports,
		},
	}, nil
}
