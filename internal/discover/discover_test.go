package discover

import (
	"context"
	"strings"
	"testing"

	"github.com/eidolonhq/eidolon/internal/model"
)

type fakeSearcher struct {
	byQuerySubstring map[string][]model.SearchResult
	queries          []string
}

func (f *fakeSearcher) Search(_ context.Context, query string, limit int) (string, []model.SearchResult) {
	f.queries = append(f.queries, query)
	for substr, results := range f.byQuerySubstring {
		if strings.Contains(query, substr) {
			if len(results) > limit {
				results = results[:limit]
			}
			return "searxng", results
		}
	}
	return "none", nil
}

func TestDeriveCompanyName(t *testing.T) {
	tests := []struct {
		title string
		url   string
		want  string
	}{
		{"Trailhead Gear - Outdoor Apparel", "https://trailheadgear.com/", "Trailhead Gear"},
		// Listicle title on a non-publisher host falls back to the domain.
		{"Best Outdoor Brands 2026", "https://gearhub.example/best", "Gearhub"},
		// Listicle title on a publisher host keeps the guess.
		{"Top Consumer Startups", "https://forbes.com/top-startups", "Top Consumer Startups"},
		// Empty title is generic, so the domain wins.
		{"", "https://gearhub.example/", "Gearhub"},
	}
	for _, tt := range tests {
		if got := deriveCompanyName(tt.title, tt.url); got != tt.want {
			t.Errorf("deriveCompanyName(%q, %q) = %q, want %q", tt.title, tt.url, got, tt.want)
		}
	}
}

func TestSourceWeight(t *testing.T) {
	tests := []struct {
		source string
		want   float64
	}{
		{"reddit", 0.72},
		{"news wire", 0.78},
		{"public_registry", 0.84},
		{"unknown-engine", 0.58},
	}
	for _, tt := range tests {
		if got := sourceWeight(tt.source); got != tt.want {
			t.Errorf("sourceWeight(%q) = %v, want %v", tt.source, got, tt.want)
		}
	}
}

func TestEstimatedRevenueBand(t *testing.T) {
	tests := []struct {
		fit, momentum float64
		want          string
	}{
		{40, 40, "$5M-$20M"},
		{55, 55, "$20M-$60M"},
		{70, 70, "$60M-$150M"},
		{90, 90, "$150M-$350M"},
	}
	for _, tt := range tests {
		if got := estimatedRevenueBand(tt.fit, tt.momentum); got != tt.want {
			t.Errorf("estimatedRevenueBand(%v, %v) = %q, want %q", tt.fit, tt.momentum, got, tt.want)
		}
	}
}

func TestDealStructure(t *testing.T) {
	tests := []struct {
		fit, momentum, risk, asym float64
		want                      string
	}{
		{60, 60, 40, 80, "Minority growth investment"},
		{60, 60, 70, 50, "Licensing structure"},
		{75, 70, 50, 60, "IP partnership"},
		{60, 60, 55, 68, "Debt plus earnout"},
		{50, 50, 50, 50, "Control acquisition"},
	}
	for _, tt := range tests {
		if got := dealStructure(tt.fit, tt.momentum, tt.risk, tt.asym); got != tt.want {
			t.Errorf("dealStructure(%v,%v,%v,%v) = %q, want %q", tt.fit, tt.momentum, tt.risk, tt.asym, got, tt.want)
		}
	}
}

func TestScoreCompanyBounds(t *testing.T) {
	report := scoreCompany(model.DiscoveryCandidate{
		NameGuess: "Trailhead Gear",
		Title:     "Trailhead Gear surges on viral outdoor apparel growth",
		URL:       "https://trailheadgear.com/",
		Snippet:   "expansion launch partnership",
		Source:    "news",
		Query:     "emerging outdoor apparel consumer brand",
	}, "outdoor apparel", "")

	for _, check := range []struct {
		name      string
		value     float64
		low, high float64
	}{
		{"fit", report.FitScore, 5, 99},
		{"momentum", report.MomentumScore, 5, 99},
		{"risk", report.RiskScore, 5, 98},
		{"asymmetry", report.AsymmetryScore, 5, 98},
		{"confidence", report.Confidence, 0.3, 0.94},
	} {
		if check.value < check.low || check.value > check.high {
			t.Errorf("%s = %v, want within [%v, %v]", check.name, check.value, check.low, check.high)
		}
	}
	if report.EstimatedRevenueBand == "" || report.SuggestedDealStructure == "" {
		t.Error("report must carry revenue band and structure")
	}
	if len(report.KeyRisks) != 3 || len(report.DiligenceQuestions) != 3 || len(report.ExecutionPlan306090) != 3 {
		t.Error("report narrative sections incomplete")
	}
}

func TestScoreCompanyMomentumAndRisk(t *testing.T) {
	base := model.DiscoveryCandidate{
		NameGuess: "Acme",
		Title:     "Acme",
		URL:       "https://acme.example/",
		Source:    "bing",
		Query:     "q",
	}

	quiet := scoreCompany(base, "apparel", "")

	hot := base
	hot.Snippet = "viral growth surge expansion launch"
	if got := scoreCompany(hot, "apparel", ""); got.MomentumScore <= quiet.MomentumScore {
		t.Errorf("momentum terms must raise momentum: %v <= %v", got.MomentumScore, quiet.MomentumScore)
	}

	risky := base
	risky.Snippet = "lawsuit recall investigation"
	if got := scoreCompany(risky, "apparel", ""); got.RiskScore <= quiet.RiskScore {
		t.Errorf("risk terms must raise risk: %v <= %v", got.RiskScore, quiet.RiskScore)
	}
}

func TestDiscoverEmptyIndustry(t *testing.T) {
	if _, err := Discover(context.Background(), &fakeSearcher{}, "   ", "", 10); err == nil {
		t.Fatal("blank industry must be rejected")
	}
}

func TestDiscoverDedupesAndRanks(t *testing.T) {
	searcher := &fakeSearcher{byQuerySubstring: map[string][]model.SearchResult{
		"emerging": {
			{Title: "Trailhead Gear - Outdoor Apparel Brand", URL: "https://trailheadgear.com/", Snippet: "viral growth", Source: "news"},
			// Same host and title arrives again from a later engine page.
			{Title: "Trailhead Gear - Outdoor Apparel Brand", URL: "https://trailheadgear.com/about", Snippet: "", Source: "bing"},
			{Title: "Glow Labs - Clean Skincare", URL: "https://glowlabs.co/", Snippet: "lawsuit recall", Source: "searxng"},
		},
		"d2c": {
			// Same entity, different title wording: entity key collapses it.
			{Title: "Trailhead Gear Inc - Official", URL: "https://trailheadgear.com/shop", Snippet: "", Source: "duckduckgo"},
		},
	}}

	resp, err := Discover(context.Background(), searcher, "outdoor apparel", "", 12)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(searcher.queries) != 4 {
		t.Fatalf("expected 4 query lanes, got %d", len(searcher.queries))
	}
	if len(resp.ProviderAttempts) != 4 {
		t.Errorf("provider attempts = %v", resp.ProviderAttempts)
	}

	if len(resp.Items) != 2 {
		t.Fatalf("expected 2 unique entities, got %d: %+v", len(resp.Items), resp.Items)
	}

	reports := resp.Report.CompanyReports
	if len(reports) != 2 {
		t.Fatalf("expected 2 company reports, got %d", len(reports))
	}
	// Industry-aligned momentum beats the risk-laden off-industry candidate.
	if reports[0].Name != "Trailhead Gear" {
		t.Errorf("expected Trailhead Gear ranked first, got %q", reports[0].Name)
	}
	if reports[0].FitScore < reports[1].FitScore {
		t.Error("reports must be sorted by fit descending")
	}
	if len(resp.Report.TopSignals) != 3 {
		t.Errorf("top signals = %v", resp.Report.TopSignals)
	}
	if !strings.Contains(resp.Report.Narrative, "2 unique candidate companies") {
		t.Errorf("narrative = %q", resp.Report.Narrative)
	}
}

func TestDiscoverNoResults(t *testing.T) {
	resp, err := Discover(context.Background(), &fakeSearcher{}, "apparel", "US", 8)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(resp.Items) != 0 {
		t.Errorf("expected no items, got %d", len(resp.Items))
	}
	if len(resp.Report.CompanyReports) != 0 {
		t.Error("expected no company reports")
	}
	if !strings.Contains(resp.Report.Narrative, "No high-confidence companies") {
		t.Errorf("narrative = %q", resp.Report.Narrative)
	}
	if resp.Report.TopSignals[0] != "No strong candidate signals yet." {
		t.Errorf("top signals = %v", resp.Report.TopSignals)
	}
}
