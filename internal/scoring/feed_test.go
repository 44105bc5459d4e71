package scoring

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/eidolonhq/eidolon/internal/model"
	"github.com/eidolonhq/eidolon/internal/store"
)

var testWeek = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedBrand(t *testing.T, st *store.Store, b model.Brand, sc model.Scorecard) {
	t.Helper()
	ctx := context.Background()
	if err := st.SaveBrand(ctx, b); err != nil {
		t.Fatal(err)
	}
	sc.BrandID = b.ID
	sc.SnapshotWeek = testWeek
	if sc.SuggestedDealStructure == "" {
		sc.SuggestedDealStructure = "Control acquisition"
	}
	if err := st.UpsertScorecard(ctx, sc); err != nil {
		t.Fatal(err)
	}
}

func TestBuildFeedEmptyStore(t *testing.T) {
	st := newTestStore(t)
	resp, err := BuildFeed(context.Background(), st, model.SortHeat, 50, "")
	if err != nil {
		t.Fatalf("empty store must not error: %v", err)
	}
	if len(resp.Items) != 0 {
		t.Errorf("expected empty feed, got %d items", len(resp.Items))
	}
}

func TestBuildFeedSortModes(t *testing.T) {
	st := newTestStore(t)
	seedBrand(t, st, model.Brand{ID: "brand-a", Name: "Alpha", Category: "Outdoor"},
		model.Scorecard{HeatScore: 90, RiskScore: 20, RevenueP50: 10, AsymmetryIndex: 40, CapitalRequiredMUSD: 5, Confidence: 0.8})
	seedBrand(t, st, model.Brand{ID: "brand-b", Name: "Bravo", Category: "Beauty"},
		model.Scorecard{HeatScore: 50, RiskScore: 80, RevenueP50: 90, AsymmetryIndex: 70, CapitalRequiredMUSD: 40, Confidence: 0.7})
	seedBrand(t, st, model.Brand{ID: "brand-c", Name: "Charlie", Category: "Pet"},
		model.Scorecard{HeatScore: 70, RiskScore: 50, RevenueP50: 50, AsymmetryIndex: 90, CapitalRequiredMUSD: 20, Confidence: 0.6})

	tests := []struct {
		mode  model.SortMode
		first string
	}{
		{model.SortHeat, "Alpha"},
		{model.SortRisk, "Bravo"},
		{model.SortRevenue, "Bravo"},
		{model.SortAsymmetry, "Charlie"},
		{model.SortCapitalRequired, "Bravo"},
	}
	for _, tt := range tests {
		resp, err := BuildFeed(context.Background(), st, tt.mode, 50, "")
		if err != nil {
			t.Fatalf("feed %s: %v", tt.mode, err)
		}
		if len(resp.Items) != 3 {
			t.Fatalf("feed %s: expected 3 items, got %d", tt.mode, len(resp.Items))
		}
		if resp.Items[0].Name != tt.first {
			t.Errorf("feed %s: first = %q, want %q", tt.mode, resp.Items[0].Name, tt.first)
		}
		for i, item := range resp.Items {
			if item.Rank != i+1 {
				t.Errorf("feed %s: rank[%d] = %d", tt.mode, i, item.Rank)
			}
		}
	}
}

func TestBuildFeedDedupesCanonicalNames(t *testing.T) {
	st := newTestStore(t)
	// "Acme 2" canonicalizes to "Acme": only the stronger row survives.
	seedBrand(t, st, model.Brand{ID: "brand-a1", Name: "Acme"},
		model.Scorecard{HeatScore: 80, Confidence: 0.8})
	seedBrand(t, st, model.Brand{ID: "brand-a2", Name: "Acme 2"},
		model.Scorecard{HeatScore: 60, Confidence: 0.8})

	resp, err := BuildFeed(context.Background(), st, model.SortHeat, 50, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("expected deduped feed, got %d items", len(resp.Items))
	}
	if resp.Items[0].BrandID != "brand-a1" {
		t.Errorf("higher-ranked duplicate must win, got %q", resp.Items[0].BrandID)
	}
	if resp.Items[0].Name != "Acme" {
		t.Errorf("name = %q", resp.Items[0].Name)
	}
}

func TestBuildFeedSearchAndLimit(t *testing.T) {
	st := newTestStore(t)
	seedBrand(t, st, model.Brand{ID: "brand-a", Name: "Trailhead Gear", Category: "Outdoor", Region: "US"},
		model.Scorecard{HeatScore: 80, Confidence: 0.8})
	seedBrand(t, st, model.Brand{ID: "brand-b", Name: "Glow Labs", Category: "Beauty", Region: "US"},
		model.Scorecard{HeatScore: 70, Confidence: 0.8})

	resp, err := BuildFeed(context.Background(), st, model.SortHeat, 50, "outdoor")
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Name != "Trailhead Gear" {
		t.Errorf("category token must filter: %+v", resp.Items)
	}

	resp, err = BuildFeed(context.Background(), st, model.SortHeat, 1, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 1 {
		t.Errorf("limit must cap items, got %d", len(resp.Items))
	}
}

func TestDeeperAnalysisRequired(t *testing.T) {
	if DeeperAnalysisRequired(74.9) {
		t.Error("below threshold must not flag")
	}
	if !DeeperAnalysisRequired(75) {
		t.Error("threshold must flag")
	}
}

func TestBuildBrandProfile(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seedBrand(t, st,
		model.Brand{ID: "brand-x", Name: "Trailhead Gear 2", Category: "Outdoor", Region: "US", Website: "https://trailheadgear.com/"},
		model.Scorecard{
			HeatScore: 82, RiskScore: 40, AsymmetryIndex: 74, CapitalIntensity: 45,
			RevenueP10: 8, RevenueP50: 30, RevenueP90: 45,
			Confidence: 0.74, ConfidenceReasons: []string{"a", "b", "c"},
			SuggestedDealStructure: "Minority growth investment", CapitalRequiredMUSD: 6.5,
		})
	if err := st.AddEvidence(ctx, model.EvidenceCitation{
		BrandID: "brand-x", Title: "Surge", URL: "https://news.example.org/x", Source: "news", Reliability: 0.8,
	}); err != nil {
		t.Fatal(err)
	}
	day := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	for i, v := range []float64{60, 70, 82} {
		if err := st.UpsertTimeSeriesPoint(ctx, model.TimeSeriesPoint{
			BrandID: "brand-x", Metric: "heat", ObservedAt: day.AddDate(0, 0, i), Value: v, Source: "searxng", Reliability: 0.8,
		}); err != nil {
			t.Fatal(err)
		}
	}

	profile, err := BuildBrandProfile(ctx, st, "brand-x")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.Brand.Name != "Trailhead Gear" {
		t.Errorf("display name must canonicalize, got %q", profile.Brand.Name)
	}
	if profile.Confidence.Overall != 0.74 || len(profile.Confidence.Reasons) != 3 {
		t.Errorf("confidence envelope: %+v", profile.Confidence)
	}
	if len(profile.Evidence) != 1 {
		t.Errorf("evidence rows = %d", len(profile.Evidence))
	}
	if len(profile.ProductionOptions) != 4 {
		t.Errorf("production options = %d", len(profile.ProductionOptions))
	}
	if len(profile.CostReduction) != 3 {
		t.Errorf("cost reduction levers = %d", len(profile.CostReduction))
	}
	if got := profile.DealStructuring.SuggestedOwnershipTargetPct; got != OwnershipTargetForStructure("Minority growth investment") {
		t.Errorf("ownership target = %q", got)
	}
	if !profile.DealStructuring.DeeperAnalysisRequired {
		t.Error("heat 82 must require deeper analysis")
	}
	if !strings.Contains(profile.DealStructuring.DraftOutreachEmail, "Trailhead Gear") {
		t.Error("outreach email must name the brand")
	}
	if !strings.Contains(profile.MemoPreview, "Trailhead Gear") ||
		!strings.Contains(profile.MemoPreview, "Minority growth investment") {
		t.Errorf("memo preview = %q", profile.MemoPreview)
	}
	if len(profile.RiskScan.KeyRisks) != 4 {
		t.Errorf("risk scan key risks = %v", profile.RiskScan.KeyRisks)
	}
	if len(profile.FinancialInference.InferenceNotes) != 3 {
		t.Errorf("inference notes = %v", profile.FinancialInference.InferenceNotes)
	}
	if len(profile.Signals.SocialSignals) == 0 || len(profile.Signals.CommerceSignals) == 0 {
		t.Error("signal groups must be populated")
	}
}

func TestTimeseriesRoundsValues(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	if err := st.SaveBrand(ctx, model.Brand{ID: "brand-x", Name: "X"}); err != nil {
		t.Fatal(err)
	}
	if err := st.UpsertTimeSeriesPoint(ctx, model.TimeSeriesPoint{
		BrandID: "brand-x", Metric: "heat", ObservedAt: time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
		Value: 1.23456, Source: "searxng", Reliability: 0.8,
	}); err != nil {
		t.Fatal(err)
	}

	resp, err := Timeseries(ctx, st, "brand-x")
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Points) != 1 || resp.Points[0].Value != 1.235 {
		t.Errorf("points = %+v", resp.Points)
	}
}

func TestAOVFor(t *testing.T) {
	if AOVFor("Beauty") != 52 {
		t.Error("category prior mismatch")
	}
	if AOVFor("Unmapped") != 60 {
		t.Error("default AOV must be 60")
	}
}

func TestBaseSavingsBounds(t *testing.T) {
	low := baseSavings(ProductionInputs{})
	high := baseSavings(ProductionInputs{CapitalIntensity: 100, RiskScore: 100})
	if low != 2.0 {
		t.Errorf("floor = %v", low)
	}
	if high != 14.0 {
		t.Errorf("cap = %v", high)
	}
}

func TestProductionSnapshotModels(t *testing.T) {
	tests := []struct {
		capital float64
		want    string
	}{
		{20, "Asset-light contract manufacturing"},
		{50, "Hybrid model (contract manufacturing plus controlled finishing/assembly)"},
		{80, "Capex-heavy dedicated line or in-house production"},
	}
	for _, tt := range tests {
		snap := BuildProductionSnapshot(ProductionInputs{CapitalIntensity: tt.capital, Confidence: 0.7})
		if snap.CurrentModel != tt.want {
			t.Errorf("capital %v: model = %q", tt.capital, snap.CurrentModel)
		}
		if len(snap.Bottlenecks) == 0 {
			t.Error("bottlenecks must never be empty")
		}
	}
}
