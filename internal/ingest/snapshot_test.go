package ingest

import (
	"reflect"
	"testing"
)

func rowsFromText(pairs ...[2]string) []evidenceRow {
	rows := make([]evidenceRow, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, evidenceRow{Title: p[0], URL: p[1], Snippet: "", Source: "searxng"})
	}
	return rows
}

func TestCountSignals(t *testing.T) {
	rows := []evidenceRow{
		{Title: "Home", URL: "https://trailheadgear.com/"},
		{Title: "Blog", URL: "https://blog.trailheadgear.com/post"},
		{Title: "IG", URL: "https://instagram.com/trailhead"},
		{Title: "Hiring ops lead", URL: "https://jobs.lever.co/trailhead", Snippet: "careers"},
		{Title: "Where to buy", URL: "https://example.com/", Snippet: "stockists near you"},
		{Title: "Resale listing", URL: "https://www.depop.com/trailhead-jacket"},
		{Title: "Ads", URL: "https://facebook.com/ads/library?id=1"},
	}
	counts := countSignals(rows, "trailheadgear.com")

	if counts.brandSite != 2 {
		t.Errorf("brand site count = %d, want 2 (root + subdomain)", counts.brandSite)
	}
	if counts.instagram != 1 || counts.jobs != 1 || counts.stockists != 1 || counts.resale != 1 || counts.metaAds != 1 {
		t.Errorf("unexpected counts: %+v", counts)
	}
}

func TestComputeSnapshotMetricsDeterministic(t *testing.T) {
	evidence := rowsFromText(
		[2]string{"Trailhead Gear viral growth", "https://instagram.com/a"},
		[2]string{"Launch on TikTok", "https://tiktok.com/@b"},
	)
	traffic := rowsFromText([2]string{"Home", "https://trailheadgear.com/"})

	a := ComputeSnapshotMetrics("Outdoor", evidence, traffic, "trailheadgear.com", 40, true, 85.0)
	b := ComputeSnapshotMetrics("Outdoor", evidence, traffic, "trailheadgear.com", 40, true, 85.0)
	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs must produce identical metrics")
	}
}

func TestComputeSnapshotMetricsMomentumRaisesHeat(t *testing.T) {
	quiet := ComputeSnapshotMetrics("Outdoor", nil, nil, "x.example", 0, false, 0)
	hot := ComputeSnapshotMetrics("Outdoor", rowsFromText(
		[2]string{"viral growth surge launch", "https://instagram.com/a"},
		[2]string{"momentum expansion", "https://tiktok.com/@b"},
	), nil, "x.example", 0, false, 0)

	if hot.HeatScore <= quiet.HeatScore {
		t.Errorf("momentum evidence must raise heat: %v <= %v", hot.HeatScore, quiet.HeatScore)
	}
	if hot.MomentumHits == 0 {
		t.Error("momentum hits not counted")
	}
}

func TestComputeSnapshotMetricsRiskTermsRaiseRisk(t *testing.T) {
	quiet := ComputeSnapshotMetrics("Beauty", nil, nil, "x.example", 0, false, 0)
	risky := ComputeSnapshotMetrics("Beauty", rowsFromText(
		[2]string{"lawsuit recall investigation", "https://news.example.org/a"},
	), nil, "x.example", 0, false, 0)

	if risky.RiskScore <= quiet.RiskScore {
		t.Errorf("risk terms must raise risk: %v <= %v", risky.RiskScore, quiet.RiskScore)
	}
	if risky.AsymmetryIndex >= quiet.AsymmetryIndex {
		t.Error("higher risk must lower asymmetry, all else equal")
	}
}

func TestComputeSnapshotMetricsCatalogObservation(t *testing.T) {
	proxy := ComputeSnapshotMetrics("Apparel", nil, nil, "x.example", 0, false, 0)
	observed := ComputeSnapshotMetrics("Apparel", nil, nil, "x.example", 40, true, 0)

	if proxy.SKUCount != 10 {
		t.Errorf("unobserved catalog should fall back to traffic proxy, got %v", proxy.SKUCount)
	}
	if observed.SKUCount != 40 {
		t.Errorf("observed catalog must pin SKU count, got %v", observed.SKUCount)
	}
}

func TestComputeSnapshotMetricsClampRanges(t *testing.T) {
	// Saturate every signal and confirm the bounds hold.
	var rows []evidenceRow
	for i := 0; i < 30; i++ {
		rows = append(rows, evidenceRow{
			Title:   "viral growth surge launch expansion momentum sold out raised seed series",
			URL:     "https://instagram.com/x",
			Snippet: "scale scaled opening",
		})
		rows = append(rows, evidenceRow{Title: "t", URL: "https://tiktok.com/@x"})
	}
	m := ComputeSnapshotMetrics("Consumer Tech", rows, rows, "x.example", 5000, true, 99999)

	if m.HeatScore > 99.9 || m.HeatScore < 5 {
		t.Errorf("heat out of range: %v", m.HeatScore)
	}
	if m.RiskScore > 98 || m.RiskScore < 5 {
		t.Errorf("risk out of range: %v", m.RiskScore)
	}
	if m.RevenueP50 > 350 {
		t.Errorf("revenue p50 above cap: %v", m.RevenueP50)
	}
	if m.SKUCount > 2000 {
		t.Errorf("sku count above cap: %v", m.SKUCount)
	}
	if m.CapitalRequiredMUSD > 120 {
		t.Errorf("capital required above cap: %v", m.CapitalRequiredMUSD)
	}
}

func TestRevenueBandOrdering(t *testing.T) {
	m := ComputeSnapshotMetrics("Outdoor", rowsFromText(
		[2]string{"growth launch", "https://instagram.com/a"},
	), rowsFromText([2]string{"Home", "https://x.example/"}), "x.example", 0, false, 0)

	if !(m.RevenueP10 <= m.RevenueP50 && m.RevenueP50 <= m.RevenueP90) {
		t.Errorf("revenue band must be ordered: p10=%v p50=%v p90=%v", m.RevenueP10, m.RevenueP50, m.RevenueP90)
	}
}

func TestDealStructure(t *testing.T) {
	tests := []struct {
		heat, risk, asym, capital float64
		want                      string
	}{
		{60, 40, 80, 20, "Minority growth investment"},
		{60, 50, 85, 40, "Debt plus earnout"},
		{85, 55, 60, 40, "IP partnership"},
		{50, 75, 50, 40, "Licensing structure"},
		{50, 50, 50, 40, "Control acquisition"},
	}
	for _, tt := range tests {
		if got := dealStructure(tt.heat, tt.risk, tt.asym, tt.capital); got != tt.want {
			t.Errorf("dealStructure(%v,%v,%v,%v) = %q, want %q", tt.heat, tt.risk, tt.asym, tt.capital, got, tt.want)
		}
	}
}
