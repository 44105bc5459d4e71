package ingest

import (
	"strings"

	"github.com/eidolonhq/eidolon/internal/scoring"
)

var resaleHosts = []string{"depop.com", "poshmark.com", "grailed.com", "ebay.", "stockx.com"}
var jobHosts = []string{"greenhouse.io", "lever.co", "workable.com", "ashbyhq.com"}

// signalCounts tallies where a brand's retrieved results point.
type signalCounts struct {
	brandSite  int
	instagram  int
	tiktok     int
	reddit     int
	pinterest  int
	substack   int
	medium     int
	youtube    int
	metaAds    int
	jobs       int
	stockists  int
	resale     int
}

func hostContainsAny(host string, fragments []string) bool {
	for _, fragment := range fragments {
		if strings.Contains(host, fragment) {
			return true
		}
	}
	return false
}

func countSignals(rows []evidenceRow, brandHost string) signalCounts {
	var counts signalCounts
	for _, row := range rows {
		host := hostOf(row.URL)
		text := strings.ToLower(row.Title) + " " + strings.ToLower(row.Snippet)

		if host == brandHost || strings.HasSuffix(host, "."+brandHost) {
			counts.brandSite++
		}
		if strings.Contains(host, "instagram.com") {
			counts.instagram++
		}
		if strings.Contains(host, "tiktok.com") {
			counts.tiktok++
		}
		if strings.Contains(host, "reddit.com") {
			counts.reddit++
		}
		if strings.Contains(host, "pinterest.com") {
			counts.pinterest++
		}
		if strings.Contains(host, "substack.com") {
			counts.substack++
		}
		if strings.Contains(host, "medium.com") {
			counts.medium++
		}
		if strings.Contains(host, "youtube.com") || strings.Contains(host, "youtu.be") {
			counts.youtube++
		}
		if strings.Contains(host, "facebook.com") && strings.Contains(row.URL, "ads/library") {
			counts.metaAds++
		}
		if hostContainsAny(host, jobHosts) || strings.Contains(host, "linkedin.com") {
			if strings.Contains(text, "job") || strings.Contains(text, "careers") || strings.Contains(text, "hiring") {
				counts.jobs++
			}
		}
		if strings.Contains(text, "stockist") || strings.Contains(text, "where to buy") {
			counts.stockists++
		}
		if hostContainsAny(host, resaleHosts) || strings.Contains(text, "resale") {
			counts.resale++
		}
	}
	return counts
}

// SnapshotMetrics holds every derived metric for one brand's weekly snapshot.
// All values are deterministic functions of the retrieved signals.
type SnapshotMetrics struct {
	InstagramFollowerVelocity float64
	TikTokFollowerVelocity    float64
	EngagementRate            float64
	CommentsToLikesRatio      float64
	RepeatCommenterDensity    float64
	InfluencerTagOverlap      float64
	UGCRepostFrequency        float64
	EngagementQuality         float64
	WebsiteTrafficK           float64
	SKUCount                  float64
	SelloutVelocity           float64
	MetaAdActivity            float64
	HiringVelocity            float64
	StockistExpansion         float64
	GoogleTrendsVelocity      float64
	RedditMentions            float64
	PinterestSavesVelocity    float64
	BlogMentions              float64
	ResaleActivity            float64

	HeatScore           float64
	RiskScore           float64
	AsymmetryIndex      float64
	CapitalIntensity    float64
	RevenueP10          float64
	RevenueP50          float64
	RevenueP90          float64
	CapitalRequiredMUSD float64

	MomentumHits float64
	RiskHits     float64
}

// timeseriesValues returns the metric-name to value mapping stored as daily
// observations. "heat" aliases the heat score.
func (m *SnapshotMetrics) timeseriesValues() map[string]float64 {
	return map[string]float64{
		"heat":                        m.HeatScore,
		"instagram_follower_velocity": m.InstagramFollowerVelocity,
		"tiktok_follower_velocity":    m.TikTokFollowerVelocity,
		"engagement_rate":             m.EngagementRate,
		"comments_to_likes_ratio":     m.CommentsToLikesRatio,
		"repeat_commenter_density":    m.RepeatCommenterDensity,
		"influencer_tag_overlap":      m.InfluencerTagOverlap,
		"ugc_repost_frequency":        m.UGCRepostFrequency,
		"engagement_quality":          m.EngagementQuality,
		"website_traffic_k":           m.WebsiteTrafficK,
		"sku_count":                   m.SKUCount,
		"sellout_velocity":            m.SelloutVelocity,
		"meta_ad_activity":            m.MetaAdActivity,
		"hiring_velocity":             m.HiringVelocity,
		"stockist_expansion":          m.StockistExpansion,
		"google_trends_velocity":      m.GoogleTrendsVelocity,
		"reddit_mentions":             m.RedditMentions,
		"pinterest_saves_velocity":    m.PinterestSavesVelocity,
		"blog_mentions":               m.BlogMentions,
		"resale_activity":             m.ResaleActivity,
	}
}

// timeseriesMetricOrder fixes the order metrics are written in.
var timeseriesMetricOrder = []string{
	"heat",
	"instagram_follower_velocity",
	"tiktok_follower_velocity",
	"engagement_rate",
	"comments_to_likes_ratio",
	"repeat_commenter_density",
	"influencer_tag_overlap",
	"ugc_repost_frequency",
	"engagement_quality",
	"website_traffic_k",
	"sku_count",
	"sellout_velocity",
	"meta_ad_activity",
	"hiring_velocity",
	"stockist_expansion",
	"google_trends_velocity",
	"reddit_mentions",
	"pinterest_saves_velocity",
	"blog_mentions",
	"resale_activity",
}

// ComputeSnapshotMetrics derives the full snapshot from retrieved evidence
// and site-depth results. Signals come only from retrieved text; there is no
// randomness, so identical inputs always produce identical metrics.
func ComputeSnapshotMetrics(category string, evidenceRows, trafficRows []evidenceRow, brandHost string, skuCount int, skuObserved bool, medianPriceUSD float64) SnapshotMetrics {
	var blob strings.Builder
	for _, r := range evidenceRows {
		blob.WriteString(r.Title)
		blob.WriteString(" ")
		blob.WriteString(r.Snippet)
		blob.WriteString(" ")
	}
	momentumHits := float64(countTermHits(blob.String(), momentumTerms))
	riskHits := float64(countTermHits(blob.String(), riskTerms))

	signals := countSignals(evidenceRows, brandHost)
	trafficSignals := countSignals(trafficRows, brandHost)

	instagram := float64(signals.instagram)
	tiktok := float64(signals.tiktok)
	reddit := float64(signals.reddit)
	pinterest := float64(signals.pinterest)
	blogs := float64(signals.substack + signals.medium)
	resale := float64(signals.resale)

	indexedPages := float64(trafficSignals.brandSite)
	if indexedPages < 1 {
		indexedPages = 1
	}
	trafficK := clamp(8+indexedPages*10+momentumHits*4+(instagram+tiktok)*6, 5, 450)

	skuProxy := clamp(indexedPages*6, 10, 600)
	if skuObserved {
		skuProxy = float64(skuCount)
	}
	skuProxy = clamp(skuProxy, 1, 2000)

	engagementQuality := clamp(0.62+(instagram+tiktok)/40-riskHits/18, 0.2, 0.98)
	engagementRate := clamp(1.0+(instagram+tiktok)*0.8+momentumHits*0.6, 0.5, 18.0)
	commentsToLikes := clamp(0.04+engagementQuality*0.11, 0.02, 0.32)
	repeatDensity := clamp(0.12+engagementQuality*0.55-riskHits*0.01, 0.08, 0.95)
	influencerOverlap := clamp(22+(instagram+tiktok)*4+momentumHits*3, 5, 99)
	ugcReposts := clamp(6+(instagram+tiktok)*3+pinterest*1.5, 1, 95)

	metaAds := clamp(10+float64(signals.metaAds)*18+momentumHits*2, 0, 99)
	hiring := clamp(float64(signals.jobs)*8+momentumHits*2, 0, 55)
	stockists := clamp(float64(signals.stockists)*8+momentumHits*1.2, 0, 45)
	sellout := clamp(35+momentumHits*4+(instagram+tiktok)*2-riskHits*3, 5, 99)

	googleTrends := clamp(18+(instagram+tiktok)*4+momentumHits*6-riskHits*3, 2, 100)
	redditMentions := clamp(reddit*12+momentumHits*3, 0, 120)
	pinterestSaves := clamp(pinterest*10+momentumHits*2, 0, 100)
	blogMentions := clamp(blogs*8+momentumHits*1.5, 0, 40)
	resaleActivity := clamp(resale*12+momentumHits*1.2, 0, 100)

	// AOV: observed median item price when available, else category prior.
	aov := scoring.AOVFor(category)
	if medianPriceUSD > 0 {
		aov = medianPriceUSD
	}
	aov = clamp(aov*1.15, 10, 400)

	// Annual revenue ($M) from proxy traffic x conversion x AOV.
	conversionPct := clamp(0.9+(instagram+tiktok)/50+engagementQuality*0.9-riskHits/22, 0.7, 5.5)
	monthlyRev := (trafficK * 1000) * (conversionPct / 100.0) * aov
	annualRevMUSD := clamp(monthlyRev*12/1_000_000, 0.4, 350.0)
	revP10 := clamp(annualRevMUSD*0.72, 0.2, 350.0)
	revP90 := clamp(annualRevMUSD*1.32, 0.3, 600.0)

	// Capital intensity: category prior with a small SKU-complexity adjustment.
	baseCapital, ok := baseCapitalByCategory[category]
	if !ok {
		baseCapital = 55.0
	}
	capitalIntensity := clamp(baseCapital+(skuProxy/120)*6-engagementQuality*8, 10, 95)

	growthVelocity := clamp((instagram+tiktok)*10+momentumHits*3, 0, 100)
	sentimentScore := clamp(55+momentumHits*5-riskHits*8, 0, 100)
	geographicSpread := clamp(45+blogs*6+reddit*4, 0, 100)

	heatScore := clamp(
		0.30*growthVelocity+
			0.20*(engagementQuality*100)+
			0.15*ugcReposts+
			0.15*sentimentScore+
			0.10*influencerOverlap+
			0.10*geographicSpread,
		5, 99.9)
	riskScore := clamp(18+riskHits*18+(1-engagementQuality)*38, 5, 98)
	asymmetry := clamp(heatScore*0.72+(100-riskScore)*0.28-capitalIntensity*0.10+8, 5, 98)

	capitalRequired := clamp(2.0+annualRevMUSD*(0.06+capitalIntensity/800), 1.0, 120.0)

	return SnapshotMetrics{
		InstagramFollowerVelocity: clamp(instagram*10.0, 0, 100),
		TikTokFollowerVelocity:    clamp(tiktok*10.0, 0, 100),
		EngagementRate:            engagementRate,
		CommentsToLikesRatio:      commentsToLikes,
		RepeatCommenterDensity:    repeatDensity,
		InfluencerTagOverlap:      influencerOverlap,
		UGCRepostFrequency:        ugcReposts,
		EngagementQuality:         engagementQuality,
		WebsiteTrafficK:           trafficK,
		SKUCount:                  clamp(skuProxy, 1, 2000),
		SelloutVelocity:           sellout,
		MetaAdActivity:            metaAds,
		HiringVelocity:            hiring,
		StockistExpansion:         stockists,
		GoogleTrendsVelocity:      googleTrends,
		RedditMentions:            redditMentions,
		PinterestSavesVelocity:    pinterestSaves,
		BlogMentions:              blogMentions,
		ResaleActivity:            resaleActivity,
		HeatScore:                 heatScore,
		RiskScore:                 riskScore,
		AsymmetryIndex:            asymmetry,
		CapitalIntensity:          capitalIntensity,
		RevenueP10:                revP10,
		RevenueP50:                annualRevMUSD,
		RevenueP90:                revP90,
		CapitalRequiredMUSD:       capitalRequired,
		MomentumHits:              momentumHits,
		RiskHits:                  riskHits,
	}
}

// baseCapitalByCategory is the capital-intensity prior per category.
var baseCapitalByCategory = map[string]float64{
	"Food & Beverage": 70.0,
	"Home Goods":      65.0,
	"Outdoor":         60.0,
	"Apparel":         60.0,
	"Pet":             60.0,
	"Beauty":          55.0,
	"Personal Care":   55.0,
	"Childcare":       55.0,
	"Wellness":        50.0,
	"Consumer Tech":   45.0,
}

// dealStructure picks the suggested entry structure from the scored snapshot.
func dealStructure(heat, risk, asymmetry, capital float64) string {
	switch {
	case asymmetry > 78 && risk < 55 && capital < 30:
		return "Minority growth investment"
	case asymmetry > 80 && risk < 65 && capital >= 30:
		return "Debt plus earnout"
	case heat > 82 && risk <= 60:
		return "IP partnership"
	case risk > 70:
		return "Licensing structure"
	default:
		return "Control acquisition"
	}
}

// looksLikePublisher flags metadata that reads editorial with no commerce
// vocabulary at all.
func looksLikePublisher(title, desc string) bool {
	text := strings.ToLower(title + " " + desc)
	publisherTerms := []string{
		"recipes", "recipe", "news", "magazine", "blog", "reviews", "review",
		"editorial", "podcast", "dictionary", "definition", "meaning",
		"encyclopedia", "wiki", "press", "journal",
	}
	ecommerceTerms := []string{"shop", "store", "buy", "cart", "checkout", "subscribe"}

	publisherHit := false
	for _, term := range publisherTerms {
		if strings.Contains(text, term) {
			publisherHit = true
			break
		}
	}
	if !publisherHit {
		return false
	}
	for _, term := range ecommerceTerms {
		if strings.Contains(text, term) {
			return false
		}
	}
	return true
}
