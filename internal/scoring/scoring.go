// Package scoring assembles the ranked feed, brand profiles and timeseries
// views from persisted scorecards, evidence and observations. Everything here
// is a pure read-model: it derives narrative and financial blocks from stored
// rows and never performs retrieval.
package scoring

import "math"

// AOVByCategory is the average-order-value prior ($) per category, used when
// no median catalog price could be observed.
var AOVByCategory = map[string]float64{
	"Beauty":          52.0,
	"Personal Care":   38.0,
	"Food & Beverage": 27.0,
	"Apparel":         84.0,
	"Home Goods":      96.0,
	"Consumer Tech":   168.0,
	"Pet":             44.0,
	"Outdoor":         122.0,
	"Childcare":       64.0,
	"Wellness":        58.0,
}

// AOVFor returns the category prior, defaulting to $60.
func AOVFor(category string) float64 {
	if aov, ok := AOVByCategory[category]; ok {
		return aov
	}
	return 60.0
}

// signalConfig maps a stored metric name to its display label and source tag.
type signalConfig struct {
	metric string
	label  string
	source string
}

var socialSignalConfig = []signalConfig{
	{"instagram_follower_velocity", "Instagram follower velocity", "social_proxy"},
	{"tiktok_follower_velocity", "TikTok follower velocity", "social_proxy"},
	{"engagement_rate", "Engagement rate", "engagement_proxy"},
	{"comments_to_likes_ratio", "Comments-to-likes ratio", "engagement_proxy"},
	{"repeat_commenter_density", "Repeat commenter density", "engagement_proxy"},
	{"influencer_tag_overlap", "Influencer tag overlap", "network_proxy"},
	{"ugc_repost_frequency", "UGC repost frequency", "ugc_proxy"},
}

var commerceSignalConfig = []signalConfig{
	{"website_traffic_k", "Website traffic estimate (k/mo)", "commerce_proxy"},
	{"sku_count", "SKU count", "commerce_proxy"},
	{"sellout_velocity", "Sellout velocity", "commerce_proxy"},
	{"meta_ad_activity", "Meta Ad Library activity", "ad_proxy"},
	{"hiring_velocity", "Hiring velocity", "hiring_proxy"},
	{"stockist_expansion", "Retail stockist expansion", "retail_proxy"},
}

var searchCulturalSignalConfig = []signalConfig{
	{"google_trends_velocity", "Google Trends velocity", "search_proxy"},
	{"reddit_mentions", "Reddit mention frequency", "reddit"},
	{"pinterest_saves_velocity", "Pinterest saves velocity", "search_proxy"},
	{"blog_mentions", "Substack/blog mentions", "news"},
	{"resale_activity", "Resale platform activity", "market_proxy"},
}

var ownershipTargets = map[string]string{
	"Minority growth investment": "15%-30%",
	"Control acquisition":        "51%-70%",
	"IP partnership":             "20%-35%",
	"Licensing structure":        "5%-15% royalty + call option",
	"Debt plus earnout":          "20%-40% equity equivalent",
}

// OwnershipTargetForStructure maps a deal structure to a stake target.
func OwnershipTargetForStructure(structure string) string {
	if target, ok := ownershipTargets[structure]; ok {
		return target
	}
	return "20%-35%"
}

// DeeperAnalysisRequired flags hot brands for manual review before outreach.
func DeeperAnalysisRequired(heatScore float64) bool {
	return heatScore >= 75.0
}

func riskBucket(value float64) string {
	switch {
	case value < 36:
		return "low"
	case value < 68:
		return "medium"
	default:
		return "high"
	}
}

func clamp(value, low, high float64) float64 {
	return math.Max(low, math.Min(high, value))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
