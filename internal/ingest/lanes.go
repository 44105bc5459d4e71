// Package ingest builds and refreshes the tracked brand universe from real
// web retrieval: universe query lanes, candidate aggregation, site metadata
// enrichment, and weekly snapshot scoring.
package ingest

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"
)

// queryLane pairs a universe discovery query with the category it seeds.
type queryLane struct {
	query    string
	category string
}

// universeQueryLanes are tuned to bias towards official brand sites and
// commerce pages, not publisher listicles.
var universeQueryLanes = []queryLane{
	{"outdoor apparel brand shop official site", "Outdoor"},
	{"trail running brand shop official site", "Outdoor"},
	{"skincare brand shop official site", "Beauty"},
	{"haircare brand shop official site", "Beauty"},
	{"clean personal care brand shop official site", "Personal Care"},
	{"functional beverage brand shop direct to consumer", "Food & Beverage"},
	{"snack brand shop direct to consumer", "Food & Beverage"},
	{"wellness supplement brand shop official site", "Wellness"},
	{"pet food brand shop direct to consumer", "Pet"},
	{"home fragrance brand shop official site", "Home Goods"},
	{"home goods brand shop official site", "Home Goods"},
	{"baby brand shop direct to consumer", "Childcare"},
	{"kids toy brand shop direct to consumer", "Childcare"},
	{"consumer electronics brand shop direct to consumer", "Consumer Tech"},
	{"apparel brand shop direct to consumer", "Apparel"},
}

var excludedHostFragments = []string{
	"wikipedia.org",
	"reddit.com",
	"youtube.com",
	"youtu.be",
	"instagram.com",
	"tiktok.com",
	"facebook.com",
	"x.com",
	"twitter.com",
	"linkedin.com",
	"pinterest.com",
	"amazon.",
	"etsy.com",
	"ebay.",
}

// publisherHostFragments is intentionally conservative: only used to avoid
// treating publishers as brands.
var publisherHostFragments = []string{
	"cambridge.org",
	"merriam-webster.com",
	"dictionary.com",
	"britannica.com",
	"wiktionary.org",
	"trendhunter.com",
	"sgbonline.com",
	"sgbmedia.com",
	"powerbrands.com",
	"forbes.com",
	"techcrunch.com",
	"nytimes.com",
	"wsj.com",
	"bloomberg.com",
	"fortune.com",
	"businessinsider.com",
	"theverge.com",
	"axios.com",
	"medium.com",
	"substack.com",
	"gq.com",
	"esquire.com",
	"highsnobiety.com",
	"outsideonline.com",
	"carryology.com",
	"treelinereview.com",
	"outdoortechlab.com",
	"tastingtable.com",
	"thebump.com",
	"allrecipes.com",
	"seriouseats.com",
	"foodandwine.com",
}

var momentumTerms = []string{
	"growth", "surge", "expansion", "viral", "launch", "opening",
	"scale", "scaled", "momentum", "raised", "seed", "series", "sold out",
}

var riskTerms = []string{
	"lawsuit", "recall", "decline", "bankrupt", "shutdown", "layoff",
	"controversy", "investigation", "ban", "fraud", "warning",
}

var (
	spaceRe      = regexp.MustCompile(`\s+`)
	titleSplitRe = regexp.MustCompile(`\s[-|:]\s`)
	officialSufRe = regexp.MustCompile(`(?i)\s+(official site|official store|shop online|store)\s*$`)
)

func cleanText(value string) string {
	return spaceRe.ReplaceAllString(strings.TrimSpace(value), " ")
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

// hostOf normalizes a URL to its brand-canonical host: lowercased, www
// stripped, and common ecommerce subdomains collapsed into the root host.
func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Host)
	host = strings.TrimPrefix(host, "www.")
	for _, prefix := range []string{"shop.", "store."} {
		host = strings.TrimPrefix(host, prefix)
	}
	return host
}

func isExcludedHost(host string) bool {
	lowered := strings.ToLower(host)
	for _, fragment := range excludedHostFragments {
		if strings.Contains(lowered, fragment) {
			return true
		}
	}
	return false
}

func isPublisherHost(host string) bool {
	lowered := strings.ToLower(host)
	for _, fragment := range publisherHostFragments {
		if strings.Contains(lowered, fragment) {
			return true
		}
	}
	return false
}

// canonicalSiteURL prefers https; redirects are followed when fetching
// metadata.
func canonicalSiteURL(host string) string {
	return "https://" + host + "/"
}

// StableBrandID derives the persistent brand identifier from the resolved
// host, so repeated refreshes land on the same row.
func StableBrandID(host string) string {
	digest := sha1.Sum([]byte(host))
	return "brand-" + hex.EncodeToString(digest[:])[:12]
}

// nameFromTitleTag extracts a plausible brand name from a page title: the
// head before the first separator, with boilerplate suffixes stripped.
func nameFromTitleTag(title string) string {
	cleaned := cleanText(title)
	if cleaned == "" {
		return ""
	}
	head := strings.TrimSpace(titleSplitRe.Split(cleaned, -1)[0])
	head = strings.TrimSpace(officialSufRe.ReplaceAllString(head, ""))
	return truncate(head, 80)
}

func countTermHits(text string, terms []string) int {
	lowered := strings.ToLower(text)
	hits := 0
	for _, term := range terms {
		if strings.Contains(lowered, term) {
			hits++
		}
	}
	return hits
}

func clamp(value, low, high float64) float64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}

// sourceReliability maps an engine name to a citation reliability weight.
func sourceReliability(source string) float64 {
	s := strings.ToLower(source)
	switch {
	case strings.Contains(s, "google"), strings.Contains(s, "startpage"):
		return 0.72
	case strings.Contains(s, "duckduckgo"):
		return 0.64
	case strings.Contains(s, "bing"):
		return 0.66
	case strings.Contains(s, "reddit"):
		return 0.72
	case strings.Contains(s, "news"):
		return 0.78
	default:
		return 0.62
	}
}
