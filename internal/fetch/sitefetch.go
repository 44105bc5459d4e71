package fetch

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/eidolonhq/eidolon/internal/model"
)

var (
	titleRe   = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	tagRe     = regexp.MustCompile(`<[^>]+>`)
	metaDescRe = regexp.MustCompile(`(?i)<meta[^>]+name=["']description["'][^>]+content=["']([^"']+)["']`)
	wsRe      = regexp.MustCompile(`\s+`)
)

// Metadata is the homepage summary used to name and describe a brand.
type Metadata struct {
	FinalURL    string
	Title       string
	Description string
}

// Catalog is the result of the product catalog probe. Observed is false when
// the catalog endpoint was unreachable or not JSON; an observed-but-empty
// catalog has SKUCount 0.
type Catalog struct {
	Observed       bool
	SKUCount       int
	MedianPriceUSD float64
}

// SiteFetcher fetches brand-site pages under robots, rate and size limits.
type SiteFetcher struct {
	metadataClient *http.Client
	catalogClient  *http.Client
	userAgent      string
	maxBodyBytes   int64
	respectRobots  bool

	robots  *RobotsChecker
	limiter *Limiter
	cache   *gocache.Cache

	log *logrus.Logger
}

// NewSiteFetcher wires the fetcher from HTTP configuration.
func NewSiteFetcher(cfg model.HTTPConfig, log *logrus.Logger) *SiteFetcher {
	if log == nil {
		log = logrus.New()
	}
	return &SiteFetcher{
		metadataClient: &http.Client{Timeout: cfg.MetadataTimeout},
		catalogClient:  &http.Client{Timeout: cfg.CatalogTimeout},
		userAgent:      cfg.UserAgent,
		maxBodyBytes:   cfg.MaxBodyBytes,
		respectRobots:  cfg.RespectRobots,
		robots:         NewRobotsChecker(cfg.UserAgent, cfg.MetadataTimeout),
		limiter:        NewLimiter(cfg.FetchRatePerSecond, 2),
		cache:          gocache.New(20*time.Minute, 10*time.Minute),
		log:            log,
	}
}

func cleanWhitespace(value string) string {
	return wsRe.ReplaceAllString(strings.TrimSpace(value), " ")
}

// ExtractTitleAndDescription pulls the <title> text and meta description from
// raw HTML. Regex is sufficient for a best-effort title and description; no
// DOM is built.
func ExtractTitleAndDescription(html string) (title, description string) {
	if m := titleRe.FindStringSubmatch(html); m != nil {
		title = cleanWhitespace(tagRe.ReplaceAllString(m[1], ""))
	}
	if m := metaDescRe.FindStringSubmatch(html); m != nil {
		description = cleanWhitespace(m[1])
	}
	return title, description
}

func (f *SiteFetcher) get(ctx context.Context, client *http.Client, rawURL string) (finalURL, body string, ok bool) {
	if f.respectRobots && !f.robots.Allowed(ctx, rawURL) {
		f.log.WithField("url", rawURL).Debug("robots disallow")
		return rawURL, "", false
	}
	if err := f.limiter.Wait(ctx, rawURL); err != nil {
		return rawURL, "", false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return rawURL, "", false
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return rawURL, "", false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return rawURL, "", false
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return rawURL, "", false
	}

	final := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	return final, string(data), true
}

// FetchMetadata fetches a site homepage and extracts title and description.
// Failures return the input URL with empty fields.
func (f *SiteFetcher) FetchMetadata(ctx context.Context, siteURL string) Metadata {
	if cached, ok := f.cache.Get("meta:" + siteURL); ok {
		return cached.(Metadata)
	}

	meta := Metadata{FinalURL: siteURL}
	finalURL, body, ok := f.get(ctx, f.metadataClient, siteURL)
	if ok {
		meta.FinalURL = finalURL
		meta.Title, meta.Description = ExtractTitleAndDescription(body)
	}
	f.cache.SetDefault("meta:"+siteURL, meta)
	return meta
}

// ProbeCatalog checks the commonly exposed /products.json endpoint for SKU
// count and a median variant price.
func (f *SiteFetcher) ProbeCatalog(ctx context.Context, siteURL string) Catalog {
	probeURL := strings.TrimRight(siteURL, "/") + "/products.json?limit=250&page=1"
	if cached, ok := f.cache.Get("catalog:" + probeURL); ok {
		return cached.(Catalog)
	}

	catalog := Catalog{}
	_, body, ok := f.get(ctx, f.catalogClient, probeURL)
	if ok {
		catalog = parseCatalog(body)
	}
	f.cache.SetDefault("catalog:"+probeURL, catalog)
	return catalog
}

func parseCatalog(body string) Catalog {
	products := gjson.Get(body, "products")
	if !products.IsArray() {
		return Catalog{}
	}

	var prices []float64
	productRows := products.Array()
	for _, product := range productRows {
		for _, variant := range product.Get("variants").Array() {
			// Shopify serializes prices as strings; gjson coerces either way.
			if price := variant.Get("price").Float(); price > 0 {
				prices = append(prices, price)
			}
		}
	}

	catalog := Catalog{Observed: true, SKUCount: len(productRows)}
	if len(prices) > 0 {
		sort.Float64s(prices)
		catalog.MedianPriceUSD = prices[len(prices)/2]
	}
	return catalog
}
