package ingest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eidolonhq/eidolon/internal/entity"
	"github.com/eidolonhq/eidolon/internal/fetch"
	"github.com/eidolonhq/eidolon/internal/model"
	"github.com/eidolonhq/eidolon/internal/search"
	"github.com/eidolonhq/eidolon/internal/store"
	"github.com/eidolonhq/eidolon/internal/worker"
)

// SiteFetcher is the brand-site access surface the refresher needs.
type SiteFetcher interface {
	FetchMetadata(ctx context.Context, siteURL string) fetch.Metadata
	ProbeCatalog(ctx context.Context, siteURL string) fetch.Catalog
}

var legacyBrandIDRe = regexp.MustCompile(`^brand-\d{3}$`)

// legacyURLFragments mark placeholder URLs from early synthetic seed data.
var legacyURLFragments = []string{"search.local", "registry.example", "news.example"}

// Refresher builds and refreshes the tracked universe and writes the weekly
// snapshot for every brand.
type Refresher struct {
	store    *store.Store
	searcher search.Searcher
	fetcher  SiteFetcher
	cfg      model.RefreshConfig
	log      *logrus.Logger
	now      func() time.Time
}

// NewRefresher wires a refresher.
func NewRefresher(st *store.Store, searcher search.Searcher, fetcher SiteFetcher, cfg model.RefreshConfig, log *logrus.Logger) *Refresher {
	if log == nil {
		log = logrus.New()
	}
	return &Refresher{
		store:    st,
		searcher: searcher,
		fetcher:  fetcher,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// MondayOfWeek returns the Monday of the week containing t, at midnight UTC.
func MondayOfWeek(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.AddDate(0, 0, -offset).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

// legacySyntheticPresent detects leftover synthetic datasets from early
// iterations: sequential brand ids, placeholder URLs, or implausibly low
// evidence coverage across a sizable universe.
func (r *Refresher) legacySyntheticPresent(ctx context.Context) (bool, error) {
	ids, err := r.store.ListBrandIDs(ctx, 5000)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if legacyBrandIDRe.MatchString(id) {
			return true, nil
		}
	}

	urls, err := r.store.ListEvidenceURLs(ctx, 5000)
	if err != nil {
		return false, err
	}
	for _, u := range urls {
		for _, fragment := range legacyURLFragments {
			if strings.Contains(u, fragment) {
				return true, nil
			}
		}
	}

	total, err := r.store.CountBrands(ctx)
	if err != nil {
		return false, err
	}
	if total >= 20 {
		withEvidence, err := r.store.BrandsWithEvidence(ctx)
		if err != nil {
			return false, err
		}
		if float64(withEvidence) < float64(total)*0.35 {
			return true, nil
		}
	}
	return false, nil
}

func fallbackBrandName(host string) string {
	if name := entity.TitleCaseWords(entity.DomainLabel(host)); name != "" {
		return name
	}
	return host
}

// buildUniverse collects, ranks and persists brand candidates when the
// universe is empty. Returns (created, updated).
func (r *Refresher) buildUniverse(ctx context.Context) (int, int, error) {
	candidates := CollectUniverseCandidates(ctx, r.searcher)
	ranked := RankCandidates(candidates)

	keep := r.cfg.TargetBrands
	if keep < 25 {
		keep = 25
	}
	if len(ranked) > keep {
		ranked = ranked[:keep]
	}

	metadataFetchLimit := r.cfg.EnrichTopN
	if metadataFetchLimit < 30 {
		metadataFetchLimit = 30
	}
	if metadataFetchLimit > len(ranked) {
		metadataFetchLimit = len(ranked)
	}

	// Prefetch metadata for the head of the ranking in parallel; the per-host
	// limiter inside the fetcher still paces individual sites. Brands are then
	// persisted sequentially so ordering stays deterministic.
	prefetchURLs := make([]string, metadataFetchLimit)
	for i := 0; i < metadataFetchLimit; i++ {
		prefetchURLs[i] = canonicalSiteURL(ranked[i].Host)
	}
	prefetched := worker.Map(ctx, r.cfg.FetchWorkers, prefetchURLs, func(ctx context.Context, siteURL string) fetch.Metadata {
		return r.fetcher.FetchMetadata(ctx, siteURL)
	})

	created, updated := 0, 0
	for idx, agg := range ranked {
		siteURL := canonicalSiteURL(agg.Host)
		meta := fetch.Metadata{FinalURL: siteURL}
		if idx < metadataFetchLimit {
			meta = prefetched[idx]
		}
		finalHost := hostOf(meta.FinalURL)
		if finalHost == "" {
			finalHost = agg.Host
		}

		var seedContext strings.Builder
		for i, row := range agg.SeedEvidence {
			if i == 3 {
				break
			}
			seedContext.WriteString(row.Title)
			seedContext.WriteString(" ")
			seedContext.WriteString(row.Snippet)
			seedContext.WriteString(" ")
		}
		descOrContext := meta.Description
		if descOrContext == "" {
			descOrContext = seedContext.String()
		}
		if looksLikePublisher(meta.Title, descOrContext) {
			continue
		}

		name := nameFromTitleTag(meta.Title)
		if name == "" {
			name = fallbackBrandName(finalHost)
		}
		entityKey := entity.KeyFromName(name)
		if entityKey == "" {
			entityKey = entity.DomainLabel(finalHost)
		}
		hostBrandID := StableBrandID(finalHost)

		description := meta.Description
		if description == "" {
			for _, row := range agg.SeedEvidence {
				if snippet := strings.TrimSpace(row.Snippet); snippet != "" {
					description = truncate(snippet, 600)
					break
				}
			}
		}
		category := agg.PrimaryCategory()

		existing, err := r.store.GetBrand(ctx, hostBrandID)
		found := err == nil
		if !found && !errors.Is(err, store.ErrNotFound) {
			return created, updated, err
		}
		// Entity-resolution pass: a host that duplicates an existing brand
		// name merges into that row instead of creating a twin.
		if !found && entityKey != "" {
			existing, err = r.store.GetBrandByEntityKey(ctx, entityKey)
			found = err == nil
			if !found && !errors.Is(err, store.ErrNotFound) {
				return created, updated, err
			}
		}

		var brand model.Brand
		if found {
			brand = existing
			// Name: prefer the longer, less generic string.
			if len(strings.TrimSpace(name)) >= len(strings.TrimSpace(brand.Name)) {
				brand.Name = name
			}
			brand.EntityKey = entityKey
			// Website: never overwrite a canonical site with a social or
			// publisher host.
			existingHost := hostOf(brand.Website)
			candidateHost := hostOf(meta.FinalURL)
			switch {
			case brand.Website == "":
				brand.Website = meta.FinalURL
			case existingHost == candidateHost:
				brand.Website = meta.FinalURL
			case (isExcludedHost(existingHost) || isPublisherHost(existingHost)) &&
				!(isExcludedHost(candidateHost) || isPublisherHost(candidateHost)):
				brand.Website = meta.FinalURL
			}
			// Description: keep the richer text.
			if len(strings.TrimSpace(description)) >= len(strings.TrimSpace(brand.Description)) {
				brand.Description = description
			}
			brand.Category = category
			brand.Region = "Global"
			updated++
		} else {
			brand = model.Brand{
				ID:          hostBrandID,
				Name:        name,
				EntityKey:   entityKey,
				Category:    category,
				Region:      "Global",
				Website:     meta.FinalURL,
				Description: description,
			}
			created++
		}
		if err := r.store.SaveBrand(ctx, brand); err != nil {
			return created, updated, err
		}

		// Seed minimal evidence from the lane results (real URLs only).
		seen, err := r.store.EvidenceURLs(ctx, brand.ID)
		if err != nil {
			return created, updated, err
		}
		for i, row := range agg.SeedEvidence {
			if i == 3 {
				break
			}
			if _, dup := seen[row.URL]; dup {
				continue
			}
			seen[row.URL] = struct{}{}
			source := row.Source
			if source == "" {
				source = "searxng"
			}
			err := r.store.AddEvidence(ctx, model.EvidenceCitation{
				BrandID:     brand.ID,
				Title:       row.Title,
				URL:         row.URL,
				Snippet:     row.Snippet,
				Source:      source,
				Reliability: round3(sourceReliability(row.Source)),
			})
			if err != nil {
				return created, updated, err
			}
		}
	}
	return created, updated, nil
}

// enrichSet picks the brands that get deeper retrieval this pass: those with
// the most existing evidence, or the head of the list when nothing has
// evidence yet.
func (r *Refresher) enrichSet(ctx context.Context, brands []model.Brand) (map[string]struct{}, error) {
	counts, err := r.store.EvidenceCountsByBrand(ctx)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{})
	if len(counts) == 0 {
		for i, b := range brands {
			if i == r.cfg.EnrichTopN {
				break
			}
			set[b.ID] = struct{}{}
		}
		return set, nil
	}

	type brandCount struct {
		id string
		n  int
	}
	ranked := make([]brandCount, 0, len(counts))
	for id, n := range counts {
		ranked = append(ranked, brandCount{id, n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].n != ranked[j].n {
			return ranked[i].n > ranked[j].n
		}
		return ranked[i].id < ranked[j].id
	})
	for i, bc := range ranked {
		if i == r.cfg.EnrichTopN {
			break
		}
		set[bc.id] = struct{}{}
	}
	return set, nil
}

func toEvidenceRows(results []model.SearchResult) []evidenceRow {
	rows := make([]evidenceRow, 0, len(results))
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		rows = append(rows, evidenceRow{Title: r.Title, URL: r.URL, Snippet: r.Snippet, Source: r.Source})
	}
	return rows
}

// scoreBrand runs the retrieval passes for one brand and writes its
// scorecard, timeseries points and evidence.
func (r *Refresher) scoreBrand(ctx context.Context, brand model.Brand, snapshotWeek time.Time, enriched bool) error {
	_, evidence := r.searcher.Search(ctx, fmt.Sprintf("%q %s", brand.Name, brand.Website), 20)
	_, traffic := r.searcher.Search(ctx, "site:"+hostOf(brand.Website), 20)

	var extraRows []evidenceRow
	if enriched {
		// Additional evidence relevant to production and cost-down angles.
		_, prod := r.searcher.Search(ctx,
			fmt.Sprintf("%q manufacturing sourcing supplier co-packer 3pl fulfillment packaging", brand.Name), 10)
		_, siteProd := r.searcher.Search(ctx,
			fmt.Sprintf("site:%s \"made in\" manufacturing sourcing packaging fulfillment", hostOf(brand.Website)), 10)
		extraRows = toEvidenceRows(append(prod, siteProd...))
	}

	evidenceRows := toEvidenceRows(evidence)
	trafficRows := toEvidenceRows(traffic)

	catalog := r.fetcher.ProbeCatalog(ctx, brand.Website)
	metrics := ComputeSnapshotMetrics(brand.Category, evidenceRows, trafficRows,
		hostOf(brand.Website), catalog.SKUCount, catalog.Observed, catalog.MedianPriceUSD)

	deltaHeat := 0.0
	prev, err := r.store.PriorScorecard(ctx, brand.ID, snapshotWeek)
	if err == nil {
		deltaHeat = metrics.HeatScore - prev.HeatScore
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	// Confidence: breadth of sources plus whether the catalog was observable.
	uniqueSources := make(map[string]struct{})
	for _, row := range append(append([]evidenceRow{}, evidenceRows...), trafficRows...) {
		key := hostOf(row.URL)
		if key == "" {
			key = strings.ToLower(row.Source)
		}
		uniqueSources[key] = struct{}{}
	}
	uniqueURLs := make(map[string]struct{})
	for _, row := range evidenceRows {
		uniqueURLs[row.URL] = struct{}{}
	}
	catalogBonus := 0.0
	if catalog.Observed {
		catalogBonus = 0.14
	}
	confidence := clamp(
		0.38+
			math.Min(0.22, float64(len(uniqueURLs))/60)+
			math.Min(0.18, float64(len(uniqueSources))/40)+
			catalogBonus,
		0.25, 0.93)

	reasons := make([]string, 0, 3)
	if len(uniqueSources) >= 6 {
		reasons = append(reasons, "cross-source corroboration")
	} else {
		reasons = append(reasons, "limited cross-source corroboration")
	}
	if catalog.Observed {
		reasons = append(reasons, "commerce observability via product catalog")
	} else {
		reasons = append(reasons, "commerce observability limited")
	}
	if metrics.MomentumHits >= 2 {
		reasons = append(reasons, "momentum terms present")
	} else {
		reasons = append(reasons, "momentum terms sparse")
	}

	suggested := dealStructure(metrics.HeatScore, metrics.RiskScore, metrics.AsymmetryIndex, metrics.CapitalRequiredMUSD)

	err = r.store.UpsertScorecard(ctx, model.Scorecard{
		BrandID:                brand.ID,
		SnapshotWeek:           snapshotWeek,
		HeatScore:              round3(metrics.HeatScore),
		RiskScore:              round3(metrics.RiskScore),
		AsymmetryIndex:         round3(metrics.AsymmetryIndex),
		CapitalIntensity:       round3(metrics.CapitalIntensity),
		RevenueP10:             round3(metrics.RevenueP10),
		RevenueP50:             round3(metrics.RevenueP50),
		RevenueP90:             round3(metrics.RevenueP90),
		DeltaHeat:              round3(deltaHeat),
		Confidence:             round3(confidence),
		ConfidenceReasons:      reasons,
		SuggestedDealStructure: suggested,
		CapitalRequiredMUSD:    round3(metrics.CapitalRequiredMUSD),
	})
	if err != nil {
		return err
	}

	// Daily observations so sparklines show motion within a week.
	observed := r.now().UTC().Truncate(24 * time.Hour)
	values := metrics.timeseriesValues()
	for _, metricName := range timeseriesMetricOrder {
		err := r.store.UpsertTimeSeriesPoint(ctx, model.TimeSeriesPoint{
			BrandID:     brand.ID,
			Metric:      metricName,
			ObservedAt:  observed,
			Value:       round3(values[metricName]),
			Source:      "searxng",
			Reliability: round3(0.55 + confidence*0.4),
		})
		if err != nil {
			return err
		}
	}

	// Evidence: deduped by URL, a small baseline for every brand and deeper
	// retention for the enriched set.
	evidenceCap := 4
	if enriched {
		evidenceCap = 12
	}
	seen, err := r.store.EvidenceURLs(ctx, brand.ID)
	if err != nil {
		return err
	}
	candidates := append(append([]evidenceRow{}, evidenceRows...), extraRows...)
	if len(candidates) > evidenceCap {
		candidates = candidates[:evidenceCap]
	}
	for _, row := range candidates {
		if _, dup := seen[row.URL]; dup {
			continue
		}
		seen[row.URL] = struct{}{}
		title := truncate(cleanText(row.Title), 240)
		if title == "" {
			title = brand.Name
		}
		source := truncate(cleanText(row.Source), 120)
		if source == "" {
			source = "searxng"
		}
		err := r.store.AddEvidence(ctx, model.EvidenceCitation{
			BrandID:     brand.ID,
			Title:       title,
			URL:         truncate(cleanText(row.URL), 500),
			Snippet:     truncate(cleanText(row.Snippet), 600),
			Source:      source,
			Reliability: round3(sourceReliability(row.Source)),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Refresh builds or refreshes the current-week snapshot using only real web
// retrieval. No synthetic seeding is performed.
func (r *Refresher) Refresh(ctx context.Context) (model.RefreshSummary, error) {
	summary := model.RefreshSummary{Status: "ok"}
	snapshotWeek := MondayOfWeek(r.now())

	legacy, err := r.legacySyntheticPresent(ctx)
	if err != nil {
		return summary, err
	}
	if legacy {
		if r.cfg.AllowWipe {
			r.log.Warn("legacy synthetic data detected, wiping before rebuild")
			if err := r.store.WipeAll(ctx); err != nil {
				return summary, err
			}
			summary.Wiped = true
		} else {
			r.log.Warn("legacy synthetic data detected but wipe is disabled")
		}
	}

	existing, err := r.store.CountBrands(ctx)
	if err != nil {
		return summary, err
	}
	if existing < 5 {
		created, updated, err := r.buildUniverse(ctx)
		summary.Created, summary.Updated = created, updated
		if err != nil {
			return summary, err
		}
	}

	brands, err := r.store.ListBrands(ctx)
	if err != nil {
		return summary, err
	}
	if len(brands) == 0 {
		return summary, nil
	}

	// Backfill entity keys on older rows to improve dedupe.
	for i, b := range brands {
		if strings.TrimSpace(b.EntityKey) != "" {
			continue
		}
		key := entity.KeyFromName(b.Name)
		if key == "" {
			key = entity.DomainLabel(hostOf(b.Website))
		}
		brands[i].EntityKey = key
		if err := r.store.SaveBrand(ctx, brands[i]); err != nil {
			return summary, err
		}
	}

	enrich, err := r.enrichSet(ctx, brands)
	if err != nil {
		return summary, err
	}

	scorable := brands
	if len(scorable) > r.cfg.TargetBrands {
		scorable = scorable[:r.cfg.TargetBrands]
	}
	for _, brand := range scorable {
		_, enriched := enrich[brand.ID]
		if err := r.scoreBrand(ctx, brand, snapshotWeek, enriched); err != nil {
			return summary, err
		}
		summary.Snapshots++
	}

	summary.Brands, err = r.store.CountBrands(ctx)
	if err != nil {
		return summary, err
	}
	return summary, nil
}

// Reseed wipes everything and rebuilds the universe from scratch.
func (r *Refresher) Reseed(ctx context.Context) (model.RefreshSummary, error) {
	if err := r.store.WipeAll(ctx); err != nil {
		return model.RefreshSummary{Status: "ok"}, err
	}
	summary, err := r.Refresh(ctx)
	if err == nil {
		summary.Wiped = true
	}
	return summary, err
}
