package search

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/eidolonhq/eidolon/internal/model"
)

// SearXNG queries a self-hosted SearXNG aggregator. It is the zero-cost
// provider, so the router always tries it before any paid backend.
type SearXNG struct {
	baseURL    string
	engines    string // comma-separated engine restriction, optional
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
}

// NewSearXNG creates a SearXNG provider. An empty baseURL disables it.
func NewSearXNG(baseURL, engines, userAgent string, timeout time.Duration, maxBytes int64) *SearXNG {
	return &SearXNG{
		baseURL:    strings.TrimRight(baseURL, "/"),
		engines:    engines,
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		maxBytes:   maxBytes,
	}
}

func (s *SearXNG) Name() string          { return "searxng" }
func (s *SearXNG) Enabled() bool         { return s.baseURL != "" }
func (s *SearXNG) CostPerQuery() float64 { return 0.0 }
func (s *SearXNG) Reliability() float64  { return 0.62 }
func (s *SearXNG) Freshness() float64    { return 0.7 }

// Search queries the aggregator. Engines get rate-limited or CAPTCHA'd
// intermittently; if an explicit engine restriction returns nothing, the
// query is retried once without the restriction so SearXNG can fall back to
// whatever engines are currently healthy.
func (s *SearXNG) Search(ctx context.Context, query string, limit int) []model.SearchResult {
	if !s.Enabled() {
		return nil
	}

	body, err := s.fetch(ctx, query, s.engines)
	if err != nil {
		return nil
	}
	rows := gjson.GetBytes(body, "results").Array()
	if len(rows) == 0 && s.engines != "" {
		body, err = s.fetch(ctx, query, "")
		if err != nil {
			return nil
		}
		rows = gjson.GetBytes(body, "results").Array()
	}

	results := make([]model.SearchResult, 0, limit)
	for _, row := range rows {
		if len(results) >= limit {
			break
		}
		r := model.SearchResult{
			Title:         row.Get("title").String(),
			URL:           row.Get("url").String(),
			Snippet:       row.Get("content").String(),
			Source:        row.Get("engine").String(),
			PublishedDate: row.Get("publishedDate").String(),
			Category:      row.Get("category").String(),
		}
		if r.Title == "" {
			r.Title = "Untitled"
		}
		if r.Source == "" {
			r.Source = "searxng"
		}
		if score := row.Get("score"); score.Exists() {
			r.Score = score.Float()
			r.HasScore = true
		}
		for _, engine := range row.Get("engines").Array() {
			r.Engines = append(r.Engines, engine.String())
		}
		results = append(results, r)
	}
	return results
}

func (s *SearXNG) fetch(ctx context.Context, query, engines string) ([]byte, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("pageno", "1")
	params.Set("safesearch", "0")
	if engines != "" {
		params.Set("engines", engines)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errStatus(resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, s.maxBytes))
}

type errStatus int

func (e errStatus) Error() string { return "unexpected status " + http.StatusText(int(e)) }
