package model

import "time"

// Config is the full runtime configuration, loadable from
// ~/.eidolon/config.yaml and EIDOLON_* environment variables.
type Config struct {
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Search   SearchConfig   `yaml:"search" mapstructure:"search"`
	HTTP     HTTPConfig     `yaml:"http" mapstructure:"http"`
	Refresh  RefreshConfig  `yaml:"refresh" mapstructure:"refresh"`
	LLM      LLMConfig      `yaml:"llm" mapstructure:"llm"`
}

// DatabaseConfig locates the sqlite database file.
type DatabaseConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// SearchConfig configures the provider pool and the shared retrieval budget.
type SearchConfig struct {
	SearXNGBaseURL string `yaml:"searxng_base_url" mapstructure:"searxng_base_url"`
	// Comma-separated engine restriction passed through to SearXNG. Engines
	// that rarely CAPTCHA in a self-hosted setup.
	SearXNGEngines string `yaml:"searxng_engines" mapstructure:"searxng_engines"`

	DailyQueryBudget     int     `yaml:"daily_query_budget" mapstructure:"daily_query_budget"`
	MonthlySpendLimitUSD float64 `yaml:"monthly_spend_limit_usd" mapstructure:"monthly_spend_limit_usd"`

	// CacheTTL bounds how long identical query responses are replayed
	// without spending budget. CacheDir adds a disk layer that survives
	// process restarts; empty keeps the cache memory-only.
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	CacheDir string        `yaml:"cache_dir" mapstructure:"cache_dir"`

	BraveAPIKey          string `yaml:"brave_api_key" mapstructure:"brave_api_key"`
	SerpAPIKey           string `yaml:"serpapi_api_key" mapstructure:"serpapi_api_key"`
	GoogleCSEAPIKey      string `yaml:"google_cse_api_key" mapstructure:"google_cse_api_key"`
	DataForSEOLogin      string `yaml:"dataforseo_login" mapstructure:"dataforseo_login"`
	OpenCorporatesAPIKey string `yaml:"opencorporates_api_key" mapstructure:"opencorporates_api_key"`
}

// HTTPConfig bounds all outbound calls. Everything here fails closed: a
// timeout or transport error yields an empty result, never a propagated error.
type HTTPConfig struct {
	UserAgent       string        `yaml:"user_agent" mapstructure:"user_agent"`
	SearchTimeout   time.Duration `yaml:"search_timeout" mapstructure:"search_timeout"`
	MetadataTimeout time.Duration `yaml:"metadata_timeout" mapstructure:"metadata_timeout"`
	CatalogTimeout  time.Duration `yaml:"catalog_timeout" mapstructure:"catalog_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	// Per-host rate for site metadata fetches.
	FetchRatePerSecond float64 `yaml:"fetch_rate_per_second" mapstructure:"fetch_rate_per_second"`
	RespectRobots      bool    `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// RefreshConfig tunes the weekly universe refresh.
type RefreshConfig struct {
	TargetBrands int `yaml:"target_brands" mapstructure:"target_brands"`
	EnrichTopN   int `yaml:"enrich_top_n" mapstructure:"enrich_top_n"`
	// FetchWorkers bounds concurrent metadata fetches during a universe
	// build. Per-host rate limiting still applies underneath.
	FetchWorkers int `yaml:"fetch_workers" mapstructure:"fetch_workers"`
	// AllowWipe gates the legacy synthetic-data detector. When false, stale
	// seed data is reported but never destructively cleared.
	AllowWipe bool `yaml:"allow_wipe" mapstructure:"allow_wipe"`
}

// LLMConfig configures the optional memo summarizer. Disabled unless a
// provider is set; summaries never affect scoring.
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // "openai", "openrouter", ""
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	APIKey    string `yaml:"api_key" mapstructure:"api_key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "eidolon.sqlite",
		},
		Search: SearchConfig{
			SearXNGBaseURL:       "http://localhost:8080",
			SearXNGEngines:       "duckduckgo,brave,seznam,bing",
			DailyQueryBudget:     500,
			MonthlySpendLimitUSD: 300.0,
			CacheTTL:             6 * time.Hour,
		},
		HTTP: HTTPConfig{
			UserAgent:          "eidolon/0.1 (+https://github.com/eidolonhq/eidolon)",
			SearchTimeout:      10 * time.Second,
			MetadataTimeout:    7 * time.Second,
			CatalogTimeout:     10 * time.Second,
			MaxBodyBytes:       2_000_000,
			FetchRatePerSecond: 2.0,
			RespectRobots:      true,
		},
		Refresh: RefreshConfig{
			TargetBrands: 200,
			EnrichTopN:   30,
			FetchWorkers: 6,
			AllowWipe:    true,
		},
		LLM: LLMConfig{
			Provider:  "",
			BaseURL:   "https://openrouter.ai/api/v1",
			Model:     "meta-llama/llama-3.1-8b-instruct",
			MaxTokens: 1200,
			Timeout:   30,
		},
	}
}
