package cli

import (
	"github.com/spf13/cobra"
)

type budgetStatus struct {
	DailyQueryBudget     int      `json:"daily_query_budget"`
	MonthlySpendLimitUSD float64  `json:"monthly_spend_limit_usd"`
	SearXNGBaseURL       string   `json:"searxng_base_url"`
	PaidProvidersEnabled []string `json:"paid_providers_enabled"`
}

// budgetCmd shows the configured retrieval budget and which paid providers
// have credentials. Counters are process-local and reset per run, so only the
// configuration is reported here.
var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Show the configured retrieval budget and enabled providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		status := budgetStatus{
			DailyQueryBudget:     cfg.Search.DailyQueryBudget,
			MonthlySpendLimitUSD: cfg.Search.MonthlySpendLimitUSD,
			SearXNGBaseURL:       cfg.Search.SearXNGBaseURL,
			PaidProvidersEnabled: []string{},
		}
		for _, p := range []struct {
			name string
			key  string
		}{
			{"brave", cfg.Search.BraveAPIKey},
			{"serpapi", cfg.Search.SerpAPIKey},
			{"google_cse", cfg.Search.GoogleCSEAPIKey},
			{"dataforseo", cfg.Search.DataForSEOLogin},
			{"opencorporates", cfg.Search.OpenCorporatesAPIKey},
		} {
			if p.key != "" {
				status.PaidProvidersEnabled = append(status.PaidProvidersEnabled, p.name)
			}
		}
		return printJSON(status)
	},
}

func init() {
	rootCmd.AddCommand(budgetCmd)
}
