package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eidolonhq/eidolon/internal/model"
	"github.com/eidolonhq/eidolon/internal/scoring"
)

var (
	feedSort   string
	feedLimit  int
	feedSearch string
)

var validSortModes = map[string]model.SortMode{
	string(model.SortHeat):            model.SortHeat,
	string(model.SortAsymmetry):       model.SortAsymmetry,
	string(model.SortRisk):            model.SortRisk,
	string(model.SortRevenue):         model.SortRevenue,
	string(model.SortCapitalRequired): model.SortCapitalRequired,
}

// feedCmd prints the ranked feed for the latest snapshot week.
var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show the ranked brand feed for the latest snapshot week",
	RunE: func(cmd *cobra.Command, args []string) error {
		sortMode, ok := validSortModes[feedSort]
		if !ok {
			return fmt.Errorf("invalid sort mode %q (valid: heat, asymmetry, risk, revenue, capital_required)", feedSort)
		}
		if feedLimit < 1 {
			return fmt.Errorf("limit must be positive")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		resp, err := scoring.BuildFeed(cmd.Context(), st, sortMode, feedLimit, feedSearch)
		if err != nil {
			return err
		}
		return printJSON(resp)
	},
}

func init() {
	feedCmd.Flags().StringVar(&feedSort, "sort", string(model.SortHeat), "ranking column: heat, asymmetry, risk, revenue, capital_required")
	feedCmd.Flags().IntVar(&feedLimit, "limit", 50, "maximum rows")
	feedCmd.Flags().StringVar(&feedSearch, "search", "", "filter rows by name, category, region, or website tokens")

	rootCmd.AddCommand(feedCmd)
}
