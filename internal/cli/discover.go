package cli

import (
	"github.com/spf13/cobra"

	"github.com/eidolonhq/eidolon/internal/discover"
)

var (
	discoverIndustry string
	discoverRegion   string
	discoverLimit    int
)

// discoverCmd runs an ad-hoc industry scouting pass. Results are printed and
// never persisted.
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Scout an industry for emerging consumer brands",
	Long: `Run a one-off discovery pass for an industry and optional region.

Discovery issues a small set of templated queries through the source
router, deduplicates hits per company, and prints heuristic fit,
momentum, risk, and asymmetry scores. Nothing is written to the store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		resp, err := discover.Discover(cmd.Context(), newSearcher(cfg), discoverIndustry, discoverRegion, discoverLimit)
		if err != nil {
			return err
		}
		return printJSON(resp)
	},
}

func init() {
	discoverCmd.Flags().StringVar(&discoverIndustry, "industry", "", "industry to scout (required)")
	discoverCmd.Flags().StringVar(&discoverRegion, "region", "", "optional region filter")
	discoverCmd.Flags().IntVar(&discoverLimit, "limit", 12, "maximum candidate rows")
	_ = discoverCmd.MarkFlagRequired("industry")

	rootCmd.AddCommand(discoverCmd)
}
