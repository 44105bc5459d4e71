package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eidolonhq/eidolon/internal/fetch"
	"github.com/eidolonhq/eidolon/internal/ingest"
	"github.com/eidolonhq/eidolon/internal/store"
)

var reseedYes bool

// refreshCmd runs one universe refresh pass: discover candidate brands if the
// universe is thin, then recompute this week's scorecards.
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the brand universe and recompute weekly scorecards",
	Long: `Run one full refresh pass against live retrieval:

1. Detect and clear legacy synthetic seed data (when allow_wipe is set).
2. Build the candidate universe from the fixed query lanes if the store
   is nearly empty.
3. Retrieve fresh evidence per brand and recompute this week's scorecard.

Re-running within the same ISO week overwrites snapshots in place.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, st, err := newRefresher()
		if err != nil {
			return err
		}
		defer st.Close()

		summary, err := r.Refresh(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(summary)
	},
}

// reseedCmd wipes everything and rebuilds from live retrieval.
var reseedCmd = &cobra.Command{
	Use:   "reseed",
	Short: "Wipe all stored data and rebuild the universe from scratch",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !reseedYes {
			return fmt.Errorf("reseed deletes all brands, scorecards, evidence, and observations; re-run with --yes to confirm")
		}

		r, st, err := newRefresher()
		if err != nil {
			return err
		}
		defer st.Close()

		summary, err := r.Reseed(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(summary)
	},
}

func newRefresher() (*ingest.Refresher, *store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	st, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	fetcher := fetch.NewSiteFetcher(cfg.HTTP, log)
	return ingest.NewRefresher(st, newSearcher(cfg), fetcher, cfg.Refresh, log), st, nil
}

func init() {
	reseedCmd.Flags().BoolVar(&reseedYes, "yes", false, "confirm destructive reseed")

	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(reseedCmd)
}
