package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eidolonhq/eidolon/internal/llm"
	"github.com/eidolonhq/eidolon/internal/scoring"
)

var (
	askMode     string
	askQuestion string
)

// brandCmd groups per-brand inspection commands.
var brandCmd = &cobra.Command{
	Use:   "brand",
	Short: "Inspect a single brand",
}

var brandShowCmd = &cobra.Command{
	Use:   "show <brand-id>",
	Short: "Show the full dossier for one brand",
	Long: `Assemble the full brand dossier: latest scorecard, retained evidence,
signal snapshot, engagement breakdown, financial inference, risk scan,
production cost-down options, and the suggested deal structure.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		profile, err := scoring.BuildBrandProfile(cmd.Context(), st, args[0])
		if err != nil {
			return fmt.Errorf("brand %s: %w", args[0], err)
		}
		return printJSON(profile)
	},
}

var brandTimeseriesCmd = &cobra.Command{
	Use:   "timeseries <brand-id>",
	Short: "Show all stored metric observations for one brand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		resp, err := scoring.Timeseries(cmd.Context(), st, args[0])
		if err != nil {
			return err
		}
		return printJSON(resp)
	},
}

// brandAskCmd routes a free-form question through the grounded analyst.
// Without a configured provider it still answers deterministically from the
// computed profile.
var brandAskCmd = &cobra.Command{
	Use:   "ask <brand-id>",
	Short: "Ask the grounded analyst about one brand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		profile, err := scoring.BuildBrandProfile(cmd.Context(), st, args[0])
		if err != nil {
			return fmt.Errorf("brand %s: %w", args[0], err)
		}

		provider, err := llm.NewProvider(cfg.LLM)
		if err != nil {
			return err
		}
		if provider == nil {
			return printJSON(llm.Fallback(&profile, askMode))
		}

		resp, err := provider.Analyze(cmd.Context(), llm.AnalyzeRequest{
			Profile:  &profile,
			Mode:     askMode,
			Question: askQuestion,
		})
		if err != nil {
			return err
		}
		return printJSON(resp)
	},
}

func init() {
	brandAskCmd.Flags().StringVar(&askMode, "mode", llm.ModeAnalysis, "output shape: analysis, memo, diligence, production_plan")
	brandAskCmd.Flags().StringVar(&askQuestion, "question", "Summarize the opportunity and the next diligence steps.", "question for the analyst")

	brandCmd.AddCommand(brandShowCmd)
	brandCmd.AddCommand(brandTimeseriesCmd)
	brandCmd.AddCommand(brandAskCmd)
	rootCmd.AddCommand(brandCmd)
}
