package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eidolonhq/eidolon/internal/cache"
	"github.com/eidolonhq/eidolon/internal/model"
	"github.com/eidolonhq/eidolon/internal/search"
	"github.com/eidolonhq/eidolon/internal/store"
)

var (
	cfgFile string
	verbose bool

	log = logrus.New()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "eidolon",
	Short: "Eidolon - consumer brand signal aggregation and heuristic deal scoring",
	Long: `Eidolon aggregates public web-search signals about consumer brands and
turns them into weekly heuristic scorecards: heat, risk, asymmetry,
revenue bands, and suggested deal structures.

All scores are deterministic functions of retrieved evidence. Eidolon
estimates and ranks - it never verifies. Every number is a proxy to be
confirmed in diligence, not a fact.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("eidolon v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.eidolon/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home + "/.eidolon")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match EIDOLON_*
	viper.SetEnvPrefix("EIDOLON")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}

	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
}

// loadConfig layers the config file and environment over the defaults.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	return cfg, nil
}

func openStore(cfg *model.Config) (*store.Store, error) {
	return store.Open(cfg.Database.Path)
}

// newSearcher builds the budget-aware router behind a response cache, so
// repeated queries within the TTL never spend budget twice.
func newSearcher(cfg *model.Config) search.Searcher {
	router := search.NewRouter(cfg.Search, cfg.HTTP, log)

	var c cache.Cache
	if cfg.Search.CacheDir != "" {
		c = cache.NewLayeredCache(cfg.Search.CacheTTL, cfg.Search.CacheDir, cfg.Search.CacheTTL)
	} else {
		c = cache.NewMemoryCache(cfg.Search.CacheTTL)
	}
	return search.NewCachedSearcher(router, c, cfg.Search.CacheTTL, log)
}

// printJSON writes the command result to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
