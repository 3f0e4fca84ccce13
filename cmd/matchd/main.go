// Package main implements the matchd CLI for comparing record datasets:
// loading, exact and compound matching, hash validation, profiling, and
// vector-similarity name matching.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/matchd/internal/config"
	"github.com/fyrsmithlabs/matchd/internal/logging"
	"github.com/fyrsmithlabs/matchd/internal/report"
	"github.com/fyrsmithlabs/matchd/internal/store"
)

var (
	// configPath is the optional YAML config file.
	configPath string
	// version information, set via ldflags at build time.
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "matchd",
	Short: "Dataset comparison and record matching toolkit",
	Long: `matchd compares two record datasets: it loads them into an analysis
store, measures exact and compound field overlap, validates hashed PII,
profiles data quality, and finds fuzzy name matches with vector similarity
search.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (YAML)")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(hashcheckCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(vssCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "matchd by Fyrsmith Labs\n")
		fmt.Fprintf(cmd.OutOrStdout(), "Version:    %s\n", version)
		fmt.Fprintf(cmd.OutOrStdout(), "Commit:     %s\n", gitCommit)
		fmt.Fprintf(cmd.OutOrStdout(), "Build Date: %s\n", buildDate)
	},
}

// app bundles the shared dependencies every subcommand needs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger, err := logging.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	s, err := store.Open(cfg.Store.Path, logger)
	if err != nil {
		logger.Sync() //nolint:errcheck
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return &app{cfg: cfg, logger: logger, store: s}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing store", zap.Error(err))
	}
	a.logger.Sync() //nolint:errcheck
}

func (a *app) labels() report.Labels {
	return report.Labels{Source: a.cfg.Source.Name, Target: a.cfg.Target.Name}
}

func (a *app) reportWriter() *report.Writer {
	return report.NewWriter(a.cfg.Reports.Dir, a.labels(), a.logger)
}
