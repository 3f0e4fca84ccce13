package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/matchd/internal/embeddings"
	"github.com/fyrsmithlabs/matchd/internal/report"
	"github.com/fyrsmithlabs/matchd/internal/vss"
)

var (
	vssThreshold     float64
	vssMaxRecords    int
	vssFaultAnalysis bool
)

var vssCmd = &cobra.Command{
	Use:   "vss",
	Short: "Find fuzzy name matches with vector similarity search",
	Long: `Embed distinct names with their location context, index the target
dataset, and query every source name for similar candidates. Writes the
name similarity report, with fault analysis when enabled.

Examples:
  # Run with configured settings
  matchd vss --config matchd.yaml

  # Higher precision fault run
  matchd vss --threshold 0.9 --fault-analysis`,
	RunE: runVSS,
}

func init() {
	vssCmd.Flags().Float64Var(&vssThreshold, "threshold", 0, "similarity threshold override (0 keeps configured value)")
	vssCmd.Flags().IntVar(&vssMaxRecords, "max-records", 0, "max distinct names per dataset (0 keeps configured value)")
	vssCmd.Flags().BoolVar(&vssFaultAnalysis, "fault-analysis", false, "force detailed fault analysis")
}

func runVSS(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.cfg.VSS
	if vssThreshold > 0 {
		cfg.SimilarityThreshold = vssThreshold
	}
	if vssMaxRecords > 0 {
		cfg.MaxRecords = vssMaxRecords
	}
	if vssFaultAnalysis {
		cfg.DetailedAnalysis = true
	}

	provider, err := embeddings.NewProvider(embeddings.Config{
		Model:    cfg.Model,
		CacheDir: cfg.CacheDir,
	})
	if err != nil {
		return fmt.Errorf("creating embedding provider: %w", err)
	}
	defer func() {
		if err := provider.Close(); err != nil {
			a.logger.Warn("closing embedding provider", zap.Error(err))
		}
	}()

	result, err := vss.NewAnalyzer(cfg, a.store, provider, a.logger).Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("name similarity analysis: %w", err)
	}

	if err := report.ConsoleVSS(cmd.OutOrStdout(), a.labels(), result); err != nil {
		return err
	}

	path, err := a.reportWriter().WriteVSS(result, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nReport written to %s\n", path)
	return nil
}
