package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/matchd/internal/match"
	"github.com/fyrsmithlabs/matchd/internal/report"
)

var analyzeFields []string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run exact and compound match analysis",
	Long: `Measure exact overlap between the loaded datasets on identity
fields and compound keys, and write the match analysis report.

Examples:
  # Analyze with the configured fields
  matchd analyze --config matchd.yaml

  # Analyze specific fields only
  matchd analyze --fields email_std,mobile`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringSliceVar(&analyzeFields, "fields", nil, "fields to analyze (defaults to configured match fields)")
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	fields := analyzeFields
	if len(fields) == 0 {
		fields = a.cfg.Match.Fields
	}

	engine := match.NewEngine(a.store, a.logger)
	result, err := engine.Analyze(cmd.Context(), fields)
	if err != nil {
		return fmt.Errorf("match analysis: %w", err)
	}

	if err := report.ConsoleMatch(cmd.OutOrStdout(), a.labels(), result); err != nil {
		return err
	}

	path, err := a.reportWriter().WriteMatch(result)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nReport written to %s\n", path)
	return nil
}
