package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/matchd/internal/profile"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Profile the loaded datasets",
	Long: `Compute per-column null and distinct counts for both datasets and
investigate duplicated name keys. Writes the dataset profile report.`,
	RunE: runProfile,
}

func runProfile(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := profile.NewProfiler(a.store, a.logger).Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("profiling datasets: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d rows | %s: %d rows\n",
		a.cfg.Source.Name, result.Source.Rows,
		a.cfg.Target.Name, result.Target.Rows)
	fmt.Fprintf(out, "Duplicate name keys: %d (%s), %d (%s)\n",
		result.SourceDuplicates.DuplicateRows, a.cfg.Source.Name,
		result.TargetDuplicates.DuplicateRows, a.cfg.Target.Name)

	path, err := a.reportWriter().WriteProfile(result)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nReport written to %s\n", path)
	return nil
}
