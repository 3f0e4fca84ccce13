package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/matchd/internal/hashcheck"
)

var hashcheckCmd = &cobra.Command{
	Use:   "hashcheck",
	Short: "Validate hash integrity across datasets",
	Long: `Recompute email digests for shared addresses, compare stored hashes
across datasets, detect hashed mobile values, and fingerprint hash
algorithms. Writes the hash integrity report.`,
	RunE: runHashcheck,
}

func runHashcheck(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := hashcheck.NewAnalyzer(a.store, a.logger).Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("hash integrity analysis: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Email hashes: %d analyzed, %d valid (%.2f%%), %d invalid\n",
		result.Email.TotalRecords, result.Email.ValidHashes,
		result.Email.ValidationRate, result.Email.InvalidHashes)
	fmt.Fprintf(out, "Hash consistency: %d/%d matching (%.2f%%)\n",
		result.Consistency.HashMatches, result.Consistency.TotalMatches,
		result.Consistency.ConsistencyRate)
	if result.Mobile == nil {
		fmt.Fprintln(out, "No mobile hashes detected - mobile data appears to be plain text")
	}

	path, err := a.reportWriter().WriteHash(result)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nReport written to %s\n", path)
	return nil
}
