package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/fyrsmithlabs/matchd/internal/match"
	"github.com/fyrsmithlabs/matchd/internal/vss"
)

// ConsoleMatch prints a terminal summary table of match analysis results.
func ConsoleMatch(w io.Writer, labels Labels, result *match.Result) error {
	fmt.Fprintf(w, "%s: %s records | %s: %s records\n\n",
		labels.Source, comma(result.SourceCount),
		labels.Target, comma(result.TargetCount))

	table := tablewriter.NewTable(w)
	table.Header("Field", "Matches", labels.Source+" Only", labels.Target+" Only", "Jaccard", "Overlap")
	for _, fs := range append(append([]match.FieldStats{}, result.Direct...), result.Compound...) {
		if err := table.Append(
			fs.Description,
			comma(fs.Matches),
			comma(fs.SourceOnly),
			comma(fs.TargetOnly),
			ratio(fs.JaccardIndex),
			ratio(fs.OverlapCoefficient),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

// ConsoleVSS prints a terminal summary of the name similarity run.
func ConsoleVSS(w io.Writer, labels Labels, result *vss.Result) error {
	fmt.Fprintf(w, "Indexed %s %s names and %s %s names\n\n",
		comma(result.SourceNames), labels.Source,
		comma(result.TargetNames), labels.Target)

	table := tablewriter.NewTable(w)
	table.Header("Metric", "Value")
	rows := [][]string{
		{"Names analyzed", comma(result.Analyzed)},
		{"Matches found", comma(result.Matches)},
		{"Match rate", percent(result.MatchRate * 100)},
		{"Perfect (>=0.99)", comma(result.Buckets.Perfect)},
		{"Excellent (0.95-0.99)", comma(result.Buckets.Excellent)},
		{"Very good (0.90-0.95)", comma(result.Buckets.VeryGood)},
		{"Good (0.85-0.90)", comma(result.Buckets.Good)},
		{"Fair (0.80-0.85)", comma(result.Buckets.Fair)},
		{"Ambiguous names", comma(result.AmbiguousCount)},
		{"Processing failures", comma(result.Failures)},
	}
	for _, row := range rows {
		if err := table.Append(row[0], row[1]); err != nil {
			return err
		}
	}
	return table.Render()
}
