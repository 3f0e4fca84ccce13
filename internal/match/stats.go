// Package match implements the direct-field and compound match analysis
// between the two datasets in the analysis store.
//
// For every match pattern the engine counts inner-join matches and both
// anti-join exclusives, then derives match rates and the set-similarity
// statistics (Jaccard index, overlap coefficient) the reports are built
// from.
package match

import (
	"time"

	"github.com/fyrsmithlabs/matchd/internal/stats"
)

// FieldStats captures the outcome of one match pattern.
type FieldStats struct {
	// Field is the canonical column (direct) or pattern name (compound).
	Field string
	// Description is the human-readable pattern label used in reports.
	Description string

	Matches     int
	SourceTotal int
	TargetTotal int
	SourceOnly  int
	TargetOnly  int

	// SourceMatchRate and TargetMatchRate are percentages of each side's
	// populated rows that found a match.
	SourceMatchRate float64
	TargetMatchRate float64

	JaccardIndex       float64
	OverlapCoefficient float64

	Elapsed time.Duration
}

// finalize derives rates and similarity statistics from the raw counts.
func (f *FieldStats) finalize() {
	f.SourceMatchRate = stats.Rate(f.Matches, f.SourceTotal)
	f.TargetMatchRate = stats.Rate(f.Matches, f.TargetTotal)
	f.JaccardIndex = stats.Jaccard(f.Matches, f.SourceTotal, f.TargetTotal)
	f.OverlapCoefficient = stats.Overlap(f.Matches, f.SourceTotal, f.TargetTotal)
}

// Result is the full outcome of an analysis run.
type Result struct {
	SourceCount int
	TargetCount int
	Direct      []FieldStats
	Compound    []FieldStats
	Elapsed     time.Duration
}
