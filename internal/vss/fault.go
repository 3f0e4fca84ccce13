package vss

import (
	"context"
	"fmt"

	"github.com/fyrsmithlabs/matchd/internal/store"
)

// embeddingBytes is the storage cost per vector component (float32).
const embeddingBytes = 4

// FaultAnalysis quantifies data quality issues that degrade similarity
// matching.
type FaultAnalysis struct {
	// Name quality issues in the source table.
	EmptyNames      int
	SingleCharNames int
	NumericNames    int

	// Geographic completeness issues in the source table.
	MissingSuburb   int
	MissingPostcode int

	// Matching behavior observed during the run.
	LowSimilarity      int // best hits below 0.90
	AmbiguousMatches   int
	ProcessingFailures int

	// Resource estimates for the vector space.
	TotalEmbeddings int
	MemoryMB        float64
	IndexMB         float64
}

// faultAnalysis combines store-level quality queries with the run's own
// matching observations.
func (a *Analyzer) faultAnalysis(ctx context.Context, result *Result) (*FaultAnalysis, error) {
	fa := &FaultAnalysis{
		LowSimilarity:      result.Buckets.Good + result.Buckets.Fair,
		AmbiguousMatches:   result.AmbiguousCount,
		ProcessingFailures: result.Failures,
		TotalEmbeddings:    result.SourceNames + result.TargetNames,
	}
	fa.MemoryMB = float64(fa.TotalEmbeddings*result.Dimension*embeddingBytes) / (1024 * 1024)
	fa.IndexMB = fa.MemoryMB * 1.5

	counts := []struct {
		dst   *int
		where string
	}{
		{&fa.EmptyNames, `full_name IS NULL OR TRIM(full_name) = ''`},
		{&fa.SingleCharNames, `LENGTH(TRIM(full_name)) = 1`},
		{&fa.NumericNames, `full_name IS NOT NULL AND full_name != '' AND full_name NOT GLOB '*[^0-9]*'`},
		{&fa.MissingSuburb, `suburb IS NULL OR TRIM(suburb) = ''`},
		{&fa.MissingPostcode, `postcode IS NULL OR TRIM(postcode) = ''`},
	}
	for _, c := range counts {
		query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, store.SourceTable, c.where)
		if err := a.store.DB().QueryRowContext(ctx, query).Scan(c.dst); err != nil {
			return nil, err
		}
	}
	return fa, nil
}
