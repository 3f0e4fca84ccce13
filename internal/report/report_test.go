package report_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/matchd/internal/config"
	"github.com/fyrsmithlabs/matchd/internal/hashcheck"
	"github.com/fyrsmithlabs/matchd/internal/match"
	"github.com/fyrsmithlabs/matchd/internal/profile"
	"github.com/fyrsmithlabs/matchd/internal/report"
	"github.com/fyrsmithlabs/matchd/internal/stats"
	"github.com/fyrsmithlabs/matchd/internal/vss"
)

func testLabels() report.Labels {
	return report.Labels{Source: "DataDirect", Target: "AliveData"}
}

func matchFixture() *match.Result {
	return &match.Result{
		SourceCount: 1200345,
		TargetCount: 890000,
		Direct: []match.FieldStats{
			{
				Field: "email_std", Description: "Standardized Email",
				Matches: 150000, SourceTotal: 800000, TargetTotal: 600000,
				SourceOnly: 650000, TargetOnly: 450000,
				SourceMatchRate: 18.75, TargetMatchRate: 25.0,
				JaccardIndex: 0.12, OverlapCoefficient: 0.25,
			},
		},
		Compound: []match.FieldStats{
			{
				Field: "NameSuburbPostcode", Description: "Name + Suburb + Postcode",
				Matches: 42000, SourceOnly: 700000, TargetOnly: 500000,
			},
		},
		Elapsed: 3 * time.Second,
	}
}

func TestWriteMatch(t *testing.T) {
	dir := t.TempDir()
	w := report.NewWriter(dir, testLabels(), nil)

	path, err := w.WriteMatch(matchFixture())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, report.MatchFileName), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "# Match Analysis Report")
	assert.Contains(t, text, "DataDirect (1,200,345 records)")
	assert.Contains(t, text, "Standardized Email")
	assert.Contains(t, text, "Name + Suburb + Postcode")
	assert.Contains(t, text, "0.1200")
	assert.Contains(t, text, "0.2500")
	assert.Contains(t, text, "Run ID: "+w.RunID())
}

func TestWriteHash(t *testing.T) {
	dir := t.TempDir()
	w := report.NewWriter(dir, testLabels(), nil)

	result := &hashcheck.Result{
		Email: hashcheck.Validation{
			Field: "email", TotalRecords: 1000, ValidHashes: 990,
			InvalidHashes: 10, ValidationRate: 99.0,
			Samples: []hashcheck.Mismatch{{
				Email:      "BOB@EXAMPLE.COM",
				Expected:   "AABBCCDDEEFF00112233445566778899AABBCCDDEEFF00112233445566778899",
				SourceHash: "0000000000000000000000000000000000000000000000000000000000000000",
				TargetHash: "AABBCCDDEEFF00112233445566778899AABBCCDDEEFF00112233445566778899",
			}},
		},
		Consistency: hashcheck.Consistency{
			TotalMatches: 1000, HashMatches: 990, HashMismatches: 10, ConsistencyRate: 99.0,
		},
		Lengths:  []hashcheck.LengthBucket{{Table: "source_data", Length: 64, Count: 1000}},
		Patterns: []hashcheck.PatternBucket{{Table: "source_data", Pattern: "SHA256_UPPER", Count: 1000}},
	}

	path, err := w.WriteHash(result)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "# Hash Integrity Report")
	assert.Contains(t, text, "99.00%")
	// Digests are truncated in the sample table.
	assert.Contains(t, text, "AABBCCDDEEFF0011...")
	assert.NotContains(t, text, "AABBCCDDEEFF00112233445566778899AABBCCDDEEFF")
	assert.Contains(t, text, "plain text format")
	assert.Contains(t, text, "SHA256_UPPER")
	assert.Contains(t, text, "DataDirect")
}

func TestWriteVSS(t *testing.T) {
	dir := t.TempDir()
	w := report.NewWriter(dir, testLabels(), nil)

	result := &vss.Result{
		SourceNames: 100000, TargetNames: 95000,
		Analyzed: 100000, Matches: 7500, MatchRate: 0.075,
		HighSimilarity: 5000, MediumSimilarity: 2500,
		Buckets: vss.Buckets{Perfect: 1250, Excellent: 2100, VeryGood: 1650, Good: 1500, Fair: 1000},
		Similarity: stats.Summary{
			Count: 7500, Mean: 0.93, Median: 0.94, StdDev: 0.04,
			Min: 0.85, Max: 1.0, P5: 0.86, P95: 0.995,
		},
		Samples: []vss.SampleMatch{
			{SourceName: "JOHN SMITH", TargetName: "JON SMITH", Suburb: "NEWTOWN", Postcode: "2042", Similarity: 0.92},
		},
		Ambiguous: []vss.AmbiguousMatch{
			{SourceName: "JOHN SMITH", Hits: []vss.Hit{
				{Name: "JOHN SMITH", Similarity: 0.995},
				{Name: "JON SMITH", Similarity: 0.92},
			}},
		},
		AmbiguousCount: 320,
		Dimension:      384,
		Fault: &vss.FaultAnalysis{
			EmptyNames: 12, SingleCharNames: 3, NumericNames: 1,
			MissingSuburb: 4500, MissingPostcode: 3200,
			LowSimilarity: 2500, AmbiguousMatches: 320,
			TotalEmbeddings: 195000, MemoryMB: 285.6, IndexMB: 428.4,
		},
		Elapsed: 90 * time.Second,
	}

	path, err := w.WriteVSS(result, config.NewDefault().VSS)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "# VSS Name Similarity Analysis Report")
	assert.Contains(t, text, "sentence-transformers/all-MiniLM-L6-v2 (384 dimensions)")
	assert.Contains(t, text, "Match rate: 7.50%")
	assert.Contains(t, text, "1,250")
	assert.Contains(t, text, ">= 0.99")
	assert.Contains(t, text, "Fault Detection Analysis")
	assert.Contains(t, text, "Missing suburb: 4,500 records")
	assert.Contains(t, text, "Vector memory: 285.6 MB")
	assert.Contains(t, text, "JON SMITH (similarity: 0.9200)")
}

func TestWriteProfile(t *testing.T) {
	dir := t.TempDir()
	w := report.NewWriter(dir, testLabels(), nil)

	result := &profile.Result{
		Source: profile.TableProfile{
			Table: "source_data", Rows: 1000,
			Fields: []profile.FieldProfile{
				{Column: "email_std", NonNull: 800, Nulls: 200, NullRate: 20.0, Distinct: 790, DistinctRate: 98.75},
			},
		},
		Target: profile.TableProfile{Table: "target_data", Rows: 500},
		SourceDuplicates: profile.DuplicateStats{
			Table: "source_data", PopulatedRows: 900, UniqueKeys: 850, DuplicateRows: 50,
			TopDuplicates: []profile.DuplicateGroup{{Name: "JOHN SMITH (NSW)", Count: 12}},
		},
		TargetDuplicates: profile.DuplicateStats{Table: "target_data", PopulatedRows: 500, UniqueKeys: 500},
		MaxUniqueMatches: 500,
	}

	path, err := w.WriteProfile(result)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "# Dataset Profile Report")
	assert.Contains(t, text, "## DataDirect Columns")
	assert.Contains(t, text, "## AliveData Columns")
	assert.Contains(t, text, "JOHN SMITH (NSW)")
	assert.Contains(t, text, "unique name-key matches: 500")
}

func TestConsoleMatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.ConsoleMatch(&buf, testLabels(), matchFixture()))

	out := buf.String()
	assert.Contains(t, out, "DataDirect: 1,200,345 records")
	assert.Contains(t, out, "Standardized Email")
	assert.Contains(t, out, "150,000")
}

func TestConsoleVSS(t *testing.T) {
	var buf bytes.Buffer
	result := &vss.Result{
		SourceNames: 10, TargetNames: 8,
		Analyzed: 10, Matches: 4, MatchRate: 0.4,
		Buckets: vss.Buckets{Perfect: 1, VeryGood: 3},
	}
	require.NoError(t, report.ConsoleVSS(&buf, testLabels(), result))

	out := buf.String()
	assert.Contains(t, out, "Match rate")
	assert.Contains(t, out, "40.00%")
}
