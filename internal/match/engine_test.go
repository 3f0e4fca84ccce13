package match_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fyrsmithlabs/matchd/internal/match"
	"github.com/fyrsmithlabs/matchd/internal/record"
	"github.com/fyrsmithlabs/matchd/internal/store"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestEngine loads a small known dataset pair:
//
// source: 4 records; target: 3 records.
//   - JOHN SMITH appears on both sides (same email, same suburb/postcode)
//   - JANE DOE appears on both sides by mobile only
//   - ALAN WU exists only in source
//   - GREG HILL exists only in target
func newTestEngine(t *testing.T) (*match.Engine, *store.Store) {
	t.Helper()
	ctx := context.Background()

	s, err := store.Open(filepath.Join(t.TempDir(), "match.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	source := []record.Record{
		record.Normalize(record.Raw{
			ID: "s1", FirstName: "John", Surname: "Smith",
			EmailStd: "john@example.com", EmailHash: "HASH-JOHN",
			Suburb: "Newtown", State: "NSW", Postcode: "2042",
		}),
		record.Normalize(record.Raw{
			ID: "s2", FirstName: "Jane", Surname: "Doe",
			Mobile: "0412345678", Suburb: "Carlton", Postcode: "3053",
		}),
		record.Normalize(record.Raw{
			ID: "s3", FirstName: "Alan", Surname: "Wu",
			EmailStd: "alan@example.com", Suburb: "Perth", Postcode: "6000",
		}),
		record.Normalize(record.Raw{
			ID: "s4", Surname: "Nameless",
		}),
	}
	target := []record.Record{
		record.Normalize(record.Raw{
			ID: "t1", FirstName: "John", Surname: "Smith",
			EmailStd: "JOHN@EXAMPLE.COM", EmailHash: "hash-john",
			Suburb: "NEWTOWN", State: "NSW", Postcode: "2042",
		}),
		record.Normalize(record.Raw{
			ID: "t2", FirstName: "Jane", Surname: "Doe",
			Mobile: "0412345678", Suburb: "Fitzroy", Postcode: "3065",
		}),
		record.Normalize(record.Raw{
			ID: "t3", FirstName: "Greg", Surname: "Hill",
			EmailStd: "greg@example.com",
		}),
	}

	require.NoError(t, s.Reset(ctx, store.SourceTable))
	require.NoError(t, s.InsertBatch(ctx, store.SourceTable, source))
	require.NoError(t, s.Reset(ctx, store.TargetTable))
	require.NoError(t, s.InsertBatch(ctx, store.TargetTable, target))
	require.NoError(t, s.CreateIndexes(ctx, store.SourceTable))
	require.NoError(t, s.CreateIndexes(ctx, store.TargetTable))

	return match.NewEngine(s, nil), s
}

func statsFor(t *testing.T, results []match.FieldStats, field string) match.FieldStats {
	t.Helper()
	for _, fs := range results {
		if fs.Field == field {
			return fs
		}
	}
	t.Fatalf("no stats for field %s", field)
	return match.FieldStats{}
}

func TestAnalyzeDirectFields(t *testing.T) {
	engine, _ := newTestEngine(t)

	result, err := engine.Analyze(context.Background(),
		[]string{"full_name", "email_std", "email_hash", "mobile"})
	require.NoError(t, err)

	assert.Equal(t, 4, result.SourceCount)
	assert.Equal(t, 3, result.TargetCount)

	email := statsFor(t, result.Direct, "email_std")
	assert.Equal(t, 1, email.Matches)
	assert.Equal(t, 2, email.SourceTotal)
	assert.Equal(t, 2, email.TargetTotal)
	assert.Equal(t, 1, email.SourceOnly)
	assert.Equal(t, 1, email.TargetOnly)
	assert.InDelta(t, 50.0, email.SourceMatchRate, 1e-9)
	assert.InDelta(t, 1.0/3.0, email.JaccardIndex, 1e-9)
	assert.InDelta(t, 0.5, email.OverlapCoefficient, 1e-9)

	hash := statsFor(t, result.Direct, "email_hash")
	assert.Equal(t, 1, hash.Matches, "hash comparison is case-insensitive after normalization")

	mobile := statsFor(t, result.Direct, "mobile")
	assert.Equal(t, 1, mobile.Matches)

	fullName := statsFor(t, result.Direct, "full_name")
	assert.Equal(t, 2, fullName.Matches)
	assert.Equal(t, 1, fullName.SourceOnly) // ALAN WU; NAMELESS has no full_name
	assert.Equal(t, 1, fullName.TargetOnly) // GREG HILL
}

func TestAnalyzeCompoundPatterns(t *testing.T) {
	engine, _ := newTestEngine(t)

	result, err := engine.Analyze(context.Background(), []string{"full_name"})
	require.NoError(t, err)
	require.Len(t, result.Compound, 4)

	distinct := statsFor(t, result.Compound, "FullNameDistinct")
	assert.Equal(t, 2, distinct.Matches)
	assert.Equal(t, 3, distinct.SourceTotal)
	assert.Equal(t, 3, distinct.TargetTotal)
	assert.Equal(t, 1, distinct.SourceOnly) // ALAN WU
	assert.Equal(t, 1, distinct.TargetOnly) // GREG HILL

	nameSuburbPostcode := statsFor(t, result.Compound, "NameSuburbPostcode")
	assert.Equal(t, 1, nameSuburbPostcode.Matches) // only JOHN SMITH shares suburb+postcode
	// JANE DOE moved suburbs, ALAN WU has no counterpart at all.
	assert.Equal(t, 2, nameSuburbPostcode.SourceOnly)
	assert.Equal(t, 1, nameSuburbPostcode.TargetOnly)

	nameSuburb := statsFor(t, result.Compound, "NameSuburb")
	assert.Equal(t, 1, nameSuburb.Matches)
	// Totals are gated on the full name+suburb+postcode population.
	assert.Equal(t, 3, nameSuburb.SourceTotal)
	assert.Equal(t, 2, nameSuburb.SourceOnly)
	assert.Equal(t, 1, nameSuburb.TargetOnly)

	withEmail := statsFor(t, result.Compound, "NameSuburbPostcodeEmail")
	assert.Equal(t, 1, withEmail.Matches)
	assert.Equal(t, 1, withEmail.SourceTotal)
	assert.Zero(t, withEmail.SourceOnly)
	assert.Zero(t, withEmail.TargetOnly)
}

func TestAnalyzeEmptyField(t *testing.T) {
	engine, _ := newTestEngine(t)

	// landline is unpopulated on both sides: zero everything, no error.
	result, err := engine.Analyze(context.Background(), []string{"landline"})
	require.NoError(t, err)

	landline := statsFor(t, result.Direct, "landline")
	assert.Zero(t, landline.Matches)
	assert.Zero(t, landline.SourceTotal)
	assert.Zero(t, landline.SourceMatchRate)
	assert.Zero(t, landline.JaccardIndex)
}

func TestAnalyzeRejectsUnknownField(t *testing.T) {
	engine, _ := newTestEngine(t)
	_, err := engine.Analyze(context.Background(), []string{"password"})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrUnknownColumn)
}

func TestExtractUnique(t *testing.T) {
	engine, _ := newTestEngine(t)
	out := filepath.Join(t.TempDir(), "unique.parquet")

	// Join on full_name only: ALAN WU is the only fully-keyed source record
	// with no target counterpart.
	result, err := engine.ExtractUnique(context.Background(), []string{"full_name"}, out)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Extracted)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	info, err := f.Stat()
	require.NoError(t, err)

	rows, err := parquet.Read[match.ExportRecord](f, info.Size())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ALAN WU", rows[0].FullName)
	assert.Equal(t, "s3", rows[0].ID)
}

func TestExtractUniqueRequiresJoinFields(t *testing.T) {
	engine, _ := newTestEngine(t)
	_, err := engine.ExtractUnique(context.Background(), nil, "out.parquet")
	require.Error(t, err)
}
