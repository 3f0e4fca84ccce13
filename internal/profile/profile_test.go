package profile_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fyrsmithlabs/matchd/internal/profile"
	"github.com/fyrsmithlabs/matchd/internal/record"
	"github.com/fyrsmithlabs/matchd/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProfileStore(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()

	s, err := store.Open(filepath.Join(t.TempDir(), "profile.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	// Three JOHN SMITH (NSW) rows make the dominant duplicate group.
	source := []record.Record{
		record.Normalize(record.Raw{ID: "s1", FirstName: "John", Surname: "Smith", State: "NSW", EmailStd: "a@x.com"}),
		record.Normalize(record.Raw{ID: "s2", FirstName: "John", Surname: "Smith", State: "nsw"}),
		record.Normalize(record.Raw{ID: "s3", FirstName: "John", Surname: "Smith", State: "NSW"}),
		record.Normalize(record.Raw{ID: "s4", FirstName: "Jane", Surname: "Doe", State: "VIC"}),
		record.Normalize(record.Raw{ID: "s5", FirstName: "NoState", Surname: "Row"}),
	}
	target := []record.Record{
		record.Normalize(record.Raw{ID: "t1", FirstName: "Jane", Surname: "Doe", State: "VIC"}),
		record.Normalize(record.Raw{ID: "t2", FirstName: "Greg", Surname: "Hill", State: "QLD"}),
	}

	require.NoError(t, s.Reset(ctx, store.SourceTable))
	require.NoError(t, s.InsertBatch(ctx, store.SourceTable, source))
	require.NoError(t, s.Reset(ctx, store.TargetTable))
	require.NoError(t, s.InsertBatch(ctx, store.TargetTable, target))
	return s
}

func fieldFor(t *testing.T, tp profile.TableProfile, column string) profile.FieldProfile {
	t.Helper()
	for _, fp := range tp.Fields {
		if fp.Column == column {
			return fp
		}
	}
	t.Fatalf("no field profile for %s", column)
	return profile.FieldProfile{}
}

func TestProfilerRun(t *testing.T) {
	s := seedProfileStore(t)
	p := profile.NewProfiler(s, nil)

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, result.Source.Rows)
	assert.Equal(t, 2, result.Target.Rows)
	assert.Len(t, result.Source.Fields, len(record.Columns))

	email := fieldFor(t, result.Source, "email_std")
	assert.Equal(t, 1, email.NonNull)
	assert.Equal(t, 4, email.Nulls)
	assert.InDelta(t, 80.0, email.NullRate, 1e-9)
	assert.Equal(t, 1, email.Distinct)

	firstName := fieldFor(t, result.Source, "first_name")
	assert.Equal(t, 5, firstName.NonNull)
	assert.Equal(t, 3, firstName.Distinct) // JOHN, JANE, NOSTATE

	// State normalization collapses "nsw" into the JOHN SMITH (NSW) group.
	dup := result.SourceDuplicates
	assert.Equal(t, 4, dup.PopulatedRows)
	assert.Equal(t, 2, dup.UniqueKeys)
	assert.Equal(t, 2, dup.DuplicateRows)
	require.Len(t, dup.TopDuplicates, 1)
	assert.Equal(t, "JOHN SMITH (NSW)", dup.TopDuplicates[0].Name)
	assert.Equal(t, 3, dup.TopDuplicates[0].Count)

	assert.Empty(t, result.TargetDuplicates.TopDuplicates)
	assert.Equal(t, 2, result.TargetDuplicates.UniqueKeys)
	assert.Equal(t, 2, result.MaxUniqueMatches)
}
