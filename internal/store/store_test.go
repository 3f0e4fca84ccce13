package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fyrsmithlabs/matchd/internal/record"
	"github.com/fyrsmithlabs/matchd/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecords() []record.Record {
	return []record.Record{
		record.Normalize(record.Raw{
			ID: "1", FirstName: "John", Surname: "Smith",
			EmailStd: "john@example.com", Suburb: "Newtown", State: "NSW", Postcode: "2042",
		}),
		record.Normalize(record.Raw{
			ID: "2", FirstName: "Jane", Surname: "Doe",
			Mobile: "0412345678", Suburb: "Carlton", State: "VIC", Postcode: "3053",
		}),
		record.Normalize(record.Raw{
			ID: "3", Surname: "Lee",
		}),
	}
}

func TestStoreResetAndInsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Reset(ctx, store.SourceTable))
	require.NoError(t, s.InsertBatch(ctx, store.SourceTable, testRecords()))

	count, err := s.Count(ctx, store.SourceTable)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// Reset wipes previous contents.
	require.NoError(t, s.Reset(ctx, store.SourceTable))
	count, err = s.Count(ctx, store.SourceTable)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStoreNonNullAndDistinctCounts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Reset(ctx, store.SourceTable))
	recs := testRecords()
	// Two records share an email to exercise distinct counting.
	recs = append(recs, record.Normalize(record.Raw{
		ID: "4", FirstName: "Johnny", Surname: "Smith", EmailStd: "JOHN@EXAMPLE.COM",
	}))
	require.NoError(t, s.InsertBatch(ctx, store.SourceTable, recs))

	nonNull, err := s.NonNullCount(ctx, store.SourceTable, "email_std")
	require.NoError(t, err)
	assert.Equal(t, 2, nonNull)

	distinct, err := s.DistinctCount(ctx, store.SourceTable, "email_std")
	require.NoError(t, err)
	assert.Equal(t, 1, distinct)

	nonNull, err = s.NonNullCount(ctx, store.SourceTable, "mobile")
	require.NoError(t, err)
	assert.Equal(t, 1, nonNull)
}

func TestStoreIndexesAndAnalyze(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Reset(ctx, store.SourceTable))
	require.NoError(t, s.InsertBatch(ctx, store.SourceTable, testRecords()))
	require.NoError(t, s.CreateIndexes(ctx, store.SourceTable))
	require.NoError(t, s.Analyze(ctx))

	var n int
	err := s.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND tbl_name = ?",
		store.SourceTable,
	).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 14, n) // 11 individual + 3 compound
}

func TestStoreRejectsUnknownIdentifiers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.Reset(ctx, "sqlite_master")
	assert.ErrorIs(t, err, store.ErrUnknownTable)

	require.NoError(t, s.Reset(ctx, store.SourceTable))
	_, err = s.NonNullCount(ctx, store.SourceTable, "email_std; DROP TABLE source_data")
	assert.ErrorIs(t, err, store.ErrUnknownColumn)
}

func TestStoreEmptyBatchIsNoop(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Reset(ctx, store.SourceTable))
	require.NoError(t, s.InsertBatch(ctx, store.SourceTable, nil))
}
