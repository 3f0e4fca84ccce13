// Package store provides the embedded SQLite analysis store that the match
// engine runs its join and anti-join queries against.
//
// Two tables hold the normalized datasets under comparison. Every direct
// match field and compound key is indexed after load, mirroring the layout
// the analysis queries expect.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fyrsmithlabs/matchd/internal/record"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Canonical table names.
const (
	SourceTable = "source_data"
	TargetTable = "target_data"
)

// Sentinel errors for store operations.
var (
	// ErrUnknownTable is returned for table names outside the canonical pair.
	ErrUnknownTable = errors.New("unknown table")

	// ErrUnknownColumn is returned for column names outside the canonical schema.
	ErrUnknownColumn = errors.New("unknown column")
)

// indexedColumns are the individual fields that get single-column indexes.
var indexedColumns = []string{
	"title", "first_name", "surname", "gender",
	"email_std", "email_hash", "mobile", "landline",
	"suburb", "state", "postcode",
}

// compoundColumns are the precomputed compound keys that get indexes.
var compoundColumns = []string{
	"full_name", "name_suburb_postcode", "name_suburb_postcode_mobile",
}

// Store is the SQLite-backed analysis store.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// Open opens (creating if necessary) the analysis store at path.
// WAL mode is enabled so analysis queries can run on parallel readers
// while a load is in progress.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %s: %w", pragma, err)
		}
	}

	logger.Info("analysis store opened", zap.String("path", path))

	return &Store{db: db, path: path, logger: logger}, nil
}

// DB exposes the underlying connection pool for the match engine's queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// ValidateTable checks table against the canonical pair.
func ValidateTable(table string) error {
	if table != SourceTable && table != TargetTable {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return nil
}

// ValidateColumn checks column against the canonical schema. All query
// builders route identifiers through here so field lists from config can
// never smuggle SQL into a statement.
func ValidateColumn(column string) error {
	for _, c := range record.Columns {
		if c == column {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownColumn, column)
}

// Reset drops and recreates the given table.
func (s *Store) Reset(ctx context.Context, table string) error {
	if err := ValidateTable(table); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("dropping %s: %w", table, err)
	}

	cols := make([]string, len(record.Columns))
	for i, c := range record.Columns {
		cols[i] = c + " TEXT"
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(cols, ", "))
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("creating %s: %w", table, err)
	}

	s.logger.Info("table reset", zap.String("table", table))
	return nil
}

// InsertBatch inserts records in a single transaction.
func (s *Store) InsertBatch(ctx context.Context, table string, records []record.Record) error {
	if err := ValidateTable(table); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(record.Columns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(record.Columns, ", "), placeholders,
	))
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		if _, err := stmt.ExecContext(ctx, records[i].Values()...); err != nil {
			return fmt.Errorf("inserting record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	return nil
}

// CreateIndexes creates the individual and compound field indexes for table.
// Index creation after load is much cheaper than maintaining indexes during
// the bulk insert.
func (s *Store) CreateIndexes(ctx context.Context, table string) error {
	if err := ValidateTable(table); err != nil {
		return err
	}

	prefix := "idx_src_"
	if table == TargetTable {
		prefix = "idx_tgt_"
	}

	for _, col := range append(append([]string{}, indexedColumns...), compoundColumns...) {
		ddl := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s%s ON %s(%s)", prefix, col, table, col)
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("creating index on %s.%s: %w", table, col, err)
		}
		s.logger.Debug("index created", zap.String("table", table), zap.String("column", col))
	}
	return nil
}

// Analyze refreshes the query planner statistics after a load.
func (s *Store) Analyze(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "ANALYZE"); err != nil {
		return fmt.Errorf("analyzing store: %w", err)
	}
	return nil
}

// Count returns the number of rows in table.
func (s *Store) Count(ctx context.Context, table string) (int, error) {
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}

// NonNullCount returns the number of rows where column is populated.
func (s *Store) NonNullCount(ctx context.Context, table, column string) (int, error) {
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	if err := ValidateColumn(column); err != nil {
		return 0, err
	}
	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NOT NULL", table, column)
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s.%s: %w", table, column, err)
	}
	return n, nil
}

// DistinctCount returns the number of distinct non-null values in column.
func (s *Store) DistinctCount(ctx context.Context, table, column string) (int, error) {
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	if err := ValidateColumn(column); err != nil {
		return 0, err
	}
	var n int
	query := fmt.Sprintf("SELECT COUNT(DISTINCT %s) FROM %s WHERE %s IS NOT NULL", column, table, column)
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting distinct %s.%s: %w", table, column, err)
	}
	return n, nil
}
