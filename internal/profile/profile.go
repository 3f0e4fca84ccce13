// Package profile computes per-column dataset profiles and the duplicate-key
// investigation that explains many-to-many join inflation.
package profile

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/matchd/internal/record"
	"github.com/fyrsmithlabs/matchd/internal/stats"
	"github.com/fyrsmithlabs/matchd/internal/store"
)

// topDuplicateLimit caps the most-duplicated name groups carried per table.
const topDuplicateLimit = 10

// FieldProfile summarizes one column of one table.
type FieldProfile struct {
	Column       string
	NonNull      int
	Nulls        int
	NullRate     float64
	Distinct     int
	DistinctRate float64
}

// TableProfile is the column-by-column profile of one table.
type TableProfile struct {
	Table  string
	Rows   int
	Fields []FieldProfile
}

// DuplicateGroup is one repeated first_name|surname|state key.
type DuplicateGroup struct {
	Name  string
	Count int
}

// DuplicateStats quantifies key duplication within a table. Duplicated keys
// are what turn an equi-join into a row explosion.
type DuplicateStats struct {
	Table         string
	PopulatedRows int
	UniqueKeys    int
	DuplicateRows int
	TopDuplicates []DuplicateGroup
}

// Result is a full profiling run over both tables.
type Result struct {
	Source           TableProfile
	Target           TableProfile
	SourceDuplicates DuplicateStats
	TargetDuplicates DuplicateStats
	// MaxUniqueMatches bounds how many distinct name keys the two tables
	// could share: min of the unique key counts.
	MaxUniqueMatches int
	Elapsed          time.Duration
}

// Profiler computes dataset profiles from the analysis store.
type Profiler struct {
	store  *store.Store
	logger *zap.Logger
}

func NewProfiler(s *store.Store, logger *zap.Logger) *Profiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Profiler{store: s, logger: logger}
}

// Run profiles both tables and investigates name-key duplication.
func (p *Profiler) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	p.logger.Info("starting dataset profiling")

	result := &Result{}
	var err error

	if result.Source, err = p.profileTable(ctx, store.SourceTable); err != nil {
		return nil, err
	}
	if result.Target, err = p.profileTable(ctx, store.TargetTable); err != nil {
		return nil, err
	}
	if result.SourceDuplicates, err = p.duplicates(ctx, store.SourceTable); err != nil {
		return nil, err
	}
	if result.TargetDuplicates, err = p.duplicates(ctx, store.TargetTable); err != nil {
		return nil, err
	}
	result.MaxUniqueMatches = result.SourceDuplicates.UniqueKeys
	if result.TargetDuplicates.UniqueKeys < result.MaxUniqueMatches {
		result.MaxUniqueMatches = result.TargetDuplicates.UniqueKeys
	}

	result.Elapsed = time.Since(start)
	p.logger.Info("dataset profiling complete",
		zap.Int("source_rows", result.Source.Rows),
		zap.Int("target_rows", result.Target.Rows),
		zap.Duration("elapsed", result.Elapsed))
	return result, nil
}

// profileTable computes null and distinct counts for every column. Columns
// are profiled concurrently; WAL mode keeps the readers from serializing.
func (p *Profiler) profileTable(ctx context.Context, table string) (TableProfile, error) {
	if err := store.ValidateTable(table); err != nil {
		return TableProfile{}, err
	}

	tp := TableProfile{Table: table}
	rows, err := p.store.Count(ctx, table)
	if err != nil {
		return tp, err
	}
	tp.Rows = rows
	tp.Fields = make([]FieldProfile, len(record.Columns))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, column := range record.Columns {
		g.Go(func() error {
			fp := FieldProfile{Column: column}
			var err error
			if fp.NonNull, err = p.store.NonNullCount(gctx, table, column); err != nil {
				return fmt.Errorf("profile %s.%s: %w", table, column, err)
			}
			if fp.Distinct, err = p.store.DistinctCount(gctx, table, column); err != nil {
				return fmt.Errorf("profile %s.%s: %w", table, column, err)
			}
			fp.Nulls = rows - fp.NonNull
			fp.NullRate = stats.Rate(fp.Nulls, rows)
			fp.DistinctRate = stats.Rate(fp.Distinct, fp.NonNull)
			tp.Fields[i] = fp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return tp, err
	}
	return tp, nil
}

// duplicates measures repetition of the first_name|surname|state key and
// collects the worst offenders.
func (p *Profiler) duplicates(ctx context.Context, table string) (DuplicateStats, error) {
	if err := store.ValidateTable(table); err != nil {
		return DuplicateStats{}, err
	}
	ds := DuplicateStats{Table: table}
	db := p.store.DB()

	countQuery := fmt.Sprintf(`
		SELECT
			COUNT(*),
			COUNT(DISTINCT first_name || '|' || surname || '|' || state)
		FROM %s
		WHERE first_name IS NOT NULL AND surname IS NOT NULL AND state IS NOT NULL`,
		table)
	if err := db.QueryRowContext(ctx, countQuery).Scan(&ds.PopulatedRows, &ds.UniqueKeys); err != nil {
		return ds, err
	}
	ds.DuplicateRows = ds.PopulatedRows - ds.UniqueKeys

	topQuery := fmt.Sprintf(`
		SELECT first_name || ' ' || surname || ' (' || state || ')', COUNT(*)
		FROM %s
		WHERE first_name IS NOT NULL AND surname IS NOT NULL AND state IS NOT NULL
		GROUP BY first_name, surname, state
		HAVING COUNT(*) > 1
		ORDER BY COUNT(*) DESC
		LIMIT %d`, table, topDuplicateLimit)
	rows, err := db.QueryContext(ctx, topQuery)
	if err != nil {
		return ds, err
	}
	defer rows.Close()
	for rows.Next() {
		var g DuplicateGroup
		if err := rows.Scan(&g.Name, &g.Count); err != nil {
			return ds, err
		}
		ds.TopDuplicates = append(ds.TopDuplicates, g)
	}
	return ds, rows.Err()
}
