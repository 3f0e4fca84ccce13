package match

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fyrsmithlabs/matchd/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// directFieldLabels maps canonical columns to their report labels.
var directFieldLabels = map[string]string{
	"full_name":  "FullName",
	"email_std":  "EmailStd",
	"email_hash": "EmailHash",
	"mobile":     "Mobile",
	"landline":   "Landline",
	"suburb":     "Suburb",
	"state":      "State",
	"postcode":   "Postcode",
}

// Engine runs match analysis queries against the analysis store.
type Engine struct {
	store   *store.Store
	logger  *zap.Logger
	metrics *Metrics
}

// NewEngine creates a match engine.
func NewEngine(s *store.Store, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:   s,
		logger:  logger,
		metrics: NewMetrics(logger),
	}
}

// Analyze runs the direct-field and compound match analysis.
// Direct fields are analyzed concurrently; the store is in WAL mode so the
// read connections do not serialize.
func (e *Engine) Analyze(ctx context.Context, fields []string) (*Result, error) {
	start := time.Now()

	sourceCount, err := e.store.Count(ctx, store.SourceTable)
	if err != nil {
		return nil, err
	}
	targetCount, err := e.store.Count(ctx, store.TargetTable)
	if err != nil {
		return nil, err
	}

	e.logger.Info("starting match analysis",
		zap.Int("source_records", sourceCount),
		zap.Int("target_records", targetCount),
		zap.Int("direct_fields", len(fields)),
	)

	direct, err := e.analyzeDirect(ctx, fields)
	if err != nil {
		return nil, err
	}

	compound, err := e.analyzeCompound(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{
		SourceCount: sourceCount,
		TargetCount: targetCount,
		Direct:      direct,
		Compound:    compound,
		Elapsed:     time.Since(start),
	}

	e.logger.Info("match analysis completed", zap.Duration("elapsed", result.Elapsed))
	return result, nil
}

// analyzeDirect runs one FieldStats per direct match field, concurrently.
func (e *Engine) analyzeDirect(ctx context.Context, fields []string) ([]FieldStats, error) {
	results := make([]FieldStats, len(fields))

	g, gctx := errgroup.WithContext(ctx)
	for i, field := range fields {
		g.Go(func() error {
			fs, err := e.analyzeField(gctx, field)
			if err != nil {
				return fmt.Errorf("analyzing %s: %w", field, err)
			}
			results[i] = fs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// analyzeField computes match and anti-join counts for a single column.
func (e *Engine) analyzeField(ctx context.Context, field string) (FieldStats, error) {
	if err := store.ValidateColumn(field); err != nil {
		return FieldStats{}, err
	}
	start := time.Now()

	label := directFieldLabels[field]
	if label == "" {
		label = field
	}
	fs := FieldStats{Field: field, Description: label}

	db := e.store.DB()

	var err error
	if fs.SourceTotal, err = e.store.NonNullCount(ctx, store.SourceTable, field); err != nil {
		return fs, err
	}
	if fs.TargetTotal, err = e.store.NonNullCount(ctx, store.TargetTable, field); err != nil {
		return fs, err
	}

	matchQuery := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s d
		INNER JOIN %s a ON d.%s = a.%s
		WHERE d.%s IS NOT NULL AND a.%s IS NOT NULL`,
		store.SourceTable, store.TargetTable, field, field, field, field)
	if err := db.QueryRowContext(ctx, matchQuery).Scan(&fs.Matches); err != nil {
		return fs, fmt.Errorf("inner join on %s: %w", field, err)
	}

	sourceOnlyQuery := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s d
		WHERE d.%s IS NOT NULL
		AND NOT EXISTS (SELECT 1 FROM %s a WHERE a.%s = d.%s)`,
		store.SourceTable, field, store.TargetTable, field, field)
	if err := db.QueryRowContext(ctx, sourceOnlyQuery).Scan(&fs.SourceOnly); err != nil {
		return fs, fmt.Errorf("source anti join on %s: %w", field, err)
	}

	targetOnlyQuery := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s a
		WHERE a.%s IS NOT NULL
		AND NOT EXISTS (SELECT 1 FROM %s d WHERE d.%s = a.%s)`,
		store.TargetTable, field, store.SourceTable, field, field)
	if err := db.QueryRowContext(ctx, targetOnlyQuery).Scan(&fs.TargetOnly); err != nil {
		return fs, fmt.Errorf("target anti join on %s: %w", field, err)
	}

	fs.finalize()
	fs.Elapsed = time.Since(start)

	e.metrics.RecordField(ctx, field, fs.Matches, fs.Elapsed)
	e.logger.Info("field analyzed",
		zap.String("field", field),
		zap.Int("matches", fs.Matches),
		zap.Int("source_only", fs.SourceOnly),
		zap.Int("target_only", fs.TargetOnly),
		zap.Duration("elapsed", fs.Elapsed),
	)
	return fs, nil
}

// joinCondition builds the equality join across the given columns.
func joinCondition(fields []string) string {
	conds := make([]string, len(fields))
	for i, f := range fields {
		conds[i] = fmt.Sprintf("d.%s = a.%s", f, f)
	}
	return strings.Join(conds, " AND ")
}

// notNullCondition builds the NOT NULL filter for the given alias.
func notNullCondition(alias string, fields []string) string {
	conds := make([]string, len(fields))
	for i, f := range fields {
		conds[i] = fmt.Sprintf("%s.%s IS NOT NULL", alias, f)
	}
	return strings.Join(conds, " AND ")
}
