package match

import (
	"context"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/matchd/internal/store"
	"go.uber.org/zap"
)

// compoundPattern describes a multi-field match pattern.
type compoundPattern struct {
	name        string
	description string
	// joinFields are the columns joined on.
	joinFields []string
	// requiredFields gate both the totals and the match filter. They can be
	// wider than joinFields: looser patterns are still measured against the
	// population that could have matched the strictest one.
	requiredFields []string
	// distinct counts distinct join-key values instead of join rows.
	distinct bool
}

// compoundPatterns mirrors the original compound analysis set.
var compoundPatterns = []compoundPattern{
	{
		name:           "FullNameDistinct",
		description:    "Full Name (Distinct)",
		joinFields:     []string{"full_name"},
		requiredFields: []string{"full_name"},
		distinct:       true,
	},
	{
		name:           "NameSuburb",
		description:    "Full Name + Suburb",
		joinFields:     []string{"first_name", "surname", "suburb"},
		requiredFields: []string{"first_name", "surname", "suburb", "postcode"},
	},
	{
		name:           "NameSuburbPostcode",
		description:    "Full Name + Suburb + Postcode",
		joinFields:     []string{"first_name", "surname", "suburb", "postcode"},
		requiredFields: []string{"first_name", "surname", "suburb", "postcode"},
	},
	{
		name:           "NameSuburbPostcodeEmail",
		description:    "Full Name + Suburb + Postcode + EmailHash",
		joinFields:     []string{"first_name", "surname", "suburb", "postcode", "email_hash"},
		requiredFields: []string{"first_name", "surname", "suburb", "postcode", "email_hash"},
	},
}

// analyzeCompound runs the compound pattern analysis.
func (e *Engine) analyzeCompound(ctx context.Context) ([]FieldStats, error) {
	results := make([]FieldStats, 0, len(compoundPatterns))
	for _, p := range compoundPatterns {
		fs, err := e.analyzePattern(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("analyzing pattern %s: %w", p.name, err)
		}
		results = append(results, fs)
	}
	return results, nil
}

func (e *Engine) analyzePattern(ctx context.Context, p compoundPattern) (FieldStats, error) {
	for _, f := range append(append([]string{}, p.joinFields...), p.requiredFields...) {
		if err := store.ValidateColumn(f); err != nil {
			return FieldStats{}, err
		}
	}
	start := time.Now()

	fs := FieldStats{Field: p.name, Description: p.description}
	db := e.store.DB()

	// Exclusive counts on both sides, over the same population as the totals.
	antiJoin := func(outerTable, outerAlias, innerTable, innerAlias string) (int, error) {
		var n int
		selected := "COUNT(*)"
		filter := notNullCondition(outerAlias, p.requiredFields)
		if p.distinct {
			selected = fmt.Sprintf("COUNT(DISTINCT %s.%s)", outerAlias, p.joinFields[0])
		}
		query := fmt.Sprintf(`
			SELECT %s FROM %s %s
			WHERE %s
			AND NOT EXISTS (SELECT 1 FROM %s %s WHERE %s)`,
			selected, outerTable, outerAlias, filter,
			innerTable, innerAlias, joinCondition(p.joinFields))
		err := db.QueryRowContext(ctx, query).Scan(&n)
		return n, err
	}

	if p.distinct {
		// Distinct key population on each side, distinct matched keys.
		var err error
		if fs.SourceTotal, err = e.store.DistinctCount(ctx, store.SourceTable, p.joinFields[0]); err != nil {
			return fs, err
		}
		if fs.TargetTotal, err = e.store.DistinctCount(ctx, store.TargetTable, p.joinFields[0]); err != nil {
			return fs, err
		}

		query := fmt.Sprintf(`
			SELECT COUNT(DISTINCT d.%s) FROM %s d
			INNER JOIN %s a ON %s
			WHERE %s AND %s`,
			p.joinFields[0], store.SourceTable, store.TargetTable,
			joinCondition(p.joinFields),
			notNullCondition("d", p.joinFields), notNullCondition("a", p.joinFields))
		if err := db.QueryRowContext(ctx, query).Scan(&fs.Matches); err != nil {
			return fs, err
		}
	} else {
		totalsQuery := func(table string) (int, error) {
			var n int
			query := fmt.Sprintf("SELECT COUNT(*) FROM %s t WHERE %s",
				table, notNullCondition("t", p.requiredFields))
			err := db.QueryRowContext(ctx, query).Scan(&n)
			return n, err
		}

		var err error
		if fs.SourceTotal, err = totalsQuery(store.SourceTable); err != nil {
			return fs, err
		}
		if fs.TargetTotal, err = totalsQuery(store.TargetTable); err != nil {
			return fs, err
		}

		query := fmt.Sprintf(`
			SELECT COUNT(*) FROM %s d
			INNER JOIN %s a ON %s
			WHERE %s AND %s`,
			store.SourceTable, store.TargetTable,
			joinCondition(p.joinFields),
			notNullCondition("d", p.requiredFields), notNullCondition("a", p.requiredFields))
		if err := db.QueryRowContext(ctx, query).Scan(&fs.Matches); err != nil {
			return fs, err
		}
	}

	var err error
	if fs.SourceOnly, err = antiJoin(store.SourceTable, "d", store.TargetTable, "a"); err != nil {
		return fs, fmt.Errorf("source anti join for %s: %w", p.name, err)
	}
	if fs.TargetOnly, err = antiJoin(store.TargetTable, "a", store.SourceTable, "d"); err != nil {
		return fs, fmt.Errorf("target anti join for %s: %w", p.name, err)
	}

	fs.finalize()
	fs.Elapsed = time.Since(start)

	e.metrics.RecordField(ctx, p.name, fs.Matches, fs.Elapsed)
	e.logger.Info("compound pattern analyzed",
		zap.String("pattern", p.name),
		zap.Int("matches", fs.Matches),
		zap.Duration("elapsed", fs.Elapsed),
	)
	return fs, nil
}
