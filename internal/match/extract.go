package match

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fyrsmithlabs/matchd/internal/record"
	"github.com/fyrsmithlabs/matchd/internal/store"
	"github.com/parquet-go/parquet-go"
	"go.uber.org/zap"
)

// exportBatch is the number of rows buffered per parquet write.
const exportBatch = 1000

// ExportRecord is the parquet row layout for extracted records.
type ExportRecord struct {
	ID                       string `parquet:"id,optional"`
	Title                    string `parquet:"title,optional"`
	FirstName                string `parquet:"first_name,optional"`
	Surname                  string `parquet:"surname,optional"`
	Gender                   string `parquet:"gender,optional"`
	EmailStd                 string `parquet:"email_std,optional"`
	EmailHash                string `parquet:"email_hash,optional"`
	Mobile                   string `parquet:"mobile,optional"`
	Landline                 string `parquet:"landline,optional"`
	Suburb                   string `parquet:"suburb,optional"`
	State                    string `parquet:"state,optional"`
	Postcode                 string `parquet:"postcode,optional"`
	FullName                 string `parquet:"full_name,optional"`
	NameSuburbPostcode       string `parquet:"name_suburb_postcode,optional"`
	NameSuburbPostcodeMobile string `parquet:"name_suburb_postcode_mobile,optional"`
}

// ExtractResult describes a unique-record extraction run.
type ExtractResult struct {
	Extracted  int
	OutputPath string
	Elapsed    time.Duration
}

// ExtractUnique exports source records with no target match on the given
// join fields to a parquet file. All join fields must be populated on the
// source side, so partially-keyed records never count as "unique".
func (e *Engine) ExtractUnique(ctx context.Context, joinFields []string, outputPath string) (*ExtractResult, error) {
	if len(joinFields) == 0 {
		return nil, fmt.Errorf("at least one join field is required")
	}
	for _, f := range joinFields {
		if err := store.ValidateColumn(f); err != nil {
			return nil, err
		}
	}
	start := time.Now()

	e.logger.Info("extracting unique source records",
		zap.Strings("join_fields", joinFields),
		zap.String("output", outputPath),
	)

	conds := make([]string, len(joinFields))
	for i, f := range joinFields {
		conds[i] = fmt.Sprintf("a.%s = d.%s", f, f)
	}
	query := fmt.Sprintf(`
		SELECT %s FROM %s d
		WHERE %s
		AND NOT EXISTS (SELECT 1 FROM %s a WHERE %s)`,
		"d."+strings.Join(record.Columns, ", d."),
		store.SourceTable,
		notNullCondition("d", joinFields),
		store.TargetTable,
		strings.Join(conds, " AND "))

	rows, err := e.store.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying unique records: %w", err)
	}
	defer rows.Close()

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	writer := parquet.NewGenericWriter[ExportRecord](f)

	result := &ExtractResult{OutputPath: outputPath}
	batch := make([]ExportRecord, 0, exportBatch)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := writer.Write(batch); err != nil {
			return fmt.Errorf("writing parquet batch: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for rows.Next() {
		rec, err := scanExportRecord(rows)
		if err != nil {
			return nil, err
		}
		batch = append(batch, rec)
		result.Extracted++
		if len(batch) >= exportBatch {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating unique records: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing parquet writer: %w", err)
	}

	result.Elapsed = time.Since(start)
	e.logger.Info("unique records extracted",
		zap.Int("count", result.Extracted),
		zap.String("output", outputPath),
		zap.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

// scanExportRecord scans one store row into the parquet export layout.
func scanExportRecord(rows *sql.Rows) (ExportRecord, error) {
	var fields [15]sql.NullString
	dest := make([]any, len(fields))
	for i := range fields {
		dest[i] = &fields[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return ExportRecord{}, fmt.Errorf("scanning record: %w", err)
	}
	return ExportRecord{
		ID:                       fields[0].String,
		Title:                    fields[1].String,
		FirstName:                fields[2].String,
		Surname:                  fields[3].String,
		Gender:                   fields[4].String,
		EmailStd:                 fields[5].String,
		EmailHash:                fields[6].String,
		Mobile:                   fields[7].String,
		Landline:                 fields[8].String,
		Suburb:                   fields[9].String,
		State:                    fields[10].String,
		Postcode:                 fields[11].String,
		FullName:                 fields[12].String,
		NameSuburbPostcode:       fields[13].String,
		NameSuburbPostcodeMobile: fields[14].String,
	}, nil
}
