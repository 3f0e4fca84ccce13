// Package dataset reads the input dataset files (Parquet or CSV) and loads
// them into the analysis store as normalized records.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fyrsmithlabs/matchd/internal/record"
	"github.com/fyrsmithlabs/matchd/internal/store"
	"go.uber.org/zap"
)

// Supported input formats.
const (
	FormatParquet = "parquet"
	FormatCSV     = "csv"
)

// ErrUnsupportedFormat is returned for input files matchd cannot read.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// RowFunc receives one input row keyed by column name. Returning an error
// aborts the read.
type RowFunc func(row map[string]any) error

// DetectFormat resolves the input format from an explicit setting or the
// file extension.
func DetectFormat(path, explicit string) (string, error) {
	if explicit != "" {
		switch explicit {
		case FormatParquet, FormatCSV:
			return explicit, nil
		default:
			return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, explicit)
		}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return FormatParquet, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: cannot infer format of %s", ErrUnsupportedFormat, path)
	}
}

// ReadRows streams rows from the input file to fn.
func ReadRows(path, format string, fn RowFunc) error {
	resolved, err := DetectFormat(path, format)
	if err != nil {
		return err
	}
	switch resolved {
	case FormatParquet:
		return readParquet(path, fn)
	case FormatCSV:
		return readCSV(path, fn)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, resolved)
	}
}

// LoadResult accounts for rows seen during a load.
type LoadResult struct {
	Read    int
	Kept    int
	Skipped int
}

// Load resets table and fills it with normalized records from the input
// file. Records without any name data are skipped, matching the original
// load filter. Inserts are batched into transactions of batchSize rows.
func Load(ctx context.Context, s *store.Store, table, path, format string, mapping record.FieldMapping, batchSize int, logger *zap.Logger) (LoadResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := mapping.Validate(); err != nil {
		return LoadResult{}, fmt.Errorf("invalid mapping for %s: %w", table, err)
	}
	if batchSize <= 0 {
		batchSize = 10000
	}

	if err := s.Reset(ctx, table); err != nil {
		return LoadResult{}, err
	}

	var result LoadResult
	batch := make([]record.Record, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.InsertBatch(ctx, table, batch); err != nil {
			return err
		}
		result.Kept += len(batch)
		batch = batch[:0]
		logger.Info("batch loaded",
			zap.String("table", table),
			zap.Int("rows_read", result.Read),
			zap.Int("rows_kept", result.Kept),
		)
		return nil
	}

	err := ReadRows(path, format, func(row map[string]any) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		result.Read++
		rec := mapping.FromRow(row)
		if !rec.HasName() {
			result.Skipped++
			return nil
		}
		batch = append(batch, rec)
		if len(batch) >= batchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := flush(); err != nil {
		return result, err
	}

	logger.Info("dataset loaded",
		zap.String("table", table),
		zap.String("path", path),
		zap.Int("rows_read", result.Read),
		zap.Int("rows_kept", result.Kept),
		zap.Int("rows_skipped", result.Skipped),
	)
	return result, nil
}
