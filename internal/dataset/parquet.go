package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
)

// parquetChunk is the number of rows decoded per reader call.
const parquetChunk = 1024

// readParquet streams rows from a parquet file as generic column maps.
func readParquet(path string, fn RowFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening parquet file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat parquet file: %w", err)
	}

	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return fmt.Errorf("opening parquet file %s: %w", path, err)
	}

	reader := parquet.NewGenericReader[map[string]any](pf, pf.Schema())
	defer reader.Close()

	rows := make([]map[string]any, parquetChunk)
	for {
		for i := range rows {
			rows[i] = make(map[string]any)
		}
		n, err := reader.Read(rows)
		for i := 0; i < n; i++ {
			if fnErr := fn(rows[i]); fnErr != nil {
				return fnErr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading parquet rows: %w", err)
		}
	}
}
