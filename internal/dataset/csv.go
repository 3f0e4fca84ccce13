package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// readCSV streams rows from a header-prefixed CSV file.
func readCSV(path string, fn RowFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening csv file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("reading csv header: %w", err)
	}
	columns := make([]string, len(header))
	copy(columns, header)

	for {
		fields, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading csv row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if i >= len(fields) {
				break
			}
			if fields[i] == "" {
				continue
			}
			row[col] = fields[i]
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}
