// Package report renders analysis results as Markdown reports and console
// summary tables.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/matchd/internal/store"
)

// Labels carries the dataset display names used in report prose.
type Labels struct {
	Source string
	Target string
}

// Writer renders reports into a directory. Every report carries a unique run
// ID so regenerated reports can be told apart.
type Writer struct {
	dir    string
	labels Labels
	logger *zap.Logger
	runID  string
	now    func() time.Time
}

func NewWriter(dir string, labels Labels, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if labels.Source == "" {
		labels.Source = "Source"
	}
	if labels.Target == "" {
		labels.Target = "Target"
	}
	return &Writer{
		dir:    dir,
		labels: labels,
		logger: logger,
		runID:  uuid.NewString(),
		now:    time.Now,
	}
}

// RunID returns the identifier stamped into every report from this writer.
func (w *Writer) RunID() string {
	return w.runID
}

// create opens the named report file, creating the report directory first.
func (w *Writer) create(name string) (*os.File, string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, "", fmt.Errorf("creating report directory: %w", err)
	}
	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("creating report file: %w", err)
	}
	return f, path, nil
}

func (w *Writer) footer() string {
	return fmt.Sprintf("Report generated: %s | Run ID: %s",
		w.now().Format("2006-01-02 15:04:05"), w.runID)
}

// tableLabel maps a store table name to its dataset display name.
func (w *Writer) tableLabel(table string) string {
	switch table {
	case store.SourceTable:
		return w.labels.Source
	case store.TargetTable:
		return w.labels.Target
	}
	return table
}

// comma formats an integer with thousands separators.
func comma(n int) string {
	s := strconv.Itoa(n)
	start := 0
	if n < 0 {
		start = 1
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	for i := start; i < len(s); i++ {
		if i > start && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	return string(s[:start]) + string(out)
}

// percent renders a 0-100 value with two decimals.
func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// ratio renders a 0-1 value with four decimals.
func ratio(v float64) string {
	return fmt.Sprintf("%.4f", v)
}

// share renders part/total as a percentage, guarding an empty total.
func share(part, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)/float64(total)*100)
}
