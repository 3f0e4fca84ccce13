package match

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const matchInstrumentationName = "github.com/fyrsmithlabs/matchd/internal/match"

// Metrics holds match analysis metrics.
type Metrics struct {
	meter    metric.Meter
	logger   *zap.Logger
	duration metric.Float64Histogram
	matches  metric.Int64Counter
}

// NewMetrics creates a Metrics instance for the match engine.
func NewMetrics(logger *zap.Logger) *Metrics {
	m := &Metrics{
		meter:  otel.Meter(matchInstrumentationName),
		logger: logger,
	}
	m.init()
	return m
}

func (m *Metrics) init() {
	var err error

	m.duration, err = m.meter.Float64Histogram(
		"matchd.match.field_duration_seconds",
		metric.WithDescription("Duration of a single field or pattern analysis, labeled by field"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300),
	)
	if err != nil {
		m.logger.Warn("failed to create duration histogram", zap.Error(err))
	}

	m.matches, err = m.meter.Int64Counter(
		"matchd.match.matches_total",
		metric.WithDescription("Inner-join match count per analyzed field"),
		metric.WithUnit("{match}"),
	)
	if err != nil {
		m.logger.Warn("failed to create matches counter", zap.Error(err))
	}
}

// RecordField records the outcome of one field analysis.
func (m *Metrics) RecordField(ctx context.Context, field string, matches int, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("field", field))
	if m.duration != nil {
		m.duration.Record(ctx, elapsed.Seconds(), attrs)
	}
	if m.matches != nil {
		m.matches.Add(ctx, int64(matches), attrs)
	}
}
