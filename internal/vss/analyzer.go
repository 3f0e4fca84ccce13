package vss

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/matchd/internal/config"
	"github.com/fyrsmithlabs/matchd/internal/embeddings"
	"github.com/fyrsmithlabs/matchd/internal/stats"
	"github.com/fyrsmithlabs/matchd/internal/store"
)

const (
	// maxSampleMatches caps best-match examples carried into the report.
	maxSampleMatches = 20
	// maxAmbiguousSamples caps multi-candidate examples carried into the
	// fault report.
	maxAmbiguousSamples = 5
	// ambiguousThreshold is the similarity above which a second candidate
	// makes a match ambiguous.
	ambiguousThreshold = 0.9
)

// SampleMatch is one best-hit example for reporting.
type SampleMatch struct {
	SourceName string
	TargetName string
	Suburb     string
	Postcode   string
	Similarity float64
}

// AmbiguousMatch is a source name with multiple high-similarity candidates.
type AmbiguousMatch struct {
	SourceName string
	Hits       []Hit
}

// Buckets counts best-hit similarities by quality band.
type Buckets struct {
	Perfect   int // >= 0.99
	Excellent int // 0.95 - 0.99
	VeryGood  int // 0.90 - 0.95
	Good      int // 0.85 - 0.90
	Fair      int // 0.80 - 0.85
}

// Add assigns one similarity to its band.
func (b *Buckets) Add(similarity float64) {
	switch {
	case similarity >= 0.99:
		b.Perfect++
	case similarity >= 0.95:
		b.Excellent++
	case similarity >= 0.90:
		b.VeryGood++
	case similarity >= 0.85:
		b.Good++
	case similarity >= 0.80:
		b.Fair++
	}
}

// Result is a full cross-dataset similarity analysis.
type Result struct {
	SourceNames int
	TargetNames int
	Analyzed    int
	Matches     int
	MatchRate   float64
	// HighSimilarity counts best hits above 0.9, MediumSimilarity those in
	// 0.8-0.9.
	HighSimilarity   int
	MediumSimilarity int
	Buckets          Buckets
	Similarity       stats.Summary
	Samples          []SampleMatch
	Ambiguous        []AmbiguousMatch
	AmbiguousCount   int
	Failures         int
	Dimension        int
	Fault            *FaultAnalysis
	Elapsed          time.Duration
}

// Analyzer runs vector-similarity name matching between the two loaded
// datasets.
type Analyzer struct {
	cfg      config.VSSConfig
	store    *store.Store
	provider embeddings.Provider
	logger   *zap.Logger
	metrics  *embeddings.Metrics
}

func NewAnalyzer(cfg config.VSSConfig, s *store.Store, provider embeddings.Provider, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		cfg:      cfg,
		store:    s,
		provider: provider,
		logger:   logger,
		metrics:  embeddings.NewMetrics(logger),
	}
}

// Run indexes target names, queries every source name against the index, and
// aggregates match quality. Fault analysis is included when DetailedAnalysis
// is enabled.
func (a *Analyzer) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	a.logger.Info("starting name similarity analysis",
		zap.String("model", a.cfg.Model),
		zap.Int("max_records", a.cfg.MaxRecords),
		zap.Float64("threshold", a.cfg.SimilarityThreshold))

	sourceEntries, err := a.loadEntries(ctx, store.SourceTable)
	if err != nil {
		return nil, fmt.Errorf("loading source names: %w", err)
	}
	targetEntries, err := a.loadEntries(ctx, store.TargetTable)
	if err != nil {
		return nil, fmt.Errorf("loading target names: %w", err)
	}

	index, err := NewIndex(a.provider, a.cfg.Model, a.cfg.BatchSize, a.cfg.IndexPath, a.logger)
	if err != nil {
		return nil, err
	}
	if err := index.Build(ctx, targetEntries); err != nil {
		return nil, fmt.Errorf("building target index: %w", err)
	}

	result := &Result{
		SourceNames: len(sourceEntries),
		TargetNames: len(targetEntries),
		Dimension:   a.provider.Dimension(),
	}

	similarities := make([]float64, 0, len(sourceEntries))
	for batchStart := 0; batchStart < len(sourceEntries); batchStart += a.cfg.BatchSize {
		batchEnd := batchStart + a.cfg.BatchSize
		if batchEnd > len(sourceEntries) {
			batchEnd = len(sourceEntries)
		}
		batch := sourceEntries[batchStart:batchEnd]

		texts := make([]string, len(batch))
		for i, e := range batch {
			texts[i] = e.Text
		}
		embedStart := time.Now()
		vectors, err := a.provider.EmbedDocuments(ctx, texts)
		a.metrics.RecordGeneration(ctx, a.cfg.Model, "embed_documents", time.Since(embedStart), len(texts), err)
		if err != nil {
			return nil, fmt.Errorf("embedding source batch at %d: %w", batchStart, err)
		}

		for i, entry := range batch {
			hits, err := index.QueryEmbedding(ctx, vectors[i], a.cfg.MaxResultsPerName, a.cfg.SimilarityThreshold)
			if err != nil {
				result.Failures++
				a.logger.Warn("name query failed",
					zap.String("name", entry.Name), zap.Error(err))
				continue
			}
			result.Analyzed++
			if len(hits) == 0 {
				continue
			}

			result.Matches++
			best := hits[0]
			similarities = append(similarities, best.Similarity)
			result.Buckets.Add(best.Similarity)
			if best.Similarity > 0.9 {
				result.HighSimilarity++
			} else if best.Similarity >= 0.8 {
				result.MediumSimilarity++
			}

			if len(result.Samples) < maxSampleMatches {
				result.Samples = append(result.Samples, SampleMatch{
					SourceName: entry.Name,
					TargetName: best.Name,
					Suburb:     best.Suburb,
					Postcode:   best.Postcode,
					Similarity: best.Similarity,
				})
			}

			if ambiguous := highSimilarityHits(hits); len(ambiguous) > 1 {
				result.AmbiguousCount++
				if len(result.Ambiguous) < maxAmbiguousSamples {
					result.Ambiguous = append(result.Ambiguous, AmbiguousMatch{
						SourceName: entry.Name,
						Hits:       ambiguous,
					})
				}
			}
		}

		a.logger.Info("analyzed source batch",
			zap.Int("analyzed", batchEnd),
			zap.Int("total", len(sourceEntries)),
			zap.Int("matches", result.Matches))
	}

	if result.Analyzed > 0 {
		result.MatchRate = float64(result.Matches) / float64(result.Analyzed)
	}
	result.Similarity = stats.Summarize(similarities)

	if a.cfg.DetailedAnalysis {
		result.Fault, err = a.faultAnalysis(ctx, result)
		if err != nil {
			return nil, fmt.Errorf("fault analysis: %w", err)
		}
	}

	result.Elapsed = time.Since(start)
	a.logger.Info("name similarity analysis complete",
		zap.Int("analyzed", result.Analyzed),
		zap.Int("matches", result.Matches),
		zap.Float64("match_rate", result.MatchRate),
		zap.Duration("elapsed", result.Elapsed))
	return result, nil
}

// highSimilarityHits returns the hits at or above the ambiguity threshold.
func highSimilarityHits(hits []Hit) []Hit {
	var out []Hit
	for _, h := range hits {
		if h.Similarity >= ambiguousThreshold {
			out = append(out, h)
		}
	}
	return out
}

// loadEntries reads distinct non-empty names with location context, capped
// at MaxRecords.
func (a *Analyzer) loadEntries(ctx context.Context, table string) ([]Entry, error) {
	if err := store.ValidateTable(table); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT DISTINCT full_name, COALESCE(suburb, ''), COALESCE(postcode, '')
		FROM %s
		WHERE full_name IS NOT NULL AND LENGTH(TRIM(full_name)) > 0
		ORDER BY full_name, suburb, postcode
		LIMIT %d`, table, a.cfg.MaxRecords)

	rows, err := a.store.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Suburb, &e.Postcode); err != nil {
			return nil, err
		}
		e.Text = IndexText(e.Name, e.Suburb, e.Postcode)
		if a.cfg.EnablePreprocessing {
			e.Text = PreprocessName(e.Text)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
