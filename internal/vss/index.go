package vss

import (
	"context"
	"fmt"
	"strconv"
	"time"

	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/matchd/internal/embeddings"
)

// Entry is one distinct name with its location context, queued for indexing.
type Entry struct {
	Name     string
	Suburb   string
	Postcode string
	// Text is the preprocessed name+location string that gets embedded.
	Text string
}

// Hit is one similarity search result.
type Hit struct {
	Name       string
	Suburb     string
	Postcode   string
	Similarity float64
}

// Index is a cosine similarity index over name embeddings. It is held in
// memory, and optionally persisted to disk so repeated runs skip re-embedding.
type Index struct {
	collection *chromem.Collection
	provider   embeddings.Provider
	batchSize  int
	logger     *zap.Logger
	metrics    *embeddings.Metrics
	model      string
}

// NewIndex creates an index backed by the given embedding provider. When
// indexPath is non-empty the index is persisted there and reloaded on the
// next run.
func NewIndex(provider embeddings.Provider, model string, batchSize int, indexPath string, logger *zap.Logger) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	var db *chromem.DB
	var err error
	if indexPath != "" {
		db, err = chromem.NewPersistentDB(indexPath, false)
		if err != nil {
			return nil, fmt.Errorf("opening index at %s: %w", indexPath, err)
		}
	} else {
		db = chromem.NewDB()
	}

	embedQuery := func(ctx context.Context, text string) ([]float32, error) {
		return provider.EmbedQuery(ctx, text)
	}
	collection, err := db.GetOrCreateCollection("names", nil, embedQuery)
	if err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}
	if indexPath != "" && collection.Count() > 0 {
		logger.Info("reloaded persisted name index",
			zap.String("path", indexPath),
			zap.Int("names", collection.Count()))
	}

	return &Index{
		collection: collection,
		provider:   provider,
		batchSize:  batchSize,
		logger:     logger,
		metrics:    embeddings.NewMetrics(logger),
		model:      model,
	}, nil
}

// Build embeds and indexes entries in batches.
func (ix *Index) Build(ctx context.Context, entries []Entry) error {
	base := ix.collection.Count()
	for start := 0; start < len(entries); start += ix.batchSize {
		end := start + ix.batchSize
		if end > len(entries) {
			end = len(entries)
		}
		batch := entries[start:end]

		texts := make([]string, len(batch))
		for i, e := range batch {
			texts[i] = e.Text
		}

		embedStart := time.Now()
		vectors, err := ix.provider.EmbedDocuments(ctx, texts)
		ix.metrics.RecordGeneration(ctx, ix.model, "embed_documents", time.Since(embedStart), len(texts), err)
		if err != nil {
			return fmt.Errorf("embedding batch at %d: %w", start, err)
		}

		docs := make([]chromem.Document, len(batch))
		for i, e := range batch {
			docs[i] = chromem.Document{
				ID:      strconv.Itoa(base + start + i),
				Content: e.Text,
				Metadata: map[string]string{
					"name":     e.Name,
					"suburb":   e.Suburb,
					"postcode": e.Postcode,
				},
				Embedding: vectors[i],
			}
		}
		// Concurrency of 1: embeddings are already computed.
		if err := ix.collection.AddDocuments(ctx, docs, 1); err != nil {
			return fmt.Errorf("indexing batch at %d: %w", start, err)
		}

		ix.logger.Info("indexed name batch",
			zap.Int("indexed", end),
			zap.Int("total", len(entries)))
	}
	return nil
}

// Count returns the number of indexed names.
func (ix *Index) Count() int {
	return ix.collection.Count()
}

// QueryEmbedding searches the index with a precomputed embedding, returning
// up to topK hits at or above the similarity threshold, best first.
func (ix *Index) QueryEmbedding(ctx context.Context, embedding []float32, topK int, threshold float64) ([]Hit, error) {
	count := ix.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	results, err := ix.collection.QueryEmbedding(ctx, embedding, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		similarity := float64(r.Similarity)
		if similarity < threshold {
			continue
		}
		hits = append(hits, Hit{
			Name:       r.Metadata["name"],
			Suburb:     r.Metadata["suburb"],
			Postcode:   r.Metadata["postcode"],
			Similarity: similarity,
		})
	}
	return hits, nil
}
