package report

import (
	"fmt"
	"io"

	md "github.com/nao1215/markdown"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/matchd/internal/config"
	"github.com/fyrsmithlabs/matchd/internal/vss"
)

// VSSFileName is the name similarity report file.
const VSSFileName = "vss_name_similarity_report.md"

// WriteVSS renders the vector-similarity name matching report, including
// the fault analysis sections when present.
func (w *Writer) WriteVSS(result *vss.Result, cfg config.VSSConfig) (string, error) {
	f, path, err := w.create(VSSFileName)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := w.renderVSS(f, result, cfg); err != nil {
		return "", fmt.Errorf("rendering similarity report: %w", err)
	}
	w.logger.Info("wrote name similarity report", zap.String("path", path))
	return path, nil
}

func (w *Writer) renderVSS(out io.Writer, result *vss.Result, cfg config.VSSConfig) error {
	doc := md.NewMarkdown(out)

	doc.H1("VSS Name Similarity Analysis Report").LF().
		H2("Executive Summary").LF().
		PlainTextf("Vector similarity search over name embeddings between %s and %s. "+
			"The analysis indexed %s unique %s names and %s unique %s names, querying %s names for cross-dataset matches.",
			w.labels.Source, w.labels.Target,
			comma(result.SourceNames), w.labels.Source,
			comma(result.TargetNames), w.labels.Target,
			comma(result.Analyzed)).LF()

	doc.H2("Configuration").LF().
		BulletList(
			fmt.Sprintf("Embedding model: %s (%d dimensions)", cfg.Model, result.Dimension),
			fmt.Sprintf("Similarity threshold: %.2f", cfg.SimilarityThreshold),
			fmt.Sprintf("Batch size: %s", comma(cfg.BatchSize)),
			fmt.Sprintf("Max results per name: %d", cfg.MaxResultsPerName),
			fmt.Sprintf("Preprocessing enabled: %t", cfg.EnablePreprocessing),
		).LF()

	doc.H2("Match Statistics").LF().
		BulletList(
			fmt.Sprintf("Names analyzed: %s", comma(result.Analyzed)),
			fmt.Sprintf("Matches found: %s", comma(result.Matches)),
			fmt.Sprintf("Match rate: %s", percent(result.MatchRate*100)),
			fmt.Sprintf("High similarity (>0.9): %s (%s of matches)",
				comma(result.HighSimilarity), share(result.HighSimilarity, result.Matches)),
			fmt.Sprintf("Medium similarity (0.8-0.9): %s (%s of matches)",
				comma(result.MediumSimilarity), share(result.MediumSimilarity, result.Matches)),
			fmt.Sprintf("Unmatched names: %s", comma(result.Analyzed-result.Matches)),
		).LF()

	doc.H2("Similarity Quality Distribution").LF()
	doc.Table(md.TableSet{
		Header: []string{"Band", "Range", "Matches", "Share"},
		Rows: [][]string{
			{"Perfect", ">= 0.99", comma(result.Buckets.Perfect), share(result.Buckets.Perfect, result.Matches)},
			{"Excellent", "0.95 - 0.99", comma(result.Buckets.Excellent), share(result.Buckets.Excellent, result.Matches)},
			{"Very Good", "0.90 - 0.95", comma(result.Buckets.VeryGood), share(result.Buckets.VeryGood, result.Matches)},
			{"Good", "0.85 - 0.90", comma(result.Buckets.Good), share(result.Buckets.Good, result.Matches)},
			{"Fair", "0.80 - 0.85", comma(result.Buckets.Fair), share(result.Buckets.Fair, result.Matches)},
		},
	}).LF()

	if result.Similarity.Count > 0 {
		doc.H2("Statistical Measures").LF().
			BulletList(
				fmt.Sprintf("Mean similarity: %s", ratio(result.Similarity.Mean)),
				fmt.Sprintf("Median similarity: %s", ratio(result.Similarity.Median)),
				fmt.Sprintf("Standard deviation: %s", ratio(result.Similarity.StdDev)),
				fmt.Sprintf("Minimum: %s", ratio(result.Similarity.Min)),
				fmt.Sprintf("Maximum: %s", ratio(result.Similarity.Max)),
				fmt.Sprintf("5th percentile: %s", ratio(result.Similarity.P5)),
				fmt.Sprintf("95th percentile: %s", ratio(result.Similarity.P95)),
			).LF()
	}

	if len(result.Samples) > 0 {
		doc.H2("Sample Matches").LF()
		rows := make([][]string, 0, len(result.Samples))
		for _, s := range result.Samples {
			rows = append(rows, []string{
				s.SourceName,
				s.TargetName,
				vss.IndexText("", s.Suburb, s.Postcode),
				ratio(s.Similarity),
				qualityLabel(s.Similarity),
			})
		}
		doc.Table(md.TableSet{
			Header: []string{w.labels.Source + " Name", w.labels.Target + " Name", "Location", "Similarity", "Quality"},
			Rows:   rows,
		}).LF()
	}

	if result.Fault != nil {
		w.renderFault(doc, result)
	}

	doc.HorizontalRule().LF().
		PlainTextf("%s | Processing time: %.2fs", w.footer(), result.Elapsed.Seconds()).LF()
	return doc.Build()
}

func (w *Writer) renderFault(doc *md.Markdown, result *vss.Result) {
	fa := result.Fault

	doc.H2("Fault Detection Analysis").LF().
		H3("Name Quality Issues").LF().
		BulletList(
			fmt.Sprintf("Empty/null names: %s records", comma(fa.EmptyNames)),
			fmt.Sprintf("Single character names: %s records", comma(fa.SingleCharNames)),
			fmt.Sprintf("Numeric-only names: %s records", comma(fa.NumericNames)),
		).LF().
		H3("Geographic Data Issues").LF().
		BulletList(
			fmt.Sprintf("Missing suburb: %s records", comma(fa.MissingSuburb)),
			fmt.Sprintf("Missing postcode: %s records", comma(fa.MissingPostcode)),
		).LF().
		H3("Matching Performance Issues").LF().
		BulletList(
			fmt.Sprintf("Low similarity matches (<0.90): %s", comma(fa.LowSimilarity)),
			fmt.Sprintf("Ambiguous matches: %s names with multiple high-similarity candidates", comma(fa.AmbiguousMatches)),
			fmt.Sprintf("Processing failures: %s", comma(fa.ProcessingFailures)),
		).LF()

	if len(result.Ambiguous) > 0 {
		doc.H3("Ambiguous Match Samples").LF()
		for _, a := range result.Ambiguous {
			candidates := make([]string, 0, len(a.Hits))
			for _, h := range a.Hits {
				candidates = append(candidates,
					fmt.Sprintf("%s (similarity: %s)", h.Name, ratio(h.Similarity)))
			}
			doc.PlainTextf("%s:", a.SourceName).
				BulletList(candidates...).LF()
		}
	}

	doc.H3("Resource Estimates").LF().
		BulletList(
			fmt.Sprintf("Total embeddings: %s", comma(fa.TotalEmbeddings)),
			fmt.Sprintf("Vector memory: %.1f MB", fa.MemoryMB),
			fmt.Sprintf("Index size: %.1f MB", fa.IndexMB),
		).LF()
}

func qualityLabel(similarity float64) string {
	switch {
	case similarity >= 0.99:
		return "Perfect"
	case similarity >= 0.95:
		return "Excellent"
	case similarity >= 0.90:
		return "Very Good"
	case similarity >= 0.85:
		return "Good"
	default:
		return "Fair"
	}
}
