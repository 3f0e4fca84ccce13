package report

import (
	"fmt"
	"io"

	md "github.com/nao1215/markdown"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/matchd/internal/match"
)

// MatchFileName is the match analysis report file.
const MatchFileName = "match_analysis_report.md"

// WriteMatch renders the field and compound match analysis report. It
// returns the written file path.
func (w *Writer) WriteMatch(result *match.Result) (string, error) {
	f, path, err := w.create(MatchFileName)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := w.renderMatch(f, result); err != nil {
		return "", fmt.Errorf("rendering match report: %w", err)
	}
	w.logger.Info("wrote match analysis report", zap.String("path", path))
	return path, nil
}

func (w *Writer) renderMatch(out io.Writer, result *match.Result) error {
	doc := md.NewMarkdown(out)

	doc.H1("Match Analysis Report").LF().
		H2("Executive Summary").LF().
		PlainTextf("Exact-match comparison of %s (%s records) and %s (%s records) across identity fields and compound keys.",
			w.labels.Source, comma(result.SourceCount),
			w.labels.Target, comma(result.TargetCount)).LF()

	doc.H2("Dataset Overview").LF().
		BulletList(
			fmt.Sprintf("%s records: %s", w.labels.Source, comma(result.SourceCount)),
			fmt.Sprintf("%s records: %s", w.labels.Target, comma(result.TargetCount)),
			fmt.Sprintf("Analysis time: %.2fs", result.Elapsed.Seconds()),
		).LF()

	doc.H2("Direct Field Matching").LF()
	doc.Table(fieldStatsTable(w.labels, result.Direct)).LF()

	doc.H2("Compound Key Matching").LF().
		PlainText("Compound keys combine multiple fields to separate identity collisions from true matches.").LF()
	doc.Table(fieldStatsTable(w.labels, result.Compound)).LF()

	doc.H2("Similarity Measures").LF()
	rows := make([][]string, 0, len(result.Direct))
	for _, fs := range result.Direct {
		rows = append(rows, []string{
			fs.Description,
			ratio(fs.JaccardIndex),
			ratio(fs.OverlapCoefficient),
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"Field", "Jaccard Index", "Overlap Coefficient"},
		Rows:   rows,
	}).LF()

	doc.HorizontalRule().LF().
		PlainText(w.footer()).LF()
	return doc.Build()
}

func fieldStatsTable(labels Labels, fields []match.FieldStats) md.TableSet {
	rows := make([][]string, 0, len(fields))
	for _, fs := range fields {
		rows = append(rows, []string{
			fs.Description,
			comma(fs.Matches),
			comma(fs.SourceOnly),
			comma(fs.TargetOnly),
			percent(fs.SourceMatchRate),
			percent(fs.TargetMatchRate),
		})
	}
	return md.TableSet{
		Header: []string{
			"Field", "Matches",
			labels.Source + " Only", labels.Target + " Only",
			labels.Source + " Match Rate", labels.Target + " Match Rate",
		},
		Rows: rows,
	}
}
