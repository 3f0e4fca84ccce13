package report

import (
	"fmt"
	"io"

	md "github.com/nao1215/markdown"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/matchd/internal/hashcheck"
)

// HashFileName is the hash integrity report file.
const HashFileName = "hash_integrity_report.md"

// hashDisplayLen truncates digests in mismatch samples to keep the report
// readable.
const hashDisplayLen = 16

// WriteHash renders the hash integrity report.
func (w *Writer) WriteHash(result *hashcheck.Result) (string, error) {
	f, path, err := w.create(HashFileName)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := w.renderHash(f, result); err != nil {
		return "", fmt.Errorf("rendering hash report: %w", err)
	}
	w.logger.Info("wrote hash integrity report", zap.String("path", path))
	return path, nil
}

func (w *Writer) renderHash(out io.Writer, result *hashcheck.Result) error {
	doc := md.NewMarkdown(out)

	doc.H1("Hash Integrity Report").LF().
		H2("Email Hash Validation").LF().
		BulletList(
			fmt.Sprintf("Records analyzed: %s", comma(result.Email.TotalRecords)),
			fmt.Sprintf("Valid hashes: %s (%s)", comma(result.Email.ValidHashes), percent(result.Email.ValidationRate)),
			fmt.Sprintf("Invalid hashes: %s", comma(result.Email.InvalidHashes)),
		).LF()

	if len(result.Email.Samples) > 0 {
		doc.H3("Sample Mismatches").LF()
		rows := make([][]string, 0, len(result.Email.Samples))
		for _, s := range result.Email.Samples {
			rows = append(rows, []string{
				s.Email,
				truncateHash(s.Expected),
				truncateHash(s.SourceHash),
				truncateHash(s.TargetHash),
			})
		}
		doc.Table(md.TableSet{
			Header: []string{"Email", "Expected", w.labels.Source + " Hash", w.labels.Target + " Hash"},
			Rows:   rows,
		}).LF()
	}

	doc.H2("Cross-Dataset Hash Consistency").LF().
		BulletList(
			fmt.Sprintf("Shared email addresses: %s", comma(result.Consistency.TotalMatches)),
			fmt.Sprintf("Matching hashes: %s", comma(result.Consistency.HashMatches)),
			fmt.Sprintf("Mismatching hashes: %s", comma(result.Consistency.HashMismatches)),
			fmt.Sprintf("Consistency rate: %s", percent(result.Consistency.ConsistencyRate)),
		).LF()

	doc.H2("Mobile Format Detection").LF()
	if result.Mobile == nil {
		doc.PlainTextf("No mobile hashes detected (%s 64-character values) - mobile data appears to be in plain text format.",
			comma(result.MobileHashCount)).LF()
	} else {
		doc.BulletList(
			fmt.Sprintf("Pairs sampled: %s", comma(result.Mobile.TotalSampled)),
			fmt.Sprintf("Plain text: %s (%s)", comma(result.Mobile.PlainFormat), percent(result.Mobile.PlainRate)),
			fmt.Sprintf("Hash format: %s", comma(result.Mobile.HashFormat)),
		).LF()
	}

	doc.H2("Hash Algorithm Analysis").LF().
		H3("Length Distribution").LF()
	lengthRows := make([][]string, 0, len(result.Lengths))
	for _, b := range result.Lengths {
		lengthRows = append(lengthRows, []string{w.tableLabel(b.Table), comma(b.Length), comma(b.Count)})
	}
	doc.Table(md.TableSet{
		Header: []string{"Dataset", "Hash Length", "Records"},
		Rows:   lengthRows,
	}).LF()

	doc.H3("Pattern Distribution").LF()
	patternRows := make([][]string, 0, len(result.Patterns))
	for _, b := range result.Patterns {
		patternRows = append(patternRows, []string{w.tableLabel(b.Table), b.Pattern, comma(b.Count)})
	}
	doc.Table(md.TableSet{
		Header: []string{"Dataset", "Pattern", "Records"},
		Rows:   patternRows,
	}).LF()

	doc.HorizontalRule().LF().
		PlainText(w.footer()).LF()
	return doc.Build()
}

func truncateHash(h string) string {
	if len(h) <= hashDisplayLen {
		return h
	}
	return h[:hashDisplayLen] + "..."
}
