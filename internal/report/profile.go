package report

import (
	"fmt"
	"io"

	md "github.com/nao1215/markdown"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/matchd/internal/profile"
)

// ProfileFileName is the dataset profile report file.
const ProfileFileName = "dataset_profile_report.md"

// WriteProfile renders the dataset profiling report.
func (w *Writer) WriteProfile(result *profile.Result) (string, error) {
	f, path, err := w.create(ProfileFileName)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := w.renderProfile(f, result); err != nil {
		return "", fmt.Errorf("rendering profile report: %w", err)
	}
	w.logger.Info("wrote dataset profile report", zap.String("path", path))
	return path, nil
}

func (w *Writer) renderProfile(out io.Writer, result *profile.Result) error {
	doc := md.NewMarkdown(out)

	doc.H1("Dataset Profile Report").LF().
		H2("Overview").LF().
		BulletList(
			fmt.Sprintf("%s rows: %s", w.labels.Source, comma(result.Source.Rows)),
			fmt.Sprintf("%s rows: %s", w.labels.Target, comma(result.Target.Rows)),
		).LF()

	for _, tp := range []profile.TableProfile{result.Source, result.Target} {
		doc.H2(w.tableLabel(tp.Table) + " Columns").LF()
		rows := make([][]string, 0, len(tp.Fields))
		for _, fp := range tp.Fields {
			rows = append(rows, []string{
				fp.Column,
				comma(fp.NonNull),
				comma(fp.Nulls),
				percent(fp.NullRate),
				comma(fp.Distinct),
				percent(fp.DistinctRate),
			})
		}
		doc.Table(md.TableSet{
			Header: []string{"Column", "Non-Null", "Nulls", "Null Rate", "Distinct", "Distinct Rate"},
			Rows:   rows,
		}).LF()
	}

	doc.H2("Duplicate Investigation").LF().
		PlainText("Repeated first name, surname, and state keys inflate equi-join match counts; the worst offenders per dataset are listed below.").LF()

	for _, ds := range []profile.DuplicateStats{result.SourceDuplicates, result.TargetDuplicates} {
		doc.H3(w.tableLabel(ds.Table)).LF().
			BulletList(
				fmt.Sprintf("Rows with name and state: %s", comma(ds.PopulatedRows)),
				fmt.Sprintf("Unique name+state keys: %s", comma(ds.UniqueKeys)),
				fmt.Sprintf("Duplicate rows: %s", comma(ds.DuplicateRows)),
			).LF()
		if len(ds.TopDuplicates) > 0 {
			rows := make([][]string, 0, len(ds.TopDuplicates))
			for _, g := range ds.TopDuplicates {
				rows = append(rows, []string{g.Name, comma(g.Count)})
			}
			doc.Table(md.TableSet{
				Header: []string{"Name", "Records"},
				Rows:   rows,
			}).LF()
		}
	}

	doc.H2("Join Analysis").LF().
		PlainTextf("Maximum possible unique name-key matches: %s.", comma(result.MaxUniqueMatches)).LF()

	doc.HorizontalRule().LF().
		PlainText(w.footer()).LF()
	return doc.Build()
}
