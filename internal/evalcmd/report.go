package evalcmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/nesventory/identifier/internal/eval/results"
)

func executeReport(w io.Writer, path, format string) error {
	spec, err := results.LoadYAML(path)
	if err != nil {
		return err
	}

	switch format {
	case "text":
		printTextReport(w, spec)
		return nil
	case "csv":
		resultsTable(w, spec).RenderCSV()
		return nil
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(spec)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printTextReport(w io.Writer, spec *results.EvalSpec) {
	fmt.Fprintf(w, "Provider: %s  Model: %s  Run: %s\n", spec.Config.Provider, spec.Config.Model, spec.Config.Timestamp)
	fmt.Fprintf(w, "Dataset: %s (%d images)\n\n", spec.Config.DatasetPath, spec.Config.SampleSize)

	summary := table.NewWriter()
	summary.SetOutputMirror(w)
	summary.SetStyle(table.StyleRounded)
	summary.AppendRows([]table.Row{
		{"Successful", spec.Summary.Successful},
		{"Failed", spec.Summary.Failed},
		{"Name accuracy", pct(spec.Summary.NameAccuracy)},
		{"Series accuracy", pct(spec.Summary.SeriesAccuracy)},
		{"Rarity agreement", pct(spec.Summary.RarityAgreement)},
		{"Genuine agreement", pct(spec.Summary.GenuineAgreement)},
		{"Overall", pct(spec.Summary.OverallAccuracy)},
	})
	summary.Render()

	t := resultsTable(w, spec)
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func resultsTable(w io.Writer, spec *results.EvalSpec) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"ID", "Expected", "Actual", "Name", "Series", "Rarity", "Overall", "Error"})
	for _, r := range spec.Results {
		rarity := r.ActualRarity
		if r.ExpectedRarity != "" && r.ExpectedRarity != r.ActualRarity {
			rarity = fmt.Sprintf("%s (expected %s)", r.ActualRarity, r.ExpectedRarity)
		}
		t.AppendRow(table.Row{
			r.Identifier,
			r.ExpectedName,
			r.ActualName,
			pct(r.NameScore),
			pct(r.SeriesScore),
			rarity,
			pct(r.OverallScore),
			r.Error,
		})
	}
	return t
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
