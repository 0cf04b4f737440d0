package evalcmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/nesventory/identifier/internal/eval/dataset"
	"github.com/nesventory/identifier/internal/models"
	"github.com/nesventory/identifier/internal/review"
)

func executeInspect(w io.Writer, datasetPath string, limit int) error {
	items, err := dataset.NewLoader(datasetPath).Load()
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	total := len(items)
	if limit > 0 {
		items = dataset.Sample(items, limit)
	}

	bounds := review.DefaultBounds(time.Now())

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "Name", "Series", "Years", "Expected Rarity", "Notes"})

	for _, item := range items {
		introduced, retired := item.Years()
		candidate := models.CandidateItem{YearIntroduced: introduced, YearRetired: retired}

		notes := review.YearWarning(candidate, bounds)
		if _, err := os.Stat(item.ImagePath); err != nil {
			notes = joinNotes(notes, "image missing")
		}
		if !item.Genuine() {
			notes = joinNotes(notes, "not genuine")
		}

		t.AppendRow(table.Row{
			item.ID,
			item.Name,
			item.Series,
			yearRange(introduced, retired),
			expectedFor(item).Rarity,
			notes,
		})
	}

	t.AppendFooter(table.Row{"", fmt.Sprintf("%d of %d entries", len(items), total)})
	t.Render()
	return nil
}

func yearRange(introduced, retired *int) string {
	from, to := "?", "present"
	if introduced != nil {
		from = fmt.Sprint(*introduced)
	}
	if retired != nil {
		to = fmt.Sprint(*retired)
	}
	return from + "-" + to
}

func joinNotes(a, b string) string {
	if a == "" {
		return b
	}
	return a + "; " + b
}
