package evalcmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nesventory/identifier/internal/eval/dataset"
	"github.com/nesventory/identifier/internal/eval/metrics"
	"github.com/nesventory/identifier/internal/eval/results"
	"github.com/nesventory/identifier/internal/models"
	"github.com/nesventory/identifier/internal/review"
)

type fakeIdentifier struct {
	candidates []models.CandidateItem
	err        error
	mimeTypes  chan string
}

func (f *fakeIdentifier) Identify(ctx context.Context, image *models.ImagePayload) ([]models.CandidateItem, error) {
	if f.mimeTypes != nil {
		f.mimeTypes <- image.MIMEType
	}
	return f.candidates, f.err
}

func intp(v int) *int       { return &v }
func int64p(v int64) *int64 { return &v }

func writeImage(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	// PNG signature followed by junk is enough for content sniffing
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\nrest"), 0o600))
	return path
}

func TestEvaluateItemPicksMostConfidentCandidate(t *testing.T) {
	dir := t.TempDir()
	item := dataset.LabelledItem{
		ID:             "church",
		ImagePath:      writeImage(t, dir, "church.png"),
		Name:           "Dickens' Village Church",
		Series:         "Dickens' Village",
		YearIntroduced: int64p(1985),
		YearRetired:    int64p(1986),
	}
	identifier := &fakeIdentifier{
		mimeTypes: make(chan string, 1),
		candidates: []models.CandidateItem{
			{Name: "Village Church", Series: "Snow Village", IsGenuine: true, ConfidenceScore: 40},
			{Name: "Dickens' Village Church", Series: "Dickens' Village", IsGenuine: true, ConfidenceScore: 91,
				YearIntroduced: intp(1985), YearRetired: intp(1986)},
		},
	}

	result := evaluateItem(context.Background(), identifier, item)

	assert.Equal(t, "image/png", <-identifier.mimeTypes)
	require.Empty(t, result.Error)
	require.NotNil(t, result.Actual)
	assert.Equal(t, 2, result.Candidates)
	assert.Equal(t, "Dickens' Village Church", result.Actual.Name)
	assert.Equal(t, review.RarityOneYearRun, result.Expected.Rarity)
	assert.Equal(t, review.RarityOneYearRun, result.Actual.Rarity)
	assert.InDelta(t, 1.0, result.Comparison.OverallScore, 0.0001)
}

func TestEvaluateItemFailures(t *testing.T) {
	dir := t.TempDir()
	image := writeImage(t, dir, "piece.png")

	tests := []struct {
		name       string
		item       dataset.LabelledItem
		identifier *fakeIdentifier
		want       string
	}{
		{
			name:       "missing image",
			item:       dataset.LabelledItem{ID: "x", ImagePath: filepath.Join(dir, "nope.png")},
			identifier: &fakeIdentifier{},
			want:       "failed to read image",
		},
		{
			name:       "identification error",
			item:       dataset.LabelledItem{ID: "x", ImagePath: image},
			identifier: &fakeIdentifier{err: errors.New("quota")},
			want:       "identification failed: quota",
		},
		{
			name:       "no candidates",
			item:       dataset.LabelledItem{ID: "x", ImagePath: image},
			identifier: &fakeIdentifier{},
			want:       "no candidates returned",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := evaluateItem(context.Background(), tt.identifier, tt.item)
			assert.Contains(t, result.Error, tt.want)
			assert.Nil(t, result.Actual)
			assert.Nil(t, result.Comparison)
		})
	}
}

func TestEvaluateAllKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	var items []dataset.LabelledItem
	for _, id := range []string{"a", "b", "c", "d"} {
		items = append(items, dataset.LabelledItem{ID: id, ImagePath: writeImage(t, dir, id+".png"), Name: "Old Mill"})
	}
	identifier := &fakeIdentifier{candidates: []models.CandidateItem{{Name: "Old Mill", IsGenuine: true}}}

	out := evaluateAll(context.Background(), identifier, items, 3)

	require.Len(t, out, 4)
	for i, r := range out {
		assert.Equal(t, items[i].ID, r.ID)
		assert.Empty(t, r.Error)
	}
}

func TestExpectedForPrefersLabel(t *testing.T) {
	item := dataset.LabelledItem{Rarity: "Custom", YearIntroduced: int64p(1980), YearRetired: int64p(1981)}
	assert.Equal(t, "Custom", expectedFor(item).Rarity)

	item.Rarity = ""
	assert.Equal(t, review.RarityOneYearRun, expectedFor(item).Rarity)

	item.YearRetired = nil
	assert.Empty(t, expectedFor(item).Rarity)
}

func TestReportFormats(t *testing.T) {
	agg := metrics.AggregateEvaluationResults([]metrics.EvaluationResult{{
		ID:         "church",
		Expected:   metrics.Expected{Name: "Village Church", Rarity: review.RarityActive, Genuine: true},
		Actual:     &metrics.Actual{Name: "Village Church", Rarity: review.RarityActive, Genuine: true},
		Comparison: metrics.CompareItem(metrics.Expected{Name: "Village Church"}, metrics.Actual{Name: "Village Church"}),
	}}, "gemini", "gemini-2.5-flash")
	path, err := results.SaveToYAML(t.TempDir(), results.Build(agg, 0.2, "labels.jsonl"))
	require.NoError(t, err)

	var text bytes.Buffer
	require.NoError(t, executeReport(&text, path, "text"))
	assert.Contains(t, text.String(), "gemini-2.5-flash")
	assert.Contains(t, text.String(), "Village Church")

	var csv bytes.Buffer
	require.NoError(t, executeReport(&csv, path, "csv"))
	assert.Contains(t, csv.String(), "church,Village Church,Village Church")

	var js bytes.Buffer
	require.NoError(t, executeReport(&js, path, "json"))
	assert.Contains(t, js.String(), `"Identifier": "church"`)

	assert.ErrorContains(t, executeReport(&js, path, "xml"), "unsupported format")
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labels.jsonl")
	content := `{"id": "mill", "image_path": "missing.png", "name": "Old Mill", "series": "New England Village", "year_introduced": 1990, "year_retired": 1985}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	var out bytes.Buffer
	require.NoError(t, executeInspect(&out, path, 0))

	assert.Contains(t, out.String(), "Old Mill")
	assert.Contains(t, out.String(), "1990-1985")
	assert.Contains(t, out.String(), "image missing")
	assert.Contains(t, out.String(), "cannot be after")
}
