package results

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/nesventory/identifier/internal/eval/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoad(t *testing.T) {
	agg := metrics.AggregateEvaluationResults([]metrics.EvaluationResult{
		{
			ID:             "a",
			Expected:       metrics.Expected{Name: "Brick Abbey", Series: "Dickens' Village", Genuine: true},
			Actual:         &metrics.Actual{Name: "Brick Abbey", Series: "Dickens' Village", Rarity: "Vintage", Genuine: true},
			Candidates:     1,
			Comparison:     metrics.CompareItem(metrics.Expected{Name: "Brick Abbey", Series: "Dickens' Village", Genuine: true}, metrics.Actual{Name: "Brick Abbey", Series: "Dickens' Village", Rarity: "Vintage", Genuine: true}),
			ProcessingTime: 1500 * time.Millisecond,
		},
		{ID: "b", Error: "no candidates"},
	}, "ollama", "mistral-small3.2:24b")
	agg.EvaluationDate = time.Date(2025, 11, 2, 8, 0, 0, 0, time.UTC)

	dir := t.TempDir()
	path, err := SaveToYAML(dir, Build(agg, 0.2, "labels.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mistral-small3.2_24b-2025-11-02_08-00-00.yaml"), path)

	spec, err := LoadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, "ollama", spec.Config.Provider)
	assert.Equal(t, 1, spec.Summary.Successful)
	assert.Equal(t, 1, spec.Summary.Failed)
	require.Len(t, spec.Results, 2)
	assert.Equal(t, "exact", spec.Results[0].NameMethod)
	assert.Equal(t, 1.5, spec.Results[0].Seconds)
	assert.Equal(t, "no candidates", spec.Results[1].Error)
}
