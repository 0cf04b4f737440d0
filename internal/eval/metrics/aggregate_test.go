package metrics

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAggregateEvaluationResults(t *testing.T) {
	results := []EvaluationResult{
		{
			ID:             "1",
			ProcessingTime: 2 * time.Second,
			Comparison: &ItemComparison{
				NameMatch:    FieldMatch{Score: 1.0, Method: "exact"},
				SeriesMatch:  FieldMatch{Score: 0.8, Method: "substring"},
				RarityMatch:  true,
				GenuineMatch: true,
				OverallScore: 0.95,
			},
		},
		{
			ID:             "2",
			ProcessingTime: 4 * time.Second,
			Comparison: &ItemComparison{
				NameMatch:    FieldMatch{Score: 0.2, Method: "no_match"},
				SeriesMatch:  FieldMatch{Score: 0.0, Method: "actual_missing"},
				RarityMatch:  false,
				GenuineMatch: true,
				OverallScore: 0.25,
			},
		},
		{ID: "3", ProcessingTime: time.Second, Error: "identify request failed"},
	}

	agg := AggregateEvaluationResults(results, "gemini", "gemini-2.5-flash")

	assert.Equal(t, 3, agg.TotalRecords)
	assert.Equal(t, 2, agg.SuccessCount)
	assert.Equal(t, 1, agg.FailureCount)
	assert.Equal(t, 1, agg.NameAccuracy.ExactMatches)
	assert.Equal(t, 1, agg.NameAccuracy.NoMatches)
	assert.Equal(t, 1, agg.SeriesAccuracy.FuzzyMatches)
	assert.Equal(t, 1, agg.SeriesAccuracy.MissingFields)
	assert.InDelta(t, 0.6, agg.NameAccuracy.AverageScore, 1e-9)
	assert.InDelta(t, 0.5, agg.RarityAgreement, 1e-9)
	assert.InDelta(t, 1.0, agg.GenuineAgreement, 1e-9)
	assert.InDelta(t, 0.6, agg.OverallAccuracy, 1e-9)
	assert.Equal(t, 3*time.Second, agg.AverageProcessingTime)
	assert.Equal(t, 7*time.Second, agg.TotalProcessingTime)
}

func TestAggregateEmpty(t *testing.T) {
	agg := AggregateEvaluationResults(nil, "ollama", "m")
	assert.Zero(t, agg.OverallAccuracy)
	assert.Zero(t, agg.AverageProcessingTime)
}

func TestPrintSummary(t *testing.T) {
	agg := AggregateEvaluationResults([]EvaluationResult{{ID: "1", Error: "boom"}}, "openai", "gpt-4o")

	var buf bytes.Buffer
	agg.PrintSummary(&buf)
	assert.Contains(t, buf.String(), "IDENTIFIER EVALUATION SUMMARY")
	assert.Contains(t, buf.String(), "gpt-4o")
	assert.Contains(t, buf.String(), "Rarity agreement")
}
