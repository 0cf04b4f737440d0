package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

// EvaluationResult represents the results for a single labelled image
type EvaluationResult struct {
	ID             string
	ImagePath      string
	Expected       Expected
	Actual         *Actual
	Candidates     int
	Comparison     *ItemComparison
	ProcessingTime time.Duration
	Error          string // If identification failed
}

// AggregateResults represents aggregated evaluation metrics
type AggregateResults struct {
	TotalRecords int
	SuccessCount int
	FailureCount int

	NameAccuracy     FieldStats
	SeriesAccuracy   FieldStats
	RarityAgreement  float64
	GenuineAgreement float64

	OverallAccuracy float64

	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration

	Results []EvaluationResult

	EvaluationDate time.Time
	Provider       string
	Model          string
	SampleSize     int
}

// FieldStats contains statistics for a specific field
type FieldStats struct {
	ExactMatches  int
	FuzzyMatches  int
	NoMatches     int
	MissingFields int
	AverageScore  float64
	Scores        []float64
}

// AggregateEvaluationResults aggregates multiple evaluation results
func AggregateEvaluationResults(results []EvaluationResult, provider, model string) *AggregateResults {
	agg := &AggregateResults{
		TotalRecords:   len(results),
		Results:        results,
		EvaluationDate: time.Now(),
		Provider:       provider,
		Model:          model,
		SampleSize:     len(results),
	}

	agg.NameAccuracy = FieldStats{Scores: []float64{}}
	agg.SeriesAccuracy = FieldStats{Scores: []float64{}}

	totalOverallScore := 0.0
	compared := 0
	rarityAgree, genuineAgree := 0, 0
	var totalDuration time.Duration
	var successDuration time.Duration

	for _, result := range results {
		totalDuration += result.ProcessingTime

		if result.Error != "" {
			agg.FailureCount++
			continue
		}

		agg.SuccessCount++
		successDuration += result.ProcessingTime

		if result.Comparison == nil {
			continue
		}
		compared++

		aggregateFieldStats(&agg.NameAccuracy, result.Comparison.NameMatch)
		aggregateFieldStats(&agg.SeriesAccuracy, result.Comparison.SeriesMatch)
		if result.Comparison.RarityMatch {
			rarityAgree++
		}
		if result.Comparison.GenuineMatch {
			genuineAgree++
		}

		totalOverallScore += result.Comparison.OverallScore
	}

	if compared > 0 {
		agg.NameAccuracy.AverageScore = calculateAverage(agg.NameAccuracy.Scores)
		agg.SeriesAccuracy.AverageScore = calculateAverage(agg.SeriesAccuracy.Scores)
		agg.RarityAgreement = float64(rarityAgree) / float64(compared)
		agg.GenuineAgreement = float64(genuineAgree) / float64(compared)
		agg.OverallAccuracy = totalOverallScore / float64(compared)
	}
	if agg.SuccessCount > 0 {
		agg.AverageProcessingTime = successDuration / time.Duration(agg.SuccessCount)
	}

	agg.TotalProcessingTime = totalDuration

	return agg
}

// aggregateFieldStats updates field statistics
func aggregateFieldStats(stats *FieldStats, match FieldMatch) {
	stats.Scores = append(stats.Scores, match.Score)

	switch match.Method {
	case "exact":
		stats.ExactMatches++
	case "fuzzy_high", "fuzzy_medium", "substring":
		stats.FuzzyMatches++
	case "no_match":
		stats.NoMatches++
	case "actual_missing", "expected_missing", "both_missing":
		stats.MissingFields++
	}
}

// calculateAverage calculates the average of a slice of scores
func calculateAverage(scores []float64) float64 {
	if len(scores) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, score := range scores {
		sum += score
	}

	return sum / float64(len(scores))
}

// PrintSummary writes a human-readable summary of the evaluation
func (a *AggregateResults) PrintSummary(w io.Writer) {
	fmt.Fprintf(w, "\nIDENTIFIER EVALUATION SUMMARY\n")
	fmt.Fprintf(w, "Evaluation Date: %s\n", a.EvaluationDate.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Provider: %s  Model: %s  Sample Size: %d\n\n", a.Provider, a.Model, a.SampleSize)

	processing := table.NewWriter()
	processing.SetOutputMirror(w)
	processing.SetStyle(table.StyleRounded)
	processing.SetTitle("Processing")
	processing.AppendRows([]table.Row{
		{"Total Records", a.TotalRecords},
		{"Successful", fmt.Sprintf("%d (%.1f%%)", a.SuccessCount, percent(a.SuccessCount, a.TotalRecords))},
		{"Failed", fmt.Sprintf("%d (%.1f%%)", a.FailureCount, percent(a.FailureCount, a.TotalRecords))},
		{"Average Processing Time", a.AverageProcessingTime.Round(time.Millisecond)},
		{"Total Processing Time", a.TotalProcessingTime.Round(time.Millisecond)},
	})
	processing.Render()

	fields := table.NewWriter()
	fields.SetOutputMirror(w)
	fields.SetStyle(table.StyleRounded)
	fields.SetTitle("Field Accuracy")
	fields.AppendHeader(table.Row{"Field", "Average", "Exact", "Fuzzy", "No Match", "Missing"})
	for _, f := range []struct {
		name  string
		stats FieldStats
	}{{"Name", a.NameAccuracy}, {"Series", a.SeriesAccuracy}} {
		fields.AppendRow(table.Row{
			f.name,
			fmt.Sprintf("%.2f%%", f.stats.AverageScore*100),
			f.stats.ExactMatches,
			f.stats.FuzzyMatches,
			f.stats.NoMatches,
			f.stats.MissingFields,
		})
	}
	fields.AppendSeparator()
	fields.AppendRow(table.Row{"Rarity agreement", fmt.Sprintf("%.2f%%", a.RarityAgreement*100)})
	fields.AppendRow(table.Row{"Genuine agreement", fmt.Sprintf("%.2f%%", a.GenuineAgreement*100)})
	fields.AppendFooter(table.Row{"Overall", fmt.Sprintf("%.2f%%", a.OverallAccuracy*100)})
	fields.Render()
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
