package results

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nesventory/identifier/internal/eval/metrics"
	"gopkg.in/yaml.v3"
)

// EvalConfig represents the configuration section of the eval YAML
type EvalConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	DatasetPath string  `yaml:"datasetpath"`
	SampleSize  int     `yaml:"samplesize"`
	Timestamp   string  `yaml:"timestamp"`
}

// EvalSummary mirrors the aggregate scores
type EvalSummary struct {
	Successful       int     `yaml:"successful"`
	Failed           int     `yaml:"failed"`
	NameAccuracy     float64 `yaml:"nameaccuracy"`
	SeriesAccuracy   float64 `yaml:"seriesaccuracy"`
	RarityAgreement  float64 `yaml:"rarityagreement"`
	GenuineAgreement float64 `yaml:"genuineagreement"`
	OverallAccuracy  float64 `yaml:"overallaccuracy"`
}

// EvalResult represents a single evaluation result
type EvalResult struct {
	Identifier     string  `yaml:"identifier"`
	ImagePath      string  `yaml:"imagepath"`
	ExpectedName   string  `yaml:"expectedname"`
	ExpectedSeries string  `yaml:"expectedseries,omitempty"`
	ExpectedRarity string  `yaml:"expectedrarity,omitempty"`
	ActualName     string  `yaml:"actualname,omitempty"`
	ActualSeries   string  `yaml:"actualseries,omitempty"`
	ActualRarity   string  `yaml:"actualrarity,omitempty"`
	Candidates     int     `yaml:"candidates"`
	NameScore      float64 `yaml:"namescore"`
	NameMethod     string  `yaml:"namemethod,omitempty"`
	SeriesScore    float64 `yaml:"seriesscore"`
	OverallScore   float64 `yaml:"overallscore"`
	Seconds        float64 `yaml:"seconds"`
	Error          string  `yaml:"error,omitempty"`
}

// EvalSpec represents the complete evaluation specification
type EvalSpec struct {
	Config  EvalConfig   `yaml:"config"`
	Summary EvalSummary  `yaml:"summary"`
	Results []EvalResult `yaml:"results"`
}

// Build converts aggregated results into the YAML document
func Build(agg *metrics.AggregateResults, temperature float64, datasetPath string) EvalSpec {
	spec := EvalSpec{
		Config: EvalConfig{
			Provider:    agg.Provider,
			Model:       agg.Model,
			Temperature: temperature,
			DatasetPath: datasetPath,
			SampleSize:  agg.SampleSize,
			Timestamp:   agg.EvaluationDate.Format("2006-01-02_15-04-05"),
		},
		Summary: EvalSummary{
			Successful:       agg.SuccessCount,
			Failed:           agg.FailureCount,
			NameAccuracy:     agg.NameAccuracy.AverageScore,
			SeriesAccuracy:   agg.SeriesAccuracy.AverageScore,
			RarityAgreement:  agg.RarityAgreement,
			GenuineAgreement: agg.GenuineAgreement,
			OverallAccuracy:  agg.OverallAccuracy,
		},
		Results: make([]EvalResult, 0, len(agg.Results)),
	}

	for _, r := range agg.Results {
		res := EvalResult{
			Identifier:     r.ID,
			ImagePath:      r.ImagePath,
			ExpectedName:   r.Expected.Name,
			ExpectedSeries: r.Expected.Series,
			ExpectedRarity: r.Expected.Rarity,
			Candidates:     r.Candidates,
			Seconds:        r.ProcessingTime.Seconds(),
			Error:          r.Error,
		}
		if r.Actual != nil {
			res.ActualName = r.Actual.Name
			res.ActualSeries = r.Actual.Series
			res.ActualRarity = r.Actual.Rarity
		}
		if r.Comparison != nil {
			res.NameScore = r.Comparison.NameMatch.Score
			res.NameMethod = r.Comparison.NameMatch.Method
			res.SeriesScore = r.Comparison.SeriesMatch.Score
			res.OverallScore = r.Comparison.OverallScore
		}
		spec.Results = append(spec.Results, res)
	}

	return spec
}

// SaveToYAML writes the results to <dir>/<model>-<timestamp>.yaml and
// returns the path
func SaveToYAML(dir string, spec EvalSpec) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s directory: %w", dir, err)
	}

	timestamp := spec.Config.Timestamp
	if timestamp == "" {
		timestamp = time.Now().Format("2006-01-02_15-04-05")
	}
	filename := filepath.Join(dir, fmt.Sprintf("%s-%s.yaml", sanitize(spec.Config.Model), timestamp))

	data, err := yaml.Marshal(&spec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	return filename, nil
}

// LoadYAML reads a results file written by SaveToYAML
func LoadYAML(path string) (*EvalSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}

	var spec EvalSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse results: %w", err)
	}
	return &spec, nil
}

// sanitize keeps model names like "mistral-small3.2:24b" usable as file names
func sanitize(name string) string {
	if name == "" {
		return "model"
	}
	out := []rune(name)
	for i, r := range out {
		switch r {
		case '/', '\\', ':', ' ':
			out[i] = '_'
		}
	}
	return string(out)
}
