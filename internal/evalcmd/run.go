package evalcmd

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nesventory/identifier/internal/config"
	"github.com/nesventory/identifier/internal/eval/dataset"
	"github.com/nesventory/identifier/internal/eval/metrics"
	"github.com/nesventory/identifier/internal/eval/results"
	"github.com/nesventory/identifier/internal/models"
	"github.com/nesventory/identifier/internal/review"
	"github.com/nesventory/identifier/internal/setup"
)

type runOptions struct {
	datasetPath string
	outputDir   string
	sampleSize  int
	concurrency int
	provider    string
	model       string
}

// Identifier is the part of the identification service an evaluation needs
type Identifier interface {
	Identify(ctx context.Context, image *models.ImagePayload) ([]models.CandidateItem, error)
}

func executeRun(ctx context.Context, cfg *config.Config, opts runOptions) error {
	slog.Info("Starting evaluation run", "dataset", opts.datasetPath, "provider", cfg.Provider, "model", cfg.Model)

	items, err := dataset.NewLoader(opts.datasetPath).Load()
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	items = dataset.Sample(items, opts.sampleSize)
	slog.Info("Dataset loaded", "items", len(items))

	svc, err := setup.Service(cfg, setup.GeminiKeys(cfg))
	if err != nil {
		return err
	}

	evalResults := evaluateAll(ctx, svc, items, opts.concurrency)

	agg := metrics.AggregateEvaluationResults(evalResults, svc.ProviderName(), svc.Model())
	agg.PrintSummary(os.Stdout)

	path, err := results.SaveToYAML(opts.outputDir, results.Build(agg, cfg.Temperature, opts.datasetPath))
	if err != nil {
		return err
	}

	absPath, _ := filepath.Abs(path)
	fmt.Printf("\nResults saved to: %s\n", absPath)
	fmt.Printf("Print them again with:\n  identifier eval report %s\n", path)
	return nil
}

// evaluateAll identifies items with bounded concurrency. Failures are
// recorded per item and never stop the run.
func evaluateAll(ctx context.Context, identifier Identifier, items []dataset.LabelledItem, concurrency int) []metrics.EvaluationResult {
	out := make([]metrics.EvaluationResult, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for i, item := range items {
		g.Go(func() error {
			slog.Info("Processing item", "id", item.ID, "progress", fmt.Sprintf("%d/%d", i+1, len(items)))
			out[i] = evaluateItem(ctx, identifier, item)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func evaluateItem(ctx context.Context, identifier Identifier, item dataset.LabelledItem) metrics.EvaluationResult {
	result := metrics.EvaluationResult{
		ID:        item.ID,
		ImagePath: item.ImagePath,
		Expected:  expectedFor(item),
	}

	start := time.Now()
	defer func() { result.ProcessingTime = time.Since(start) }()

	image, err := loadImage(item.ImagePath)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	candidates, err := identifier.Identify(ctx, image)
	if err != nil {
		result.Error = fmt.Sprintf("identification failed: %v", err)
		return result
	}
	result.Candidates = len(candidates)

	best, ok := bestCandidate(candidates)
	if !ok {
		result.Error = "no candidates returned"
		return result
	}

	actual := metrics.Actual{
		Name:    best.Name,
		Series:  best.Series,
		Rarity:  review.InferRarity(best),
		Genuine: best.IsGenuine,
	}
	result.Actual = &actual
	result.Comparison = metrics.CompareItem(result.Expected, actual)
	return result
}

// expectedFor uses the labelled rarity, or derives one from labelled years
func expectedFor(item dataset.LabelledItem) metrics.Expected {
	expected := metrics.Expected{
		Name:    item.Name,
		Series:  item.Series,
		Rarity:  item.Rarity,
		Genuine: item.Genuine(),
	}
	if expected.Rarity == "" && item.YearRetired != nil {
		introduced, retired := item.Years()
		expected.Rarity = review.InferRarity(models.CandidateItem{YearIntroduced: introduced, YearRetired: retired})
	}
	return expected
}

// bestCandidate picks the most confident candidate
func bestCandidate(candidates []models.CandidateItem) (models.CandidateItem, bool) {
	if len(candidates) == 0 {
		return models.CandidateItem{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.ConfidenceScore > best.ConfidenceScore {
			best = c
		}
	}
	return best, true
}

func loadImage(path string) (*models.ImagePayload, error) {
	if path == "" {
		return nil, fmt.Errorf("no image available")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return models.NewImagePayload(data, mimeType), nil
}
