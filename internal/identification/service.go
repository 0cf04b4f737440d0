package identification

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/nesventory/identifier/internal/metrics"
	"github.com/nesventory/identifier/internal/models"
	"github.com/nesventory/identifier/internal/providers"
)

// Service runs identification requests against one provider
type Service struct {
	provider    providers.Provider
	model       string
	temperature float64
}

// NewService creates a service. An empty model selects the provider default.
func NewService(provider providers.Provider, model string, temperature float64) *Service {
	if model == "" {
		model = DefaultModel(provider.Name())
	}
	return &Service{
		provider:    provider,
		model:       model,
		temperature: temperature,
	}
}

// DefaultModel returns the model used when none is configured
func DefaultModel(provider string) string {
	switch provider {
	case "gemini":
		return "gemini-2.5-flash"
	case "openai":
		return "gpt-4o"
	case "ollama":
		return "mistral-small3.2:24b"
	default:
		return ""
	}
}

func (s *Service) ProviderName() string { return s.provider.Name() }
func (s *Service) Model() string        { return s.model }

func (s *Service) generate(ctx context.Context, operation string, req providers.Request) (*providers.Response, error) {
	req.Model = s.model
	req.Temperature = s.temperature

	start := time.Now()
	resp, err := s.provider.Generate(ctx, req)
	metrics.AIRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AIRequests.WithLabelValues(operation, "error").Inc()
		return nil, fmt.Errorf("%s request failed: %w", operation, err)
	}
	if resp == nil {
		resp = &providers.Response{}
	}
	metrics.AIRequests.WithLabelValues(operation, "ok").Inc()
	slog.Debug("AI response received", "operation", operation, "provider", s.provider.Name(), "model", s.model, "length", len(resp.Text), "citations", len(resp.Citations))
	return resp, nil
}

// Identify returns every candidate the model sees in the image
func (s *Service) Identify(ctx context.Context, image *models.ImagePayload) ([]models.CandidateItem, error) {
	resp, err := s.generate(ctx, "identify", BuildIdentifyRequest(image))
	if err != nil {
		return nil, err
	}
	items, err := ParseIdentifyResponse(resp.Text)
	if err != nil {
		slog.Error("Failed to parse identification", "err", err, "response", truncate(resp.Text, 500))
		return nil, err
	}
	slog.Info("Identified items", "provider", s.provider.Name(), "model", s.model, "count", len(items))
	return items, nil
}

// Alternatives re-queries for candidates after a rejection
func (s *Service) Alternatives(ctx context.Context, image *models.ImagePayload, rejectedName, userContext string) ([]models.AlternativeCandidate, error) {
	resp, err := s.generate(ctx, "alternatives", BuildAlternativesRequest(image, rejectedName, userContext))
	if err != nil {
		return nil, err
	}
	alts, err := ParseAlternativesResponse(resp.Text)
	if err != nil {
		slog.Error("Failed to parse alternatives", "err", err, "response", truncate(resp.Text, 500))
		return nil, err
	}
	return alts, nil
}

// Market returns a grounded market summary for a piece
func (s *Service) Market(ctx context.Context, name, series string) (*models.MarketReport, error) {
	resp, err := s.generate(ctx, "market", BuildMarketQuery(name, series))
	if err != nil {
		return nil, err
	}
	return ParseMarketResponse(resp)
}

// ParseDataTag reads a manufacturer label from an image
func (s *Service) ParseDataTag(ctx context.Context, image *models.ImagePayload) (*models.DataTag, error) {
	resp, err := s.generate(ctx, "data_tag", BuildDataTagRequest(image))
	if err != nil {
		return nil, err
	}
	return ParseDataTagResponse(resp.Text)
}

// LookupBarcode identifies a product from its UPC
func (s *Service) LookupBarcode(ctx context.Context, code string) (*models.BarcodeResult, error) {
	resp, err := s.generate(ctx, "barcode", BuildBarcodeRequest(code))
	if err != nil {
		return nil, err
	}
	return ParseBarcodeResponse(resp.Text)
}

// truncate cuts s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
