package providers

import (
	"context"

	"github.com/nesventory/identifier/internal/models"
)

// Request is a single call to a vision/search model
type Request struct {
	Model       string
	Temperature float64
	Prompt      string

	// Image is optional; text-only requests leave it nil
	Image *models.ImagePayload

	// Schema asks the provider for structured JSON output
	Schema *Schema

	// Grounding enables the provider's web search so answers can cite
	// live sources
	Grounding bool
}

// Citation is a source the provider grounded its answer on
type Citation struct {
	Title string
	URI   string
}

// Response is what a provider returned
type Response struct {
	Text      string
	Citations []Citation
}

// Provider defines the interface for an LLM provider
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Response, error)
}
