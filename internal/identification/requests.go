package identification

import (
	"strings"

	"github.com/nesventory/identifier/internal/models"
	"github.com/nesventory/identifier/internal/providers"
)

// MaxAlternatives caps how many candidates a rejection re-query returns
const MaxAlternatives = 3

// BuildIdentifyRequest asks for every piece in the image as structured JSON
func BuildIdentifyRequest(image *models.ImagePayload) providers.Request {
	return providers.Request{
		Prompt: identifyPrompt(),
		Image:  image,
		Schema: IdentifySchema(),
	}
}

// BuildAlternativesRequest asks for ranked alternatives to a rejected
// identification. userContext is appended to the prompt as given.
func BuildAlternativesRequest(image *models.ImagePayload, rejectedName, userContext string) providers.Request {
	return providers.Request{
		Prompt:    alternativesPrompt(strings.TrimSpace(rejectedName), userContext),
		Image:     image,
		Schema:    AlternativesSchema(),
		Grounding: true,
	}
}

// BuildMarketQuery asks for a grounded free-text market summary
func BuildMarketQuery(name, series string) providers.Request {
	return providers.Request{
		Prompt:    marketPrompt(strings.TrimSpace(name), strings.TrimSpace(series)),
		Grounding: true,
	}
}

// BuildDataTagRequest reads a manufacturer label
func BuildDataTagRequest(image *models.ImagePayload) providers.Request {
	return providers.Request{
		Prompt: dataTagPrompt(),
		Image:  image,
		Schema: DataTagSchema(),
	}
}

// BuildBarcodeRequest looks up a UPC from the model's own knowledge
func BuildBarcodeRequest(code string) providers.Request {
	return providers.Request{
		Prompt: barcodePrompt(strings.TrimSpace(code)),
		Schema: BarcodeSchema(),
	}
}
