package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	gogenai "google.golang.org/genai"

	"github.com/nesventory/identifier/internal/providers"
)

// generateGrounded runs the request with the Google Search tool through the
// google.golang.org/genai client. The search tool cannot be combined with a
// response schema, so the schema is spelled out in the prompt instead.
func (g *Gemini) generateGrounded(ctx context.Context, apiKey string, req providers.Request) (*providers.Response, error) {
	prompt := req.Prompt
	if req.Schema != nil {
		schemaJSON, err := json.MarshalIndent(req.Schema.JSONSchema(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal schema: %w", err)
		}
		prompt += "\n\nRespond with ONLY a JSON object (no markdown, no code blocks) matching this JSON schema:\n" + string(schemaJSON)
	}

	client, err := gogenai.NewClient(ctx, &gogenai.ClientConfig{
		APIKey:      apiKey,
		Backend:     gogenai.BackendGeminiAPI,
		HTTPClient:  g.httpClient,
		HTTPOptions: gogenai.HTTPOptions{BaseURL: g.baseURL + "/"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create grounded gemini client: %w", err)
	}

	parts := make([]*gogenai.Part, 0, 2)
	if req.Image != nil {
		raw, err := req.Image.Bytes()
		if err != nil {
			return nil, fmt.Errorf("failed to decode image: %w", err)
		}
		parts = append(parts, gogenai.NewPartFromBytes(raw, req.Image.MIMEType))
	}
	parts = append(parts, gogenai.NewPartFromText(prompt))

	resp, err := client.Models.GenerateContent(ctx, req.Model,
		[]*gogenai.Content{gogenai.NewContentFromParts(parts, gogenai.RoleUser)},
		&gogenai.GenerateContentConfig{
			Temperature: gogenai.Ptr(float32(req.Temperature)),
			Tools:       []*gogenai.Tool{{GoogleSearch: &gogenai.GoogleSearch{}}},
		},
	)
	if err != nil {
		if isInvalidKey(err.Error()) {
			g.keys.Invalidate()
		}
		return nil, fmt.Errorf("failed to generate grounded content: %w", err)
	}

	out := &providers.Response{}
	if len(resp.Candidates) == 0 {
		return out, nil
	}

	candidate := resp.Candidates[0]
	if candidate.Content != nil {
		var text strings.Builder
		for _, p := range candidate.Content.Parts {
			if p != nil && !p.Thought {
				text.WriteString(p.Text)
			}
		}
		out.Text = text.String()
	}

	if candidate.GroundingMetadata != nil {
		for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
				continue
			}
			out.Citations = append(out.Citations, providers.Citation{Title: chunk.Web.Title, URI: chunk.Web.URI})
		}
	}

	return out, nil
}
