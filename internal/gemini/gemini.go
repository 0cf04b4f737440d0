package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/nesventory/identifier/internal/providers"
	"google.golang.org/api/option"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// KeySource supplies the API key and is told when the service rejects it
type KeySource interface {
	Key(ctx context.Context) (string, error)
	Invalidate()
}

// Gemini is a provider for Google Gemini
type Gemini struct {
	keys       KeySource
	baseURL    string
	httpClient *http.Client
}

// New returns a new Gemini provider
func New(keys KeySource) *Gemini {
	return &Gemini{
		keys:    keys,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// WithBaseURL points grounded calls at another host
func (g *Gemini) WithBaseURL(u string) *Gemini {
	g.baseURL = strings.TrimRight(u, "/")
	return g
}

func (g *Gemini) Name() string { return "gemini" }

// Generate runs the request. Grounded requests go through the
// google.golang.org/genai client, which has the Google Search tool;
// everything else uses generative-ai-go.
func (g *Gemini) Generate(ctx context.Context, req providers.Request) (*providers.Response, error) {
	apiKey, err := g.keys.Key(ctx)
	if err != nil {
		return nil, err
	}

	if req.Grounding {
		return g.generateGrounded(ctx, apiKey, req)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(req.Model)
	model.SetTemperature(float32(req.Temperature))
	if req.Schema != nil {
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = toGenaiSchema(req.Schema)
	}

	parts := make([]genai.Part, 0, 2)
	if req.Image != nil {
		raw, err := req.Image.Bytes()
		if err != nil {
			return nil, fmt.Errorf("failed to decode image: %w", err)
		}
		parts = append(parts, genai.Blob{MIMEType: req.Image.MIMEType, Data: raw})
	}
	parts = append(parts, genai.Text(req.Prompt))

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		if isInvalidKey(err.Error()) {
			g.keys.Invalidate()
		}
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		slog.Debug("Gemini returned no candidates", "model", req.Model)
		return &providers.Response{}, nil
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}

	return &providers.Response{Text: text.String()}, nil
}

func isInvalidKey(msg string) bool {
	return strings.Contains(msg, "API_KEY_INVALID") || strings.Contains(msg, "API key not valid")
}

func toGenaiSchema(s *providers.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Type:        toGenaiType(s.Type),
		Description: s.Description,
		Nullable:    s.Nullable,
		Enum:        s.Enum,
		Required:    s.Required,
		Items:       toGenaiSchema(s.Items),
	}
	if len(s.Enum) > 0 && s.Type == providers.TypeString {
		out.Format = "enum"
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, p := range s.Properties {
			out.Properties[name] = toGenaiSchema(p)
		}
	}
	return out
}

func toGenaiType(t providers.Type) genai.Type {
	switch t {
	case providers.TypeString:
		return genai.TypeString
	case providers.TypeNumber:
		return genai.TypeNumber
	case providers.TypeInteger:
		return genai.TypeInteger
	case providers.TypeBoolean:
		return genai.TypeBoolean
	case providers.TypeArray:
		return genai.TypeArray
	case providers.TypeObject:
		return genai.TypeObject
	default:
		return genai.TypeUnspecified
	}
}
