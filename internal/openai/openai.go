package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nesventory/identifier/internal/providers"
)

const defaultBaseURL = "https://api.openai.com"

// KeySource supplies the API key
type KeySource interface {
	Key(ctx context.Context) (string, error)
	Invalidate()
}

// OpenAI is a provider for OpenAI
type OpenAI struct {
	keys       KeySource
	baseURL    string
	httpClient *http.Client
}

// New returns a new OpenAI provider
func New(keys KeySource) *OpenAI {
	return &OpenAI{
		keys:    keys,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// WithBaseURL targets an OpenAI-compatible server. An empty URL keeps the
// default.
func (o *OpenAI) WithBaseURL(u string) *OpenAI {
	if u != "" {
		o.baseURL = strings.TrimRight(u, "/")
	}
	return o
}

func (o *OpenAI) Name() string { return "openai" }

// Generate sends the prompt and optional image to chat completions
func (o *OpenAI) Generate(ctx context.Context, req providers.Request) (*providers.Response, error) {
	apiKey, err := o.keys.Key(ctx)
	if err != nil {
		return nil, err
	}

	if req.Grounding {
		slog.Warn("OpenAI provider does not support search grounding, continuing without it", "model", req.Model)
	}

	content := []map[string]any{
		{
			"type": "text",
			"text": req.Prompt,
		},
	}
	if req.Image != nil {
		content = append(content, map[string]any{
			"type": "image_url",
			"image_url": map[string]string{
				"url": "data:" + req.Image.MIMEType + ";base64," + req.Image.Data,
			},
		})
	}

	requestBody := map[string]any{
		"model": req.Model,
		"messages": []map[string]any{
			{
				"role":    "user",
				"content": content,
			},
		},
		"max_tokens":  4000,
		"temperature": req.Temperature,
	}
	if req.Schema != nil {
		requestBody["response_format"] = map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   "response",
				"schema": req.Schema.JSONSchema(),
			},
		}
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/v1/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		o.keys.Invalidate()
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(response.Choices) == 0 {
		return &providers.Response{}, nil
	}

	return &providers.Response{Text: response.Choices[0].Message.Content}, nil
}
