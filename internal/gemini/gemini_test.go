package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/nesventory/identifier/internal/apikey"
	"github.com/nesventory/identifier/internal/models"
	"github.com/nesventory/identifier/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToGenaiSchema(t *testing.T) {
	s := &providers.Schema{
		Type: providers.TypeObject,
		Properties: map[string]*providers.Schema{
			"items": {
				Type: providers.TypeArray,
				Items: &providers.Schema{
					Type: providers.TypeObject,
					Properties: map[string]*providers.Schema{
						"name":           {Type: providers.TypeString, Description: "item name"},
						"yearIntroduced": {Type: providers.TypeInteger, Nullable: true},
					},
					Required: []string{"name"},
				},
			},
		},
	}

	out := toGenaiSchema(s)
	require.NotNil(t, out)
	assert.Equal(t, genai.TypeObject, out.Type)

	items := out.Properties["items"]
	require.NotNil(t, items)
	assert.Equal(t, genai.TypeArray, items.Type)
	require.NotNil(t, items.Items)
	assert.Equal(t, []string{"name"}, items.Items.Required)
	assert.Equal(t, "item name", items.Items.Properties["name"].Description)
	assert.True(t, items.Items.Properties["yearIntroduced"].Nullable)
	assert.Equal(t, genai.TypeInteger, items.Items.Properties["yearIntroduced"].Type)
}

func TestGenerateMissingKey(t *testing.T) {
	g := New(apikey.NewStore("gemini"))
	_, err := g.Generate(context.Background(), providers.Request{Prompt: "hi"})
	assert.ErrorIs(t, err, apikey.ErrMissingAPIKey)
}

func TestGenerateGrounded(t *testing.T) {
	var got map[string]any
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": "Prices are "}, {"text": "steady."}]},
				"groundingMetadata": {"groundingChunks": [
					{"web": {"uri": "https://example.com/a", "title": "A"}},
					{"web": {"uri": "", "title": "empty"}},
					{}
				]}
			}]
		}`))
	}))
	defer server.Close()

	g := New(apikey.NewStore("gemini", apikey.Static("test-key"))).WithBaseURL(server.URL)
	resp, err := g.Generate(context.Background(), providers.Request{
		Model:     "gemini-2.5-flash",
		Prompt:    "market for Dickens Village Mill",
		Image:     models.NewImagePayload([]byte("img"), "image/png"),
		Schema:    &providers.Schema{Type: providers.TypeObject},
		Grounding: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Prices are steady.", resp.Text)
	assert.Equal(t, []providers.Citation{{Title: "A", URI: "https://example.com/a"}}, resp.Citations)

	assert.Contains(t, path, "gemini-2.5-flash:generateContent")

	body, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(body), "googleSearch")
	assert.Contains(t, string(body), "image/png")
	assert.Contains(t, string(body), "JSON schema")
}

func TestGenerateGroundedInvalidKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT","details":[{"reason":"API_KEY_INVALID"}]}}`))
	}))
	defer server.Close()

	store := apikey.NewStore("gemini", apikey.Static("bad-key"))
	g := New(store).WithBaseURL(server.URL)

	_, err := g.Generate(context.Background(), providers.Request{Model: "m", Prompt: "p", Grounding: true})
	require.Error(t, err)
	assert.Equal(t, apikey.Invalidated, store.State())
}
