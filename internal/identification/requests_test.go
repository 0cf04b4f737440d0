package identification

import (
	"strings"
	"testing"

	"github.com/nesventory/identifier/internal/models"
	"github.com/nesventory/identifier/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIdentifyRequest(t *testing.T) {
	image := models.NewImagePayload([]byte("jpeg bytes"), "image/jpeg")
	req := BuildIdentifyRequest(image)

	assert.Same(t, image, req.Image)
	assert.False(t, req.Grounding)
	require.NotNil(t, req.Schema)

	items := req.Schema.Properties["items"]
	require.NotNil(t, items)
	assert.Equal(t, providers.TypeArray, items.Type)

	item := items.Items
	require.NotNil(t, item)
	assert.ElementsMatch(t, []string{"name", "series", "description", "isGenuine", "estimatedCondition"}, item.Required)
	assert.Equal(t, itemFieldOrder, item.PropertyNames())

	for name, prop := range item.Properties {
		assert.NotEmpty(t, prop.Description, "property %s has no steering description", name)
	}
	assert.True(t, item.Properties["yearIntroduced"].Nullable)
	assert.True(t, item.Properties["yearRetired"].Nullable)
	assert.False(t, item.Properties["name"].Nullable)
	assert.Contains(t, item.Properties["isGenuine"].Description, "Lemax")
}

func TestBuildAlternativesRequest(t *testing.T) {
	image := models.NewImagePayload([]byte("png bytes"), "image/png")

	req := BuildAlternativesRequest(image, "Old Curiosity Shop", "")
	assert.True(t, req.Grounding)
	assert.Same(t, image, req.Image)
	assert.Contains(t, req.Prompt, `"Old Curiosity Shop"`)
	assert.Contains(t, req.Prompt, "up to 3")
	require.NotNil(t, req.Schema)
	assert.Contains(t, req.Schema.Properties, "alternatives")

	userContext := "Box says 58302, bought around 1996, has a lamppost"
	req = BuildAlternativesRequest(image, "", userContext)
	assert.True(t, strings.HasSuffix(req.Prompt, userContext))
	assert.NotContains(t, req.Prompt, "rejected identification was")
}

func TestBuildMarketQuery(t *testing.T) {
	req := BuildMarketQuery("Scrooge & Marley Counting House", "Dickens' Village")
	assert.True(t, req.Grounding)
	assert.Nil(t, req.Image)
	assert.Nil(t, req.Schema)
	assert.Contains(t, req.Prompt, "Scrooge & Marley Counting House (Dickens' Village)")
}

func TestBuildBarcodeRequest(t *testing.T) {
	req := BuildBarcodeRequest(" 045544123456 ")
	assert.Contains(t, req.Prompt, "barcode/UPC: 045544123456\n")
	assert.Nil(t, req.Image)
	require.NotNil(t, req.Schema)
	assert.Equal(t, []string{"found"}, req.Schema.Required)
}
