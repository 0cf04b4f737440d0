package identification

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/nesventory/identifier/internal/models"
	"github.com/nesventory/identifier/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func sampleCandidates() []models.CandidateItem {
	return []models.CandidateItem{
		{
			Name:                "Dickens' Village Mill",
			Series:              "Dickens' Village",
			ItemNumber:          ptr("6519-6"),
			YearIntroduced:      ptr(1985),
			YearRetired:         ptr(1986),
			RetiredStatus:       ptr("Retired"),
			EstimatedCondition:  "Excellent",
			EstimatedValueRange: "$250 - $350",
			Description:         "Matte porcelain mill with water wheel",
			IsGenuine:           true,
			ConfidenceScore:     87.5,
			IsLimitedEdition:    true,
			ReviewState:         models.ReviewIdle,
		},
		{
			Name:                "Snow Village Church",
			Series:              "The Original Snow Village",
			EstimatedCondition:  "Good",
			EstimatedValueRange: "$20 - $30",
			Description:         "Glossy ceramic church, small chip on steeple",
			IsGenuine:           true,
			ConfidenceScore:     40,
			ReviewState:         models.ReviewIdle,
		},
	}
}

func TestParseIdentifyResponseRoundTrip(t *testing.T) {
	candidates := sampleCandidates()

	raw, err := json.Marshal(map[string]any{"items": candidates})
	require.NoError(t, err)

	parsed, err := ParseIdentifyResponse(string(raw))
	require.NoError(t, err)
	assert.Equal(t, candidates, parsed)

	again, err := json.Marshal(map[string]any{"items": parsed})
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(again))
}

func TestParseIdentifyResponseShapes(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantCount int
		wantErr   error
	}{
		{name: "empty text", raw: "   ", wantErr: ErrNoResponse},
		{name: "not json", raw: "I see a church", wantErr: ErrMalformedResponse},
		{name: "broken json", raw: `{"items": [`, wantErr: ErrMalformedResponse},
		{name: "items wrong type", raw: `{"items": "none"}`, wantErr: ErrMalformedResponse},
		{name: "items absent", raw: `{"note": "nothing here"}`, wantCount: 0},
		{name: "items null", raw: `{"items": null}`, wantCount: 0},
		{name: "items empty", raw: `{"items": []}`, wantCount: 0},
		{name: "bare array", raw: `[{"name": "A"}, {"name": "B"}]`, wantCount: 2},
		{name: "single item object", raw: `{"name": "Cherry Lane Shops", "series": "Dickens' Village"}`, wantCount: 1},
		{name: "code fenced", raw: "```json\n{\"items\": [{\"name\": \"A\"}]}\n```", wantCount: 1},
		{name: "prose around fence", raw: "Here is what I found:\n```json\n{\"items\": [{\"name\": \"A\"}]}\n```\nLet me know.", wantCount: 1},
		{name: "prose around object", raw: `I see two pieces. {"items": [{"name": "A"}, {"name": "B"}]} Hope that helps.`, wantCount: 2},
		{name: "prose around array", raw: `Result: [{"name": "A"}]`, wantCount: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := ParseIdentifyResponse(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, items)
			assert.Len(t, items, tt.wantCount)
		})
	}
}

func TestParseIdentifyResponseNormalizes(t *testing.T) {
	items, err := ParseIdentifyResponse(`{"items": [
		{"name": "A", "confidenceScore": 140},
		{"name": "B", "confidenceScore": -3, "reviewState": "bogus"}
	]}`)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, 100.0, items[0].ConfidenceScore)
	assert.Equal(t, 0.0, items[1].ConfidenceScore)
	assert.Equal(t, models.ReviewIdle, items[0].ReviewState)
	assert.Equal(t, models.ReviewIdle, items[1].ReviewState)
}

func TestValidateAgainstIdentifySchema(t *testing.T) {
	raw, err := json.Marshal(map[string]any{"items": sampleCandidates()})
	require.NoError(t, err)

	problems, err := ValidateAgainst(IdentifySchema(), string(raw))
	require.NoError(t, err)
	assert.Empty(t, problems)

	problems, err = ValidateAgainst(IdentifySchema(), `{"items": [{"name": "A", "yearIntroduced": "1985"}]}`)
	require.NoError(t, err)
	joined := strings.Join(problems, "\n")
	assert.Contains(t, joined, "series")
	assert.Contains(t, joined, "yearIntroduced")
}

func TestParseAlternativesResponse(t *testing.T) {
	alts, err := ParseAlternativesResponse(`{"alternatives": [
		{"name": "Crowntree Inn", "series": "Dickens' Village", "reason": "Tudor beams", "confidenceScore": 80},
		{"name": "", "series": "x", "reason": "blank name is dropped"},
		{"name": "Blythe Pond Mill House", "series": "Dickens' Village", "reason": "Water wheel"},
		{"name": "Barley Bree", "series": "Dickens' Village", "reason": "Thatched roof", "confidenceScore": 250},
		{"name": "Fourth", "series": "Dickens' Village", "reason": "over the cap"}
	]}`)
	require.NoError(t, err)
	require.Len(t, alts, MaxAlternatives)

	assert.Equal(t, "Crowntree Inn", alts[0].Name)
	assert.Equal(t, "Blythe Pond Mill House", alts[1].Name)
	assert.Nil(t, alts[1].ConfidenceScore)
	require.NotNil(t, alts[2].ConfidenceScore)
	assert.Equal(t, 100.0, *alts[2].ConfidenceScore)

	_, err = ParseAlternativesResponse("")
	assert.ErrorIs(t, err, ErrNoResponse)

	_, err = ParseAlternativesResponse("{")
	assert.ErrorIs(t, err, ErrMalformedResponse)

	alts, err = ParseAlternativesResponse(`{}`)
	require.NoError(t, err)
	assert.Empty(t, alts)
}

func TestParseAlternativesResponseWithPreamble(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "fenced after prose",
			raw:  "Based on my search, here are the alternatives:\n```json\n{\"alternatives\": [{\"name\": \"Crowntree Inn\", \"series\": \"Dickens' Village\", \"reason\": \"Tudor beams\"}]}\n```",
		},
		{
			name: "unfenced after prose",
			raw:  `Searching listings suggests: {"alternatives": [{"name": "Crowntree Inn", "series": "Dickens' Village", "reason": "Tudor beams"}]}`,
		},
		{
			name: "fence without language tag",
			raw:  "Sure.\n```\n[{\"name\": \"Crowntree Inn\", \"series\": \"Dickens' Village\", \"reason\": \"Tudor beams\"}]\n```",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alts, err := ParseAlternativesResponse(tt.raw)
			require.NoError(t, err)
			require.Len(t, alts, 1)
			assert.Equal(t, "Crowntree Inn", alts[0].Name)
		})
	}

	_, err := ParseAlternativesResponse("No alternatives could be found.")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestParseMarketResponse(t *testing.T) {
	_, err := ParseMarketResponse(&providers.Response{Text: "  "})
	assert.ErrorIs(t, err, ErrNoMarketData)

	_, err = ParseMarketResponse(nil)
	assert.ErrorIs(t, err, ErrNoMarketData)

	report, err := ParseMarketResponse(&providers.Response{
		Text: " Sold listings range from $40 to $65. ",
		Citations: []providers.Citation{
			{Title: "eBay", URI: "https://ebay.example/1"},
			{Title: "eBay again", URI: "https://ebay.example/1"},
			{URI: "https://replacements.example/2"},
			{Title: "no uri"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Sold listings range from $40 to $65.", report.Summary)
	assert.Equal(t, []models.Source{
		{Title: "eBay", URI: "https://ebay.example/1"},
		{Title: "https://replacements.example/2", URI: "https://replacements.example/2"},
	}, report.Sources)
}

func TestParseDataTagAndBarcode(t *testing.T) {
	tag, err := ParseDataTagResponse(`{"manufacturer": "Department 56", "serialNumber": null, "additionalInfo": {"voltage": "120V", "wattage": 40, "country": null, "notes": ""}}`)
	require.NoError(t, err)
	require.NotNil(t, tag.Manufacturer)
	assert.Equal(t, "Department 56", *tag.Manufacturer)
	assert.Nil(t, tag.SerialNumber)
	assert.Equal(t, map[string]any{"voltage": "120V", "wattage": 40.0}, tag.AdditionalInfo)

	result, err := ParseBarcodeResponse(`{"found": false}`)
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.Nil(t, result.Name)

	_, err = ParseBarcodeResponse("")
	assert.ErrorIs(t, err, ErrNoResponse)
}
