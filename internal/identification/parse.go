package identification

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nesventory/identifier/internal/models"
	"github.com/nesventory/identifier/internal/providers"
)

var (
	// ErrNoResponse means the AI service returned no text
	ErrNoResponse = errors.New("no response from AI service")

	// ErrMalformedResponse means the returned text is not the JSON we asked for
	ErrMalformedResponse = errors.New("malformed AI response")

	// ErrNoMarketData means a market lookup produced no summary
	ErrNoMarketData = errors.New("no market data returned")
)

// ParseIdentifyResponse decodes the structured identification payload.
// A missing items field means nothing was found. A bare array and a
// single-item object are accepted as well.
func ParseIdentifyResponse(raw string) ([]models.CandidateItem, error) {
	text := extractJSON(raw)
	if text == "" {
		return nil, ErrNoResponse
	}

	var items []models.CandidateItem
	switch text[0] {
	case '[':
		if err := json.Unmarshal([]byte(text), &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal([]byte(text), &fields); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		if rawItems, ok := fields["items"]; ok {
			if !isNull(rawItems) {
				if err := json.Unmarshal(rawItems, &items); err != nil {
					return nil, fmt.Errorf("%w: items: %v", ErrMalformedResponse, err)
				}
			}
			if problems, err := ValidateAgainst(IdentifySchema(), text); err == nil && len(problems) > 0 {
				slog.Warn("Identification response does not match schema", "problems", problems)
			}
		} else if _, ok := fields["name"]; ok {
			var one models.CandidateItem
			if err := json.Unmarshal([]byte(text), &one); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
			}
			items = append(items, one)
		}
	default:
		return nil, fmt.Errorf("%w: expected a JSON object or array", ErrMalformedResponse)
	}

	if items == nil {
		items = []models.CandidateItem{}
	}
	for i := range items {
		normalizeItem(&items[i])
	}
	return items, nil
}

func normalizeItem(item *models.CandidateItem) {
	item.ConfidenceScore = clampScore(item.ConfidenceScore)
	switch item.ReviewState {
	case models.ReviewIdle, models.ReviewAccepted, models.ReviewRejected:
	default:
		item.ReviewState = models.ReviewIdle
	}
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ParseAlternativesResponse decodes at most MaxAlternatives candidates
func ParseAlternativesResponse(raw string) ([]models.AlternativeCandidate, error) {
	text := extractJSON(raw)
	if text == "" {
		return nil, ErrNoResponse
	}

	var alts []models.AlternativeCandidate
	if text[0] == '[' {
		if err := json.Unmarshal([]byte(text), &alts); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	} else {
		var envelope struct {
			Alternatives []models.AlternativeCandidate `json:"alternatives"`
		}
		if err := json.Unmarshal([]byte(text), &envelope); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		alts = envelope.Alternatives
	}

	out := make([]models.AlternativeCandidate, 0, MaxAlternatives)
	for _, alt := range alts {
		if strings.TrimSpace(alt.Name) == "" {
			continue
		}
		if alt.ConfidenceScore != nil {
			score := clampScore(*alt.ConfidenceScore)
			alt.ConfidenceScore = &score
		}
		out = append(out, alt)
		if len(out) == MaxAlternatives {
			break
		}
	}
	return out, nil
}

// ParseMarketResponse builds a report from the summary text and the
// grounding citations
func ParseMarketResponse(resp *providers.Response) (*models.MarketReport, error) {
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return nil, ErrNoMarketData
	}

	report := &models.MarketReport{
		Summary: strings.TrimSpace(resp.Text),
		Sources: []models.Source{},
	}
	seen := make(map[string]bool, len(resp.Citations))
	for _, c := range resp.Citations {
		if c.URI == "" || seen[c.URI] {
			continue
		}
		seen[c.URI] = true
		title := c.Title
		if title == "" {
			title = c.URI
		}
		report.Sources = append(report.Sources, models.Source{Title: title, URI: c.URI})
	}
	return report, nil
}

// ParseDataTagResponse decodes a label read-out
func ParseDataTagResponse(raw string) (*models.DataTag, error) {
	text := extractJSON(raw)
	if text == "" {
		return nil, ErrNoResponse
	}
	var tag models.DataTag
	if err := json.Unmarshal([]byte(text), &tag); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	for k, v := range tag.AdditionalInfo {
		if v == nil || v == "" {
			delete(tag.AdditionalInfo, k)
		}
	}
	return &tag, nil
}

// ParseBarcodeResponse decodes a UPC lookup answer
func ParseBarcodeResponse(raw string) (*models.BarcodeResult, error) {
	text := extractJSON(raw)
	if text == "" {
		return nil, ErrNoResponse
	}
	var result models.BarcodeResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &result, nil
}

// extractJSON finds the JSON payload in a model answer. Search-grounded
// answers often wrap it in prose, so a fenced block wins when present and
// otherwise the outermost object or array is taken.
func extractJSON(response string) string {
	response = strings.TrimSpace(response)

	if start := strings.Index(response, "```"); start >= 0 {
		body := response[start+3:]
		// skip the language tag on the opening fence
		if nl := strings.IndexByte(body, '\n'); nl >= 0 && !strings.ContainsAny(body[:nl], "{[") {
			body = body[nl+1:]
		} else {
			body = strings.TrimPrefix(body, "json")
		}
		if end := strings.Index(body, "```"); end >= 0 {
			body = body[:end]
		}
		return strings.TrimSpace(body)
	}

	if response == "" || response[0] == '{' || response[0] == '[' {
		return response
	}

	start := strings.IndexAny(response, "{[")
	if start < 0 {
		return response
	}
	closer := "}"
	if response[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(response, closer)
	if end < start {
		return response
	}
	return response[start : end+1]
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
