package metrics

import (
	"fmt"
	"regexp"
	"strings"
)

// Expected is the labelled identification an item is scored against
type Expected struct {
	Name    string
	Series  string
	Rarity  string
	Genuine bool
}

// Actual is what the model returned for the item
type Actual struct {
	Name    string
	Series  string
	Rarity  string
	Genuine bool
}

// ItemComparison represents field-level comparison results
type ItemComparison struct {
	NameMatch    FieldMatch
	SeriesMatch  FieldMatch
	RarityMatch  bool
	GenuineMatch bool

	OverallScore float64
}

// FieldMatch represents the comparison result for a single field
type FieldMatch struct {
	Expected string
	Actual   string
	Score    float64 // 0.0 to 1.0
	Method   string  // "exact", "substring", "fuzzy_high", "fuzzy_medium", "no_match", or a *_missing variant
	Notes    string
}

var fieldWeights = struct {
	name, series, rarity, genuine float64
}{name: 0.5, series: 0.25, rarity: 0.15, genuine: 0.1}

// CompareItem scores an identification against its label
func CompareItem(expected Expected, actual Actual) *ItemComparison {
	c := &ItemComparison{
		NameMatch:    CompareField(expected.Name, actual.Name),
		SeriesMatch:  CompareField(expected.Series, actual.Series),
		RarityMatch:  expected.Rarity == "" || expected.Rarity == actual.Rarity,
		GenuineMatch: expected.Genuine == actual.Genuine,
	}

	c.OverallScore = c.NameMatch.Score*fieldWeights.name +
		c.SeriesMatch.Score*fieldWeights.series +
		boolScore(c.RarityMatch)*fieldWeights.rarity +
		boolScore(c.GenuineMatch)*fieldWeights.genuine

	return c
}

func boolScore(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// CompareField performs detailed field comparison with fuzzy matching
func CompareField(expected, actual string) FieldMatch {
	match := FieldMatch{
		Expected: expected,
		Actual:   actual,
	}

	expNorm := normalizeForComparison(expected)
	actNorm := normalizeForComparison(actual)

	if expNorm == "" && actNorm == "" {
		match.Score = 0.5
		match.Method = "both_missing"
		match.Notes = "Both fields are empty"
		return match
	}

	if expNorm == "" {
		match.Method = "expected_missing"
		match.Notes = "Expected value is empty (no ground truth)"
		return match
	}

	if actNorm == "" {
		match.Method = "actual_missing"
		match.Notes = "Model did not return this field"
		return match
	}

	if expNorm == actNorm {
		match.Score = 1.0
		match.Method = "exact"
		match.Notes = "Exact match"
		return match
	}

	if strings.Contains(actNorm, expNorm) || strings.Contains(expNorm, actNorm) {
		match.Score = 0.8
		match.Method = "substring"
		match.Notes = "Partial match (substring found)"
		return match
	}

	similarity := calculateSimilarity(expNorm, actNorm)
	match.Score = similarity
	switch {
	case similarity > 0.7:
		match.Method = "fuzzy_high"
		match.Notes = fmt.Sprintf("High similarity (%.2f)", similarity)
	case similarity > 0.4:
		match.Method = "fuzzy_medium"
		match.Notes = fmt.Sprintf("Medium similarity (%.2f)", similarity)
	default:
		match.Method = "no_match"
		match.Notes = fmt.Sprintf("Low similarity (%.2f)", similarity)
	}

	return match
}

var punctuation = regexp.MustCompile(`[^\w\s]`)

// normalizeForComparison lowercases and strips punctuation. Apostrophes
// and ampersands are common in piece names and vary between sources.
func normalizeForComparison(text string) string {
	text = strings.ToLower(text)
	text = strings.ReplaceAll(text, "&", " and ")
	text = punctuation.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// calculateSimilarity calculates similarity ratio (0.0 to 1.0) using Levenshtein distance
func calculateSimilarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	if len(s1) == 0 || len(s2) == 0 {
		return 0.0
	}

	distance := levenshteinDistance(s1, s2)
	maxLen := max(len(s1), len(s2))

	return 1.0 - (float64(distance) / float64(maxLen))
}

// levenshteinDistance calculates the Levenshtein distance between two strings
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}
