package review

import (
	"fmt"
	"strings"
	"time"

	"github.com/nesventory/identifier/internal/models"
)

// FoundingYear is the first year Department 56 pieces were produced
const FoundingYear = 1976

// YearBounds is the inclusive range of plausible production years
type YearBounds struct {
	Min int
	Max int
}

// DefaultBounds runs from the founding year to one year past now, which
// allows for announced pieces.
func DefaultBounds(now time.Time) YearBounds {
	return YearBounds{Min: FoundingYear, Max: now.Year() + 1}
}

func (b YearBounds) contains(year int) bool {
	return year >= b.Min && year <= b.Max
}

// YearWarning returns an empty string when the years look plausible.
// Problems never block review.
func YearWarning(item models.CandidateItem, bounds YearBounds) string {
	var warnings []string

	if y := item.YearIntroduced; y != nil && !bounds.contains(*y) {
		warnings = append(warnings, fmt.Sprintf("Year Introduced %d is outside the valid range (%d-%d)", *y, bounds.Min, bounds.Max))
	}
	if y := item.YearRetired; y != nil && !bounds.contains(*y) {
		warnings = append(warnings, fmt.Sprintf("Year Retired %d is outside the valid range (%d-%d)", *y, bounds.Min, bounds.Max))
	}
	if item.YearIntroduced != nil && item.YearRetired != nil && *item.YearIntroduced > *item.YearRetired {
		warnings = append(warnings, fmt.Sprintf("Introduced year %d cannot be after Retired year %d", *item.YearIntroduced, *item.YearRetired))
	}

	return strings.Join(warnings, "; ")
}
