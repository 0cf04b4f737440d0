package review

import "github.com/nesventory/identifier/internal/models"

const (
	RaritySigned          = "Artist Signed (High Value)"
	RarityLimited         = "Limited Edition"
	RarityActive          = "Common (Active)"
	RarityVintageUnknown  = "Vintage (Date Unknown)"
	RarityStandardRetired = "Standard (Retired)"
	RarityOneYearRun      = "Very High (1 Year Run)"
	RarityShortRun        = "High (Short Run)"
	RarityVeryVintage     = "Very Vintage"
	RarityVintage         = "Vintage"
	RarityLongRun         = "Common (Long Run)"
)

// InferRarity labels an item from its signature, edition and production
// run. The first matching rule wins.
func InferRarity(item models.CandidateItem) string {
	if item.IsSigned {
		return RaritySigned
	}
	if item.IsLimitedEdition {
		return RarityLimited
	}
	if item.YearRetired == nil {
		return RarityActive
	}

	retired := *item.YearRetired
	if item.YearIntroduced == nil {
		if retired < 2000 {
			return RarityVintageUnknown
		}
		return RarityStandardRetired
	}

	span := retired - *item.YearIntroduced
	switch {
	case span <= 1:
		return RarityOneYearRun
	case span <= 2:
		return RarityShortRun
	case retired < 1990:
		return RarityVeryVintage
	case retired < 2005:
		return RarityVintage
	case span > 15:
		return RarityLongRun
	default:
		return RarityStandardRetired
	}
}
