package dataset

// LabelledItem is one photograph with its known identification
type LabelledItem struct {
	ID             string `json:"id" parquet:"id"`
	ImagePath      string `json:"image_path" parquet:"image_path"`
	Name           string `json:"name" parquet:"name"`
	Series         string `json:"series" parquet:"series"`
	YearIntroduced *int64 `json:"year_introduced,omitempty" parquet:"year_introduced,optional"`
	YearRetired    *int64 `json:"year_retired,omitempty" parquet:"year_retired,optional"`
	Rarity         string `json:"rarity,omitempty" parquet:"rarity,optional"`
	IsGenuine      *bool  `json:"is_genuine,omitempty" parquet:"is_genuine,optional"`
}

// Genuine reports whether the piece is real Department 56. Unlabelled
// items are assumed genuine.
func (i *LabelledItem) Genuine() bool {
	return i.IsGenuine == nil || *i.IsGenuine
}

// Years converts the labelled years to the candidate representation
func (i *LabelledItem) Years() (introduced, retired *int) {
	if i.YearIntroduced != nil {
		y := int(*i.YearIntroduced)
		introduced = &y
	}
	if i.YearRetired != nil {
		y := int(*i.YearRetired)
		retired = &y
	}
	return introduced, retired
}
