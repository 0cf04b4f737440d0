package identification

import "github.com/nesventory/identifier/internal/providers"

var itemFieldOrder = []string{
	"name",
	"series",
	"itemNumber",
	"modelNumber",
	"yearIntroduced",
	"yearRetired",
	"retiredStatus",
	"estimatedCondition",
	"estimatedValueRange",
	"description",
	"isGenuine",
	"confidenceScore",
	"isLimitedEdition",
	"isSigned",
}

// ItemSchema describes one detected piece
func ItemSchema() *providers.Schema {
	return &providers.Schema{
		Type:  providers.TypeObject,
		Order: itemFieldOrder,
		Properties: map[string]*providers.Schema{
			"name": {
				Type:        providers.TypeString,
				Description: "Official Department 56 name of the piece, exactly as printed on the box or bottom stamp when visible. Use a short descriptive name when the piece is not Department 56.",
			},
			"series": {
				Type:        providers.TypeString,
				Description: "Village or collection, e.g. 'The Original Snow Village', 'Dickens' Village', 'New England Village', 'Alpine Village', 'Christmas in the City', 'North Pole Series', 'Little Town of Bethlehem', 'Snow Village Halloween'. Glossy ceramic pieces are Snow Village; matte porcelain pieces are Heritage Village.",
			},
			"itemNumber": {
				Type:        providers.TypeString,
				Nullable:    true,
				Description: "Department 56 item number or SKU if visible on the box, base or label, often formatted like '5544-0' or '56.58302'. Null when not visible.",
			},
			"modelNumber": {
				Type:        providers.TypeString,
				Nullable:    true,
				Description: "Model number when it differs from the item number. Null otherwise.",
			},
			"yearIntroduced": {
				Type:        providers.TypeInteger,
				Nullable:    true,
				Description: "Four digit year the piece was introduced. Department 56 was founded in 1976, so earlier years are almost certainly wrong. Null when unknown.",
			},
			"yearRetired": {
				Type:        providers.TypeInteger,
				Nullable:    true,
				Description: "Four digit year the piece was retired. Null when the piece is still in production or the year is unknown.",
			},
			"retiredStatus": {
				Type:        providers.TypeString,
				Nullable:    true,
				Enum:        []string{"Active", "Retired", "Unknown"},
				Description: "'Retired' if the piece is known to be retired, 'Active' if still in production, otherwise 'Unknown'.",
			},
			"estimatedCondition": {
				Type:        providers.TypeString,
				Description: "Visible condition: Mint, Excellent, Good, Fair or Poor. Mention chips, cracks, missing pieces or missing box.",
			},
			"estimatedValueRange": {
				Type:        providers.TypeString,
				Description: "Approximate secondary market value in USD as a range, e.g. '$45 - $60'.",
			},
			"description": {
				Type:        providers.TypeString,
				Description: "Brief physical description: colours, architectural style, accessories, lights, and anything that supports the identification.",
			},
			"isGenuine": {
				Type:        providers.TypeBoolean,
				Description: "True only if the piece is a Department 56 product. Lemax, Dickens Collectables, Hawthorne Village, St. Nicholas Square and other look-alike village brands are NOT Department 56 and must be false.",
			},
			"confidenceScore": {
				Type:        providers.TypeNumber,
				Description: "Confidence in the identification from 0 to 100.",
			},
			"isLimitedEdition": {
				Type:        providers.TypeBoolean,
				Description: "True if the piece is a numbered limited edition, event piece or otherwise produced in a limited quantity.",
			},
			"isSigned": {
				Type:        providers.TypeBoolean,
				Description: "True if an artist signature (for example from a designer signing event) is visible on the piece or its base.",
			},
		},
		Required: []string{"name", "series", "description", "isGenuine", "estimatedCondition"},
	}
}

// IdentifySchema is the envelope for a multi-item identification
func IdentifySchema() *providers.Schema {
	return &providers.Schema{
		Type: providers.TypeObject,
		Properties: map[string]*providers.Schema{
			"items": {
				Type:        providers.TypeArray,
				Description: "Every collectible piece visible in the image. Empty when nothing is found.",
				Items:       ItemSchema(),
			},
		},
		Required: []string{"items"},
	}
}

// AlternativesSchema is the envelope for re-queried candidates
func AlternativesSchema() *providers.Schema {
	return &providers.Schema{
		Type: providers.TypeObject,
		Properties: map[string]*providers.Schema{
			"alternatives": {
				Type:        providers.TypeArray,
				Description: "Up to three alternative identifications ranked from most to least likely.",
				Items: &providers.Schema{
					Type:  providers.TypeObject,
					Order: []string{"name", "series", "reason", "confidenceScore"},
					Properties: map[string]*providers.Schema{
						"name":            {Type: providers.TypeString, Description: "Official name of the alternative piece."},
						"series":          {Type: providers.TypeString, Description: "Village or collection of the alternative piece."},
						"reason":          {Type: providers.TypeString, Description: "Why this piece matches the image, citing visible features."},
						"confidenceScore": {Type: providers.TypeNumber, Nullable: true, Description: "Confidence from 0 to 100."},
					},
					Required: []string{"name", "series", "reason"},
				},
			},
		},
		Required: []string{"alternatives"},
	}
}

// DataTagSchema describes a manufacturer label read-out
func DataTagSchema() *providers.Schema {
	nullableString := func(desc string) *providers.Schema {
		return &providers.Schema{Type: providers.TypeString, Nullable: true, Description: desc}
	}
	return &providers.Schema{
		Type: providers.TypeObject,
		Properties: map[string]*providers.Schema{
			"manufacturer":   nullableString("Manufacturer name"),
			"brand":          nullableString("Brand name"),
			"modelNumber":    nullableString("Model number"),
			"serialNumber":   nullableString("Serial number"),
			"productionDate": nullableString("Production or manufacturing date"),
			"estimatedValue": {Type: providers.TypeNumber, Nullable: true, Description: "Estimated value in USD"},
			"additionalInfo": {
				Type:        providers.TypeObject,
				Nullable:    true,
				Description: "Technical details such as voltage, wattage and country of origin",
				Properties: map[string]*providers.Schema{
					"voltage": nullableString("Voltage"),
					"wattage": nullableString("Wattage"),
					"country": nullableString("Country of origin"),
				},
			},
		},
	}
}

// BarcodeSchema describes a UPC lookup answer
func BarcodeSchema() *providers.Schema {
	nullableString := func(desc string) *providers.Schema {
		return &providers.Schema{Type: providers.TypeString, Nullable: true, Description: desc}
	}
	return &providers.Schema{
		Type: providers.TypeObject,
		Properties: map[string]*providers.Schema{
			"found":          {Type: providers.TypeBoolean, Description: "Whether the product could be identified"},
			"name":           nullableString("Product name"),
			"description":    nullableString("Product description"),
			"brand":          nullableString("Brand name"),
			"modelNumber":    nullableString("Model number"),
			"estimatedValue": {Type: providers.TypeNumber, Nullable: true, Description: "Estimated current value in USD"},
			"estimationDate": nullableString("Date of the estimate, MM/DD/YY"),
			"category":       nullableString("Product category"),
		},
		Required: []string{"found"},
	}
}
