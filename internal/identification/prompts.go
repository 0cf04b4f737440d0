package identification

import (
	"fmt"
	"strings"
)

const collectionsGuide = `Department 56 collections include:
- The Original Snow Village (glossy finish, ceramic, brighter colors)
- Heritage Village Collection (matte finish porcelain):
  * Dickens' Village (Victorian England style)
  * New England Village (Colonial/coastal style)
  * Alpine Village (Bavarian/Swiss style)
  * Christmas in the City (urban, cityscapes)
  * North Pole Series (fantasy, Santa oriented)
  * Little Town of Bethlehem
- Specialty series: Snow Village Halloween, Disney, Grinch, Harry Potter`

func identifyPrompt() string {
	return `You are an expert appraiser of Department 56 village collectibles with decades of experience at collector shows and secondary market exchanges.

Analyze this image and identify ALL collectible village pieces visible in it.

` + collectionsGuide + `

INSTRUCTIONS:
1. Use the name printed on the box or the bottom stamp when it is visible.
2. Decide carefully whether each piece is genuine Department 56. Competing brands such as Lemax, Dickens Collectables and Hawthorne Village copy the style; mark those as not genuine.
3. Look for artist signatures on the base and for limited edition numbering.
4. Only give introduction and retirement years you are confident about.
5. Estimate condition from what is visible and give a realistic USD value range.

If there are no collectible pieces in the image, return an empty items array.`
}

func alternativesPrompt(rejectedName, userContext string) string {
	var b strings.Builder
	b.WriteString(`You are an expert appraiser of Department 56 village collectibles.

The user has reviewed an automatic identification of the piece in this image and says it is wrong.
`)
	if rejectedName != "" {
		fmt.Fprintf(&b, "The rejected identification was %q. Do not suggest it again.\n", rejectedName)
	}
	b.WriteString(`
Search collector references, retailer listings and auction results to find up to 3 other pieces that match the image, ranked from most to least likely. For each one explain which visible features match.

` + collectionsGuide)
	if userContext != "" {
		b.WriteString("\n\nAdditional context from the user: ")
		b.WriteString(userContext)
	}
	return b.String()
}

func marketPrompt(name, series string) string {
	piece := name
	if series != "" {
		piece = fmt.Sprintf("%s (%s)", name, series)
	}
	return fmt.Sprintf(`Search for current secondary market information about the Department 56 piece %s.

Summarise in a short paragraph: recent sold prices, current asking prices, how often it appears for sale, and anything that changes its value such as original box, sleeve, or missing accessories. Mention the date range of the prices you found.`, piece)
}

func dataTagPrompt() string {
	return `Analyze this image of a product data tag or label and extract all available information.

Extract the following if visible:
- Manufacturer name
- Brand name
- Model number
- Serial number
- Production/manufacturing date
- Voltage, wattage, or other technical specifications
- Country of origin

Use null for any field you cannot determine from the image.`
}

func barcodePrompt(code string) string {
	return fmt.Sprintf(`Look up information for barcode/UPC: %s

If you can identify this product, provide the product name, brand or manufacturer, a brief description, an estimated current market value in USD with the date of the estimate (MM/DD/YY), and the product category.

If you cannot identify the barcode, set found to false and leave every other field null.`, code)
}
