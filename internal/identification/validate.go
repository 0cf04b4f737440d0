package identification

import (
	"fmt"

	"github.com/nesventory/identifier/internal/providers"
	"github.com/xeipuuv/gojsonschema"
)

// ValidateAgainst checks a JSON document against a schema and returns one
// message per violation. Models occasionally drift from the requested
// schema, so callers treat violations as warnings.
func ValidateAgainst(schema *providers.Schema, document string) ([]string, error) {
	schemaLoader := gojsonschema.NewGoLoader(schema.JSONSchema())
	documentLoader := gojsonschema.NewStringLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	problems := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		problems[i] = desc.String()
	}
	return problems, nil
}
