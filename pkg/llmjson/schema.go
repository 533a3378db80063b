package llmjson

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaFor renders the JSON Schema of T for embedding in a prompt.
// Field requirements come from `jsonschema:"required"` tags.
func SchemaFor[T any]() (string, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)
	b, err := json.Marshal(schema)
	if err != nil {
		return "", fmt.Errorf("render schema: %w", err)
	}
	return string(b), nil
}

// MustSchemaFor is SchemaFor for package-level prompt templates.
func MustSchemaFor[T any]() string {
	s, err := SchemaFor[T]()
	if err != nil {
		panic(err)
	}
	return s
}
