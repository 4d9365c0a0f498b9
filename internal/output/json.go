package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	apperrors "github.com/ginjaninja78/VAR-sheet-mapper/internal/errors"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/types"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/validation"
)

// jsonDocument is the wire shape of a Document.
type jsonDocument struct {
	Source        string             `json:"source"`
	Dialect       string             `json:"dialect"`
	DialectSource string             `json:"dialectSource,omitempty"`
	GeneratedAt   string             `json:"generatedAt"`
	Fields        orderedFields      `json:"fields"`
	Validation    *validation.Result `json:"validation,omitempty"`
}

// FieldSchema returns the JSON schema every field map must satisfy: an
// object holding exactly the canonical keys, each bound to a string.
func FieldSchema() map[string]interface{} {
	properties := make(map[string]interface{}, len(types.CanonicalKeys))
	required := make([]interface{}, 0, len(types.CanonicalKeys))
	for _, key := range types.CanonicalKeys {
		properties[key] = map[string]interface{}{"type": "string"}
		required = append(required, key)
	}
	return map[string]interface{}{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"title":                "STEAM field map",
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

var compiledFieldSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(FieldSchema()))
})

// ValidateFields checks fields against FieldSchema.
func ValidateFields(fields types.FieldMap) error {
	if fields == nil {
		return apperrors.NewInvalidArgumentError("field map is nil")
	}

	schema, err := compiledFieldSchema()
	if err != nil {
		return fmt.Errorf("failed to compile field schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(map[string]string(fields)))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return apperrors.NewSchemaViolationError(strings.Join(errs, "; "))
	}

	return nil
}

// GenerateJSON renders doc as indented JSON after checking the field map
// against the schema.
func GenerateJSON(doc *Document) ([]byte, error) {
	if err := ValidateFields(doc.Fields); err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(jsonDocument{
		Source:        doc.Source,
		Dialect:       doc.Dialect.String(),
		DialectSource: doc.DialectSource,
		GeneratedAt:   doc.generatedAt().Format("2006-01-02T15:04:05Z07:00"),
		Fields:        orderedFields(doc.Fields),
		Validation:    doc.Validation,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// GenerateJSONSchema renders FieldSchema for publishing.
func GenerateJSONSchema() ([]byte, error) {
	data, err := json.MarshalIndent(FieldSchema(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON schema: %w", err)
	}
	return append(data, '\n'), nil
}
