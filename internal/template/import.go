package template

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// importSchema constrains imported template documents. Validation runs
// before unmarshalling so error messages name the offending field instead
// of surfacing a type mismatch.
const importSchema = `{
	"type": "object",
	"required": ["id", "name", "questions"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"name": {"type": "string", "minLength": 1},
		"course_code": {"type": "string"},
		"description": {"type": "string"},
		"questions": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["text"],
				"properties": {
					"text": {"type": "string", "minLength": 1},
					"target_clo": {"type": "integer", "minimum": 1},
					"target_level": {
						"type": "string",
						"enum": ["remember", "understand", "apply", "analyze", "evaluate", "create"]
					}
				}
			}
		}
	}
}`

// ValidateImport checks a JSON template document against the import schema
// and returns the decoded template on success.
func ValidateImport(data []byte) (*Template, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(importSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("validate template: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("invalid template: %s", strings.Join(msgs, "; "))
	}

	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode template: %w", err)
	}
	return &t, nil
}
