package layout

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/yomijipsa-art/concrete-ai/constants"
)

const cellPattern = `^[A-Za-z]{1,3}[1-9][0-9]{0,6}$`

// BuildLayoutJSONSchema returns the JSON Schema a layout file must satisfy.
func BuildLayoutJSONSchema() map[string]any {
	cell := map[string]any{"type": "string", "pattern": cellPattern}
	fieldProps := map[string]any{}
	for _, f := range constants.AsStringSlice() {
		fieldProps[f] = cell
	}
	photoProps := map[string]any{}
	for _, slot := range constants.PhotoSlots {
		photoProps[slot.Label()] = cell
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"text_sheet":  map[string]any{"type": "integer", "minimum": 0},
			"image_sheet": map[string]any{"type": "integer", "minimum": 0},
			"display": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"width":  map[string]any{"type": "integer", "minimum": 1},
					"height": map[string]any{"type": "integer", "minimum": 1},
				},
			},
			"fields": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties":           fieldProps,
			},
			"photos": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties":           photoProps,
			},
		},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("layout does not match schema: %w", err)
	}
	return nil
}
