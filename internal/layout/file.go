package layout

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yomijipsa-art/concrete-ai/constants"
)

// fileLayout is the on-disk form. Every key is optional; omitted entries keep
// the stock layout.
type fileLayout struct {
	TextSheet  *int              `yaml:"text_sheet"`
	ImageSheet *int              `yaml:"image_sheet"`
	Display    *fileDisplay      `yaml:"display"`
	Fields     map[string]string `yaml:"fields"`
	Photos     map[string]string `yaml:"photos"`
}

type fileDisplay struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Load reads a YAML layout file, validates it against BuildLayoutJSONSchema
// and overlays it on the stock layout. An empty path yields Default().
func Load(path string) (*Schema, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout file: %w", err)
	}
	return Parse(raw)
}

// Parse is Load on an in-memory document.
func Parse(raw []byte) (*Schema, error) {
	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("parse layout yaml: %w", err)
	}
	if generic == nil {
		return Default(), nil
	}
	asJSON, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("layout yaml is not a plain mapping: %w", err)
	}
	if err := ValidateJSONAgainstSchema(BuildLayoutJSONSchema(), asJSON); err != nil {
		return nil, err
	}

	var fl fileLayout
	if err := yaml.Unmarshal(raw, &fl); err != nil {
		return nil, fmt.Errorf("decode layout yaml: %w", err)
	}

	spec := DefaultSpec()
	if fl.TextSheet != nil {
		spec.TextSheet = *fl.TextSheet
	}
	if fl.ImageSheet != nil {
		spec.ImageSheet = *fl.ImageSheet
	}
	if fl.Display != nil {
		if fl.Display.Width > 0 {
			spec.DisplayWidth = fl.Display.Width
		}
		if fl.Display.Height > 0 {
			spec.DisplayHeight = fl.Display.Height
		}
	}
	for label, cell := range fl.Fields {
		spec.TextCells[constants.FieldKey(label)] = cell
	}
	for _, slot := range constants.PhotoSlots {
		if cell, ok := fl.Photos[slot.Label()]; ok {
			spec.ImageCells[slot] = cell
		}
	}
	return New(spec)
}
