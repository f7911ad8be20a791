// Package report fills the site report workbook: text fields on the first
// sheet, both photos on the second.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/yomijipsa-art/concrete-ai/constants"
	"github.com/yomijipsa-art/concrete-ai/internal/core/llm"
	"github.com/yomijipsa-art/concrete-ai/internal/layout"
)

// Resolve gives every field of schema a value: what the model returned, or
// the no-data placeholder.
func Resolve(fm llm.FieldMap, schema *layout.Schema) map[constants.FieldKey]string {
	out := make(map[constants.FieldKey]string, len(schema.Fields()))
	for _, f := range schema.Fields() {
		if v, ok := fm.Lookup(f); ok {
			out[f] = v
			continue
		}
		out[f] = constants.NoDataPlaceholder
	}
	return out
}

// Missing lists the fields that resolved to the placeholder, in schema order.
func Missing(fm llm.FieldMap, schema *layout.Schema) []constants.FieldKey {
	var out []constants.FieldKey
	for _, f := range schema.Fields() {
		if _, ok := fm.Lookup(f); !ok {
			out = append(out, f)
		}
	}
	return out
}

// Populate writes each resolved value as a string into its cell on sheet,
// replacing whatever the template held there.
func Populate(f *excelize.File, sheet string, schema *layout.Schema, values map[constants.FieldKey]string) error {
	for _, key := range schema.Fields() {
		addr, ok := schema.TextCell(key)
		if !ok {
			continue
		}
		v, ok := values[key]
		if !ok {
			v = constants.NoDataPlaceholder
		}
		if err := f.SetCellStr(sheet, addr.Cell, v); err != nil {
			return fmt.Errorf("write %s to %s!%s: %w", key, sheet, addr.Cell, err)
		}
	}
	return nil
}

// sheetNames resolves the text and image sheets of the layout against the
// workbook's sheet order.
func sheetNames(f *excelize.File, schema *layout.Schema) (text, image string, err error) {
	list := f.GetSheetList()
	if len(list) < schema.MinSheets() {
		return "", "", fmt.Errorf("template has %d sheet(s), need at least %d", len(list), schema.MinSheets())
	}
	return list[schema.TextSheet()], list[schema.ImageSheet()], nil
}
