package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/yomijipsa-art/concrete-ai/constants"
	"github.com/yomijipsa-art/concrete-ai/internal/layout"
)

// Sheet names used by NewBlankTemplate.
const (
	BlankTextSheet  = "현장보고서"
	BlankImageSheet = "사진대지"
)

// NewBlankTemplate builds a workbook that satisfies schema: a text sheet with
// each field label to the left of its value cell and an image sheet with each
// slot label above its anchor cell.
func NewBlankTemplate(schema *layout.Schema) (*excelize.File, error) {
	f := excelize.NewFile()
	names := make([]string, schema.MinSheets())
	for i := range names {
		names[i] = fmt.Sprintf("Sheet%d", i+1)
	}
	names[schema.TextSheet()] = BlankTextSheet
	names[schema.ImageSheet()] = BlankImageSheet

	if err := f.SetSheetName("Sheet1", names[0]); err != nil {
		return nil, err
	}
	for _, n := range names[1:] {
		if _, err := f.NewSheet(n); err != nil {
			return nil, err
		}
	}

	for _, key := range schema.Fields() {
		addr, _ := schema.TextCell(key)
		col, row, err := excelize.CellNameToCoordinates(addr.Cell)
		if err != nil {
			return nil, err
		}
		if col > 1 {
			label, _ := excelize.CoordinatesToCellName(col-1, row)
			if err := f.SetCellStr(BlankTextSheet, label, string(key)); err != nil {
				return nil, err
			}
		}
	}
	_ = f.SetColWidth(BlankTextSheet, "C", "C", 14)
	_ = f.SetColWidth(BlankTextSheet, "D", "D", 32)

	for _, slot := range constants.PhotoSlots {
		addr, _ := schema.ImageCell(slot)
		col, row, err := excelize.CellNameToCoordinates(addr.Cell)
		if err != nil {
			return nil, err
		}
		if row > 1 {
			label, _ := excelize.CoordinatesToCellName(col, row-1)
			if err := f.SetCellStr(BlankImageSheet, label, slot.Label()); err != nil {
				return nil, err
			}
		}
	}
	f.SetActiveSheet(schema.TextSheet())
	return f, nil
}
