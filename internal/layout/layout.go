// Package layout describes where report values and photos land in the
// workbook template.
package layout

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yomijipsa-art/concrete-ai/constants"
)

// CellAddress is a zero-based sheet index plus an A1-style cell reference.
type CellAddress struct {
	Sheet int
	Cell  string
}

func (a CellAddress) String() string {
	return fmt.Sprintf("sheet[%d]!%s", a.Sheet, a.Cell)
}

// Schema is the immutable field→cell and slot→cell mapping of a template.
type Schema struct {
	textSheet  int
	imageSheet int
	fields     []constants.FieldKey
	textCells  map[constants.FieldKey]string
	imageCells map[constants.PhotoSlot]string
	width      int
	height     int
}

// Spec is the mutable input to New.
type Spec struct {
	TextSheet     int
	ImageSheet    int
	TextCells     map[constants.FieldKey]string
	ImageCells    map[constants.PhotoSlot]string
	DisplayWidth  int
	DisplayHeight int
}

// DefaultSpec is the layout of the stock site report template.
func DefaultSpec() Spec {
	return Spec{
		TextSheet:  0,
		ImageSheet: 1,
		TextCells: map[constants.FieldKey]string{
			constants.ProjectName:  "D3",
			constants.PourLocation: "D6",
			constants.PourSpec:     "D4",
			constants.Slump:        "D11",
			constants.AirContent:   "D16",
			constants.Chloride:     "D29",
			constants.Temperature:  "D34",
			constants.UnitWeight:   "D23",
			constants.PourDate:     "D5",
			constants.Company:      "L6",
		},
		ImageCells: map[constants.PhotoSlot]string{
			constants.PhotoSlot1: "B3",
			constants.PhotoSlot2: "B7",
		},
		DisplayWidth:  constants.DisplayWidth,
		DisplayHeight: constants.DisplayHeight,
	}
}

// Default returns the stock layout.
func Default() *Schema {
	s, err := New(DefaultSpec())
	if err != nil {
		panic(err)
	}
	return s
}

// New checks that every field key and both photo slots have a well-formed
// cell, that nothing else is mapped, and freezes the result.
func New(spec Spec) (*Schema, error) {
	if spec.TextSheet < 0 || spec.ImageSheet < 0 {
		return nil, fmt.Errorf("sheet index must not be negative")
	}
	if spec.TextSheet == spec.ImageSheet {
		return nil, fmt.Errorf("text sheet and image sheet must differ (both %d)", spec.TextSheet)
	}
	if spec.DisplayWidth <= 0 || spec.DisplayHeight <= 0 {
		return nil, fmt.Errorf("display size must be positive, got %dx%d", spec.DisplayWidth, spec.DisplayHeight)
	}

	for key := range spec.TextCells {
		if _, ok := constants.LookupField(string(key)); !ok {
			return nil, fmt.Errorf("unknown field %q", key)
		}
	}
	for slot := range spec.ImageCells {
		if !slot.Valid() {
			return nil, fmt.Errorf("unknown photo slot %d", slot)
		}
	}

	s := &Schema{
		textSheet:  spec.TextSheet,
		imageSheet: spec.ImageSheet,
		fields:     constants.AllFields(),
		textCells:  make(map[constants.FieldKey]string, len(spec.TextCells)),
		imageCells: make(map[constants.PhotoSlot]string, len(spec.ImageCells)),
		width:      spec.DisplayWidth,
		height:     spec.DisplayHeight,
	}
	for _, f := range s.fields {
		cell, err := normalizeCell(spec.TextCells[f])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f, err)
		}
		s.textCells[f] = cell
	}
	for _, slot := range constants.PhotoSlots {
		cell, err := normalizeCell(spec.ImageCells[slot])
		if err != nil {
			return nil, fmt.Errorf("photo slot %d: %w", slot, err)
		}
		s.imageCells[slot] = cell
	}
	return s, nil
}

func normalizeCell(cell string) (string, error) {
	cell = strings.ToUpper(strings.TrimSpace(cell))
	if cell == "" {
		return "", fmt.Errorf("no cell assigned")
	}
	if _, _, err := excelize.CellNameToCoordinates(cell); err != nil {
		return "", fmt.Errorf("bad cell %q: %w", cell, err)
	}
	return cell, nil
}

// Fields returns the field keys in write order.
func (s *Schema) Fields() []constants.FieldKey {
	out := make([]constants.FieldKey, len(s.fields))
	copy(out, s.fields)
	return out
}

func (s *Schema) TextCell(f constants.FieldKey) (CellAddress, bool) {
	c, ok := s.textCells[f]
	return CellAddress{Sheet: s.textSheet, Cell: c}, ok
}

func (s *Schema) ImageCell(slot constants.PhotoSlot) (CellAddress, bool) {
	c, ok := s.imageCells[slot]
	return CellAddress{Sheet: s.imageSheet, Cell: c}, ok
}

func (s *Schema) TextSheet() int     { return s.textSheet }
func (s *Schema) ImageSheet() int    { return s.imageSheet }
func (s *Schema) DisplayWidth() int  { return s.width }
func (s *Schema) DisplayHeight() int { return s.height }

// MinSheets is the number of sheets a template needs for this layout.
func (s *Schema) MinSheets() int {
	if s.textSheet > s.imageSheet {
		return s.textSheet + 1
	}
	return s.imageSheet + 1
}
