package constants

import (
	"strings"
)

// FieldKey is one of the labels the vision model is asked to read off the
// pour ticket photo.
type FieldKey string

const (
	ProjectName  FieldKey = "공사명"
	PourLocation FieldKey = "타설위치"
	PourSpec     FieldKey = "타설규격"
	Slump        FieldKey = "슬럼프"
	AirContent   FieldKey = "공기량"
	Chloride     FieldKey = "염화물"
	Temperature  FieldKey = "온도"
	UnitWeight   FieldKey = "단위수량"
	PourDate     FieldKey = "타설일자"
	Company      FieldKey = "업체명"
)

// NoDataPlaceholder is written to every text cell the model gave no value for.
const NoDataPlaceholder = "데이터 없음"

var allFields = []FieldKey{
	ProjectName,
	PourLocation,
	PourSpec,
	Slump,
	AirContent,
	Chloride,
	Temperature,
	UnitWeight,
	PourDate,
	Company,
}

// AllFields returns the declared field keys in prompt order.
func AllFields() []FieldKey {
	out := make([]FieldKey, len(allFields))
	copy(out, allFields)
	return out
}

func AsStringSlice() []string {
	result := make([]string, len(allFields))
	for i, f := range allFields {
		result[i] = string(f)
	}
	return result
}

// LookupField reports whether label is exactly one of the declared keys
// once surrounding whitespace is removed.
func LookupField(label string) (FieldKey, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", false
	}
	for _, f := range allFields {
		if label == string(f) {
			return f, true
		}
	}
	return "", false
}

// PhotoSlot is the upload position of a photo: 1 or 2.
type PhotoSlot int

const (
	PhotoSlot1 PhotoSlot = 1
	PhotoSlot2 PhotoSlot = 2
)

// PhotoSlots lists both slots in embed order.
var PhotoSlots = []PhotoSlot{PhotoSlot1, PhotoSlot2}

// RequiredPhotos is the number of photos a report needs.
const RequiredPhotos = 2

// AnalyzedSlot is the only photo sent to the vision model.
const AnalyzedSlot = PhotoSlot2

// Valid reports whether s is one of the declared slots.
func (s PhotoSlot) Valid() bool { return s == PhotoSlot1 || s == PhotoSlot2 }

// Label is the slot name used in the template layout ("사진1", "사진2").
func (s PhotoSlot) Label() string {
	switch s {
	case PhotoSlot1:
		return "사진1"
	case PhotoSlot2:
		return "사진2"
	default:
		return ""
	}
}

// Display geometry of embedded photos in pixels (about 10.74cm x 16.25cm).
// Applied as drawing extent only; pixel data is never resampled.
const (
	DisplayWidth  = 406
	DisplayHeight = 614
)

// Report filenames and MIME types.
const (
	ReportFilePrefix   = "현장보고서"
	ReportFallbackName = "현장보고서_완성본.xlsx"
	JPEGMimeType       = "image/jpeg"
	XLSXMimeType       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)
