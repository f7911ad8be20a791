package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/yomijipsa-art/concrete-ai/internal/core/imaging"
)

// EmbedImage anchors img at cell with a one-cell anchor whose extent is the
// image's display size. Pixel data is stored as is; only the drawing extent
// is scaled.
func EmbedImage(f *excelize.File, sheet, cell string, img *imaging.NormalizedImage, altText string) error {
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("image %s has no pixels", img.Path)
	}
	// excelize truncates width*scale to int; the half pixel keeps float
	// error from landing one short.
	opts := &excelize.GraphicOptions{
		AltText:     altText,
		Positioning: "oneCell",
		ScaleX:      (float64(img.DisplayWidth) + 0.5) / float64(img.Width),
		ScaleY:      (float64(img.DisplayHeight) + 0.5) / float64(img.Height),
	}
	if err := f.AddPicture(sheet, cell, img.Path, opts); err != nil {
		return fmt.Errorf("add picture at %s!%s: %w", sheet, cell, err)
	}
	return nil
}
