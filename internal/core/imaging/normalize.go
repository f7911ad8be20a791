// Package imaging turns uploaded photos into opaque RGB JPEG files sized for
// embedding.
package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/yomijipsa-art/concrete-ai/constants"
)

// NormalizedImage is a JPEG ready to embed. Pixels keep their native size;
// DisplayWidth/DisplayHeight are only drawing extents.
type NormalizedImage struct {
	Path          string
	Size          int
	Width         int
	Height        int
	DisplayWidth  int
	DisplayHeight int
	SourceFormat  string
}

// ErrTooManyPixels means a photo declares more pixels than the normalizer
// will decode.
var ErrTooManyPixels = errors.New("photo dimensions too large")

type Normalizer struct {
	maxPixels     int
	runner        Runner
	heicConverter string
	displayWidth  int
	displayHeight int
	log           *slog.Logger
}

type Option func(*Normalizer)

func WithRunner(r Runner) Option { return func(n *Normalizer) { n.runner = r } }

// WithHEICConverter selects heif-convert, magick or sips; "" auto-detects.
func WithHEICConverter(name string) Option { return func(n *Normalizer) { n.heicConverter = name } }

func WithDisplaySize(w, h int) Option {
	return func(n *Normalizer) {
		if w > 0 && h > 0 {
			n.displayWidth, n.displayHeight = w, h
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.log = l
		}
	}
}

func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		maxPixels:     constants.MaxPhotoPixels,
		runner:        ExecRunner{},
		displayWidth:  constants.DisplayWidth,
		displayHeight: constants.DisplayHeight,
		log:           slog.Default(),
	}
	for _, o := range opts {
		o(n)
	}
	if n.heicConverter == "" {
		n.heicConverter = DetectHEICConverter()
	}
	return n
}

// Normalize decodes one photo, flattens it to opaque RGB and writes it as
// "photo<slot>.jpg" into scratch.
func (n *Normalizer) Normalize(ctx context.Context, scratch *Scratch, slot constants.PhotoSlot, name string, data []byte) (*NormalizedImage, error) {
	start := time.Now()
	if len(data) == 0 {
		return nil, fmt.Errorf("photo %d (%s) is empty", slot, name)
	}

	if isHEIC(data) || (constants.IsHEICExt(filepath.Ext(name)) && !decodable(data)) {
		converted, err := n.fromHEIC(ctx, scratch, slot, data)
		if err != nil {
			return nil, err
		}
		data = converted
	}

	if err := checkDimensions(data, n.maxPixels); err != nil {
		return nil, fmt.Errorf("photo %d (%s): %w", slot, name, err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode photo %d (%s): %w", slot, name, err)
	}
	rgb := toOpaqueRGB(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rgb, nil); err != nil {
		return nil, fmt.Errorf("encode photo %d as jpeg: %w", slot, err)
	}
	path, err := scratch.WriteFile(fmt.Sprintf("photo%d.jpg", slot), buf.Bytes())
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	out := &NormalizedImage{
		Path:          path,
		Size:          buf.Len(),
		Width:         b.Dx(),
		Height:        b.Dy(),
		DisplayWidth:  n.displayWidth,
		DisplayHeight: n.displayHeight,
		SourceFormat:  format,
	}
	n.log.Info("imaging.normalize.ok",
		"slot", int(slot),
		"file", name,
		"source_format", format,
		"color_model", fmt.Sprintf("%T", img),
		"width", out.Width,
		"height", out.Height,
		"jpeg_bytes", out.Size,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func (n *Normalizer) fromHEIC(ctx context.Context, scratch *Scratch, slot constants.PhotoSlot, data []byte) ([]byte, error) {
	in, err := scratch.WriteFile(fmt.Sprintf("photo%d.heic", slot), data)
	if err != nil {
		return nil, err
	}
	out, err := convertHEICtoPNG(ctx, n.runner, n.log, n.heicConverter, in, scratch.Dir())
	if err != nil {
		return nil, fmt.Errorf("photo %d: %w", slot, err)
	}
	return os.ReadFile(out)
}

// checkDimensions reads only the image header and rejects pictures whose
// pixel count exceeds limit.
func checkDimensions(data []byte, limit int) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("read image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("image has no pixels (%dx%d)", cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(limit) {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooManyPixels, cfg.Width, cfg.Height, limit)
	}
	return nil
}

func decodable(data []byte) bool {
	_, _, err := image.DecodeConfig(bytes.NewReader(data))
	return err == nil
}

// toOpaqueRGB returns img unchanged when it is already opaque RGB, else a copy
// with alpha dropped. Colour channels are taken non-premultiplied.
func toOpaqueRGB(img image.Image) image.Image {
	switch m := img.(type) {
	case *image.YCbCr:
		return m
	case *image.RGBA:
		if m.Opaque() {
			return m
		}
	}
	b := img.Bounds()
	dst := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			dst.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
		}
	}
	return dst
}
