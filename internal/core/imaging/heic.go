package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

// HEIC converters, in auto-detect order.
const (
	ConverterHeifConvert = "heif-convert"
	ConverterMagick      = "magick"
	ConverterSips        = "sips"
)

var knownConverters = []string{ConverterHeifConvert, ConverterMagick, ConverterSips}

// ErrNoHEICConverter means a HEIC photo arrived and no converter is usable.
var ErrNoHEICConverter = errors.New("HEIC not supported: set HEIC_CONVERTER to one of: heif-convert | magick | sips")

// DetectHEICConverter returns the first known converter found on PATH, or "".
func DetectHEICConverter() string {
	for _, c := range knownConverters {
		if _, err := exec.LookPath(c); err == nil {
			return c
		}
	}
	return ""
}

var heicBrands = map[string]bool{
	"heic": true, "heix": true, "heim": true, "heis": true,
	"hevc": true, "hevx": true, "mif1": true, "msf1": true,
}

// isHEIC reports an ISO-BMFF header with a HEIF brand.
func isHEIC(data []byte) bool {
	if len(data) < 12 || !bytes.Equal(data[4:8], []byte("ftyp")) {
		return false
	}
	return heicBrands[string(data[8:12])]
}

// convertHEICtoPNG converts in to a PNG inside dir and returns its path.
// dir belongs to the caller's Scratch, so no cleanup is returned.
func convertHEICtoPNG(ctx context.Context, r Runner, logger *slog.Logger, converter, in, dir string) (string, error) {
	out := filepath.Join(dir, filepath.Base(in)+".png")

	var errb []byte
	var err error
	switch converter {
	case ConverterHeifConvert:
		_, errb, err = r.Run(ctx, ConverterHeifConvert, logger, in, out)
	case ConverterMagick:
		_, errb, err = r.Run(ctx, ConverterMagick, logger, in+"[0]", out)
	case ConverterSips:
		_, errb, err = r.Run(ctx, ConverterSips, logger, "-s", "format", "png", in, "--out", out)
	default:
		return "", ErrNoHEICConverter
	}
	if err != nil {
		return "", fmt.Errorf("%s convert failed: %w (%s)", converter, err, truncate(string(errb), 512))
	}
	if _, statErr := os.Stat(out); statErr != nil {
		return "", fmt.Errorf("HEIC conversion produced no output: %w", statErr)
	}
	return out, nil
}
