package llm

import (
	"encoding/base64"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/yomijipsa-art/concrete-ai/constants"
)

// DetectMimeType sniffs data first, then maps known photo extensions, then
// asks the host MIME table.
func DetectMimeType(data []byte, filename string) string {
	if len(data) > 0 {
		if mt := http.DetectContentType(data); strings.HasPrefix(mt, "image/") {
			return mt
		}
	}
	ext := constants.NormalizeExt(filepath.Ext(filename))
	switch constants.MapExtToFormat(ext) {
	case constants.JPEG:
		return constants.JPEGMimeType
	case constants.PNG:
		return "image/png"
	case constants.GIF:
		return "image/gif"
	case constants.BMP:
		return "image/bmp"
	case constants.TIFF:
		return "image/tiff"
	case constants.WEBP:
		return "image/webp"
	case constants.HEIC:
		return "image/heic"
	}
	if ext != "" {
		if mt := mime.TypeByExtension("." + ext); mt != "" {
			return mt
		}
	}
	return "application/octet-stream"
}

// DataURL encodes data as a base64 data: URL.
func DataURL(data []byte, mimeType string) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
