package constants

import "strings"

// Image format families accepted as photo uploads.
const (
	JPEG = "JPEG"
	PNG  = "PNG"
	GIF  = "GIF"
	BMP  = "BMP"
	TIFF = "TIFF"
	WEBP = "WEBP"
	HEIC = "HEIC"
)

// AllowedExtensions holds the photo extensions accepted for upload.
// "mpo" is the multi-picture JPEG variant written by stereo/phone cameras.
var AllowedExtensions = map[string]string{
	"jpg":   JPEG,
	"jpeg":  JPEG,
	"jpe":   JPEG,
	"mpo":   JPEG,
	"png":   PNG,
	"gif":   GIF,
	"bmp":   BMP,
	"tif":   TIFF,
	"tiff":  TIFF,
	"webp":  WEBP,
	"heic":  HEIC,
	"heif":  HEIC,
	"heics": HEIC,
	"heifs": HEIC,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns the format family for ext, or "" if unsupported.
func MapExtToFormat(ext string) string {
	return AllowedExtensions[NormalizeExt(ext)]
}

func IsAllowedExt(ext string) bool {
	return MapExtToFormat(ext) != ""
}

func IsHEICExt(ext string) bool {
	return MapExtToFormat(ext) == HEIC
}

// MaxPhotoMB caps a single uploaded photo.
const MaxPhotoMB = 25

// MaxPhotoPixels caps the decoded size of a photo (width*height). A small
// compressed file can declare dimensions that would need gigabytes once
// decoded.
const MaxPhotoPixels = 64_000_000
