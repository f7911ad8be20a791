// Package llm holds the vision model contract, the field prompt and the
// parser that turns a free-text reply into a FieldMap.
package llm

import "context"

// VisionRequest is one prompt plus one image.
type VisionRequest struct {
	Prompt   string
	Image    []byte
	MimeType string // sniffed from Image when empty
	Filename string // log hint only
}

// VisionExtractor sends a prompt and an image to a multimodal model and
// returns the model's raw text reply. Implementations must not retry.
type VisionExtractor interface {
	ExtractText(ctx context.Context, req VisionRequest) (string, error)
}

// ExtractorFunc adapts a function to VisionExtractor.
type ExtractorFunc func(ctx context.Context, req VisionRequest) (string, error)

func (f ExtractorFunc) ExtractText(ctx context.Context, req VisionRequest) (string, error) {
	return f(ctx, req)
}
