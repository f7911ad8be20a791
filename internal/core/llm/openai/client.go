package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yomijipsa-art/concrete-ai/internal/core/llm"
)

var _ llm.VisionExtractor = (*Client)(nil)

// ErrEmptyReply is returned when the model answered without any text.
var ErrEmptyReply = errors.New("openai returned no text")

// ExtractText implements llm.VisionExtractor with one chat/completions call
// carrying the prompt and the image as a data URL content part.
func (c *Client) ExtractText(ctx context.Context, req llm.VisionRequest) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = llm.DetectMimeType(req.Image, req.Filename)
	}

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"provider", "openai",
		"model", c.cfg.Model,
		"image_bytes", len(req.Image),
		"mime_type", mimeType,
		"file", req.Filename,
	)

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": req.Prompt},
					{"type": "image_url", "image_url": map[string]any{
						"url":    llm.DataURL(req.Image, mimeType),
						"detail": c.cfg.Detail,
					}},
				},
			},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, status, err := llm.SendJSON(ctx, c.httpClient, endpoint, body, headers, c.log)
	if err != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("openai chat/completions: %w", err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return "", fmt.Errorf("no choices in openai response: %w", ErrEmptyReply)
	}
	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyReply
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"provider", "openai",
		"reply_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}
