// Package gemini implements llm.VisionExtractor on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/yomijipsa-art/concrete-ai/internal/core/llm"
)

const DefaultModel = "gemini-3-flash-preview"

// ErrEmptyReply is returned when the model answered without any text.
var ErrEmptyReply = errors.New("gemini returned no text")

// Config for the Gemini client.
type Config struct {
	APIKey      string        // if empty, falls back to env GEMINI_API_KEY
	Model       string        // default gemini-3-flash-preview
	BaseURL     string        // override for proxies and tests
	Temperature float32       // 0 leaves the model default
	Timeout     time.Duration // per request; zero means none
}

type Client struct {
	cfg    Config
	client *genai.Client
	log    *slog.Logger
}

var _ llm.VisionExtractor = (*Client)(nil)

func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: httpOptions(cfg),
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{cfg: cfg, client: gc, log: logger}, nil
}

func (c *Client) Model() string { return c.cfg.Model }

// ExtractText implements llm.VisionExtractor with a single GenerateContent
// call holding a text part and an inline image part.
func (c *Client) ExtractText(ctx context.Context, req llm.VisionRequest) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = llm.DetectMimeType(req.Image, req.Filename)
	}

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"provider", "gemini",
		"model", c.cfg.Model,
		"image_bytes", len(req.Image),
		"mime_type", mimeType,
		"file", req.Filename,
	)

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(req.Prompt),
			genai.NewPartFromBytes(req.Image, mimeType),
		}, genai.RoleUser),
	}
	var gcfg *genai.GenerateContentConfig
	if c.cfg.Temperature > 0 {
		t := c.cfg.Temperature
		gcfg = &genai.GenerateContentConfig{Temperature: &t}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, contents, gcfg)
	if err != nil {
		attrs := []any{"req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds()}
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			attrs = append(attrs, "status", apiErr.Code)
		}
		c.log.Error("llm.extract.api_error", attrs...)
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		c.log.Error("llm.extract.empty_reply", "req_id", rid, "elapsed_ms", time.Since(start).Milliseconds())
		return "", ErrEmptyReply
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"provider", "gemini",
		"reply_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

// httpOptions leaves Timeout unset when cfg.Timeout is zero so a call runs
// until the caller's context ends.
func httpOptions(cfg Config) genai.HTTPOptions {
	opts := genai.HTTPOptions{BaseURL: cfg.BaseURL}
	if cfg.Timeout > 0 {
		t := cfg.Timeout
		opts.Timeout = &t
	}
	return opts
}
