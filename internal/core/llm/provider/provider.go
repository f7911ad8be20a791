// Package provider builds the configured VisionExtractor.
package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yomijipsa-art/concrete-ai/internal/common"
	"github.com/yomijipsa-art/concrete-ai/internal/core/llm"
	"github.com/yomijipsa-art/concrete-ai/internal/core/llm/gemini"
	"github.com/yomijipsa-art/concrete-ai/internal/core/llm/openai"
)

// New returns the extractor named by cfg.Provider.
func New(ctx context.Context, cfg common.LLMConfig, logger *slog.Logger) (llm.VisionExtractor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Provider {
	case common.ProviderGemini, "":
		c, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			BaseURL:     cfg.BaseURL,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("llm.provider.ready", "provider", common.ProviderGemini, "model", c.Model())
		return c, nil
	case common.ProviderOpenAI:
		c := openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
		logger.Info("llm.provider.ready", "provider", common.ProviderOpenAI, "model", c.Model())
		return c, nil
	default:
		return nil, common.NewAppError(common.CodeConfig, fmt.Sprintf("unknown llm provider %q", cfg.Provider), common.ErrInvalidInput)
	}
}
