package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yomijipsa-art/concrete-ai/internal/common"
	"github.com/yomijipsa-art/concrete-ai/internal/core/llm/gemini"
	"github.com/yomijipsa-art/concrete-ai/internal/core/llm/openai"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	ex, err := New(ctx, common.LLMConfig{Provider: common.ProviderGemini, APIKey: "g"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &gemini.Client{}, ex)

	ex, err = New(ctx, common.LLMConfig{Provider: common.ProviderOpenAI, APIKey: "o"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &openai.Client{}, ex)

	_, err = New(ctx, common.LLMConfig{Provider: "mystery", APIKey: "x"}, nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
