package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yomijipsa-art/concrete-ai/internal/core/llm"
)

func TestClient_ExtractText(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"공사명: A현장\n슬럼프: 150"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1", Model: "gpt-4o-mini"}, nil)
	text, err := c.ExtractText(context.Background(), llm.VisionRequest{
		Prompt:   "find fields",
		Image:    []byte{0xFF, 0xD8, 0xFF, 0xE0},
		MimeType: "image/jpeg",
	})
	require.NoError(t, err)
	assert.Equal(t, "공사명: A현장\n슬럼프: 150", text)

	assert.Equal(t, "gpt-4o-mini", got["model"])
	msgs := got["messages"].([]any)
	require.Len(t, msgs, 1)
	parts := msgs[0].(map[string]any)["content"].([]any)
	require.Len(t, parts, 2)
	assert.Equal(t, "find fields", parts[0].(map[string]any)["text"])
	imageURL := parts[1].(map[string]any)["image_url"].(map[string]any)["url"].(string)
	assert.True(t, strings.HasPrefix(imageURL, "data:image/jpeg;base64,"), imageURL)
}

func TestClient_ExtractText_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"non-2xx", http.StatusTooManyRequests, `{"error":{"message":"rate limited"}}`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"empty content", http.StatusOK, `{"choices":[{"message":{"content":"  "}}]}`},
		{"bad json", http.StatusOK, `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
			_, err := c.ExtractText(context.Background(), llm.VisionRequest{Prompt: "p", Image: []byte("x")})
			assert.Error(t, err)
			assert.Equal(t, 1, calls, "no retry")
		})
	}
}

func TestNewClient_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "from-env")
	c := NewClient(Config{}, nil)
	assert.Equal(t, "from-env", c.cfg.APIKey)
	assert.Equal(t, DefaultBaseURL, c.cfg.BaseURL)
	assert.Equal(t, DefaultModel, c.Model())
	assert.Zero(t, c.httpClient.Timeout, "no client-side deadline unless configured")

	c = NewClient(Config{APIKey: "k", Timeout: 5 * time.Second}, nil)
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
}
