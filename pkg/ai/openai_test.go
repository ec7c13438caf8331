package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newChatServer(t *testing.T, content string, received *map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		if received != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(received))
		}
		w.Header().Set("Content-Type", "application/json")
		choices := []map[string]interface{}{}
		if content != "" {
			choices = append(choices, map[string]interface{}{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]interface{}{"role": "assistant", "content": content},
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"model":   "gpt-4o-mini",
			"choices": choices,
		})
	}))
}

func TestOpenAIGeneratorReturnsFirstChoice(t *testing.T) {
	var received map[string]interface{}
	server := newChatServer(t, `  {"applications": []}  `, &received)
	defer server.Close()

	generator, err := NewOpenAIGenerator(OpenAIConfig{APIKey: "test", BaseURL: server.URL, Logger: zerolog.Nop()})
	require.NoError(t, err)

	text, err := generator.Generate(context.Background(), "review these")
	require.NoError(t, err)
	require.Equal(t, `{"applications": []}`, text)
	require.Equal(t, "gpt-4o-mini", received["model"])

	messages, ok := received["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 1)
	require.Equal(t, "review these", messages[0].(map[string]interface{})["content"])
}

func TestOpenAIGeneratorEmptyChoices(t *testing.T) {
	server := newChatServer(t, "", nil)
	defer server.Close()

	generator, err := NewOpenAIGenerator(OpenAIConfig{APIKey: "test", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = generator.Generate(context.Background(), "review these")
	require.True(t, errors.Is(err, ErrEmptyResponse))
}

func TestNewGeneratorRequiresCredentials(t *testing.T) {
	_, err := NewGenerator(context.Background(), ProviderConfig{Provider: "openai"})
	require.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = NewGenerator(context.Background(), ProviderConfig{Provider: "Gemini"})
	require.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = NewGenerator(context.Background(), ProviderConfig{Provider: "anthropic"})
	require.Error(t, err)
}
