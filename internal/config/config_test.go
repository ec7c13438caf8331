package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REVIEWER_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8081", cfg.HTTPAddress())
	require.Equal(t, "gemini", cfg.AIProvider)
	require.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	require.Equal(t, 60*time.Second, cfg.AttemptTimeout)
	require.Equal(t, "reviews", cfg.EventsChannel)
	require.Equal(t, "sqlite:reviewer.db", cfg.DatabaseURL)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("REVIEWER_JWT_SECRET", "secret")
	t.Setenv("REVIEWER_APP_PORT", ":9000")
	t.Setenv("REVIEWER_AI_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("REVIEWER_REVIEW_ATTEMPT_TIMEOUT", "15s")
	t.Setenv("REVIEWER_RATELIMIT_MAX", "2")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.HTTPAddress())
	require.Equal(t, "openai", cfg.AIProvider)
	require.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	require.Equal(t, 15*time.Second, cfg.AttemptTimeout)
	require.Equal(t, 2, cfg.RateLimitMax)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("REVIEWER_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("REVIEWER_JWT_SECRET", "secret")
	t.Setenv("REVIEWER_REVIEW_ATTEMPT_TIMEOUT", "soon")

	_, err := Load()
	require.ErrorContains(t, err, "review.attempt_timeout")
}
