package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the review service.
type Config struct {
	AppName         string
	AppEnv          string
	AppPort         string
	CORSOrigins     string
	DatabaseURL     string
	RedisURL        string
	NATSURL         string
	EventsChannel   string
	JWTSecret       string
	AIProvider      string
	GeminiAPIKey    string
	GeminiModel     string
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIBaseURL   string
	AITemperature   float32
	AttemptTimeout  time.Duration
	RateLimitMax    int
	RateLimitWindow time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from REVIEWER_* environment variables and an optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("REVIEWER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Provider credentials are also read from their conventional names.
	_ = v.BindEnv("gemini.api_key", "REVIEWER_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("openai.api_key", "REVIEWER_OPENAI_API_KEY", "OPENAI_API_KEY")

	v.SetDefault("app.name", "Job Application Review Service")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8081")
	v.SetDefault("cors.origins", "*")
	v.SetDefault("database.url", "sqlite:reviewer.db")
	v.SetDefault("events.channel", "reviews")
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.temperature", 0.2)
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("review.attempt_timeout", "60s")
	v.SetDefault("ratelimit.max", 5)
	v.SetDefault("ratelimit.window", "1m")

	attemptTimeout, err := parseDuration(v, "review.attempt_timeout")
	if err != nil {
		return Config{}, err
	}
	window, err := parseDuration(v, "ratelimit.window")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:         v.GetString("app.name"),
		AppEnv:          v.GetString("app.env"),
		AppPort:         v.GetString("app.port"),
		CORSOrigins:     v.GetString("cors.origins"),
		DatabaseURL:     strings.TrimSpace(v.GetString("database.url")),
		RedisURL:        strings.TrimSpace(v.GetString("redis.url")),
		NATSURL:         strings.TrimSpace(v.GetString("nats.url")),
		EventsChannel:   v.GetString("events.channel"),
		JWTSecret:       v.GetString("jwt.secret"),
		AIProvider:      strings.ToLower(strings.TrimSpace(v.GetString("ai.provider"))),
		GeminiAPIKey:    v.GetString("gemini.api_key"),
		GeminiModel:     v.GetString("gemini.model"),
		OpenAIAPIKey:    v.GetString("openai.api_key"),
		OpenAIModel:     v.GetString("openai.model"),
		OpenAIBaseURL:   v.GetString("openai.base_url"),
		AITemperature:   float32(v.GetFloat64("ai.temperature")),
		AttemptTimeout:  attemptTimeout,
		RateLimitMax:    v.GetInt("ratelimit.max"),
		RateLimitWindow: window,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}
	if cfg.AttemptTimeout <= 0 {
		return Config{}, fmt.Errorf("review attempt timeout must be positive")
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	duration, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return duration, nil
}
