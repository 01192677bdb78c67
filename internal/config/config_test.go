package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.envValue)
			assert.Equal(t, tc.expected, getEnvOrDefault(tc.key, tc.defaultVal))
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "TEST_INT_3", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.envValue)
			assert.Equal(t, tc.expected, getEnvAsIntOrDefault(tc.key, tc.defaultVal))
		})
	}
}

func TestGetEnvAsDurationOrDefault(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected time.Duration
	}{
		{"parses duration", "90s", 90 * time.Second},
		{"uses default for empty", "", time.Minute},
		{"uses default for garbage", "soon", time.Minute},
		{"uses default for negative", "-5s", time.Minute},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tc.envValue)
			assert.Equal(t, tc.expected, getEnvAsDurationOrDefault("TEST_DURATION", time.Minute))
		})
	}
}

func TestGetEnvAsBoolAndFloat(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_FLOAT", "0.25")
	t.Setenv("TEST_BAD_FLOAT", "warm")

	assert.True(t, getEnvAsBoolOrDefault("TEST_BOOL", false))
	assert.InDelta(t, 0.25, getEnvAsFloatOrDefault("TEST_FLOAT", 0.7), 1e-6)
	assert.InDelta(t, 0.7, getEnvAsFloatOrDefault("TEST_BAD_FLOAT", 0.7), 1e-6)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingEnv)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
	assert.Nil(t, cfg)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key123")
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("GEMINI_CONCURRENT_REQUESTS", "0")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_FORMAT_JSON", "")
	t.Setenv("CORS_ALLOWED_ORIGIN", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.LogFormatJSON)
	assert.Empty(t, cfg.CORSAllowedOrigin)
	assert.Equal(t, "key123", cfg.GeminiAPIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, 1, cfg.GeminiConcurrentReqs)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoad_Production(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key123")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_FORMAT_JSON", "")
	t.Setenv("CORS_ALLOWED_ORIGIN", "https://flowfit.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.LogFormatJSON, "production logs default to JSON")
	assert.Equal(t, "https://flowfit.example", cfg.CORSAllowedOrigin)

	t.Setenv("LOG_FORMAT_JSON", "false")
	cfg, err = Load()
	require.NoError(t, err)
	assert.False(t, cfg.LogFormatJSON)
}
