package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingEnv is returned by Load when a required variable is unset.
var ErrMissingEnv = errors.New("required environment variable is not set")

type Config struct {
	// Server
	Port              string
	Env               string
	CORSAllowedOrigin string

	// Logging
	LogLevel      string
	LogFormatJSON bool
	LogFile       string
	LogToStdout   bool

	// Gemini AI
	GeminiAPIKey         string
	GeminiModel          string
	GeminiTimeout        time.Duration
	GeminiConcurrentReqs int
	GeminiTemperature    float32

	// Sessions
	RedisURL   string
	SessionTTL time.Duration

	// Rate limiting for the AI-backed routes
	AIRateLimitPerMin int
}

// Load reads the process environment (and a .env file when present).
// The Gemini credential is the only required value.
func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	apiKey, err := requireEnv("GEMINI_API_KEY")
	if err != nil {
		return nil, err
	}

	env := getEnvOrDefault("ENV", "development")

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Env:                  env,
		CORSAllowedOrigin:    getEnvOrDefault("CORS_ALLOWED_ORIGIN", ""),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormatJSON:        getEnvAsBoolOrDefault("LOG_FORMAT_JSON", env == "production"),
		LogFile:              getEnvOrDefault("LOG_FILE", ""),
		LogToStdout:          getEnvAsBoolOrDefault("LOG_TO_STDOUT", true),
		GeminiAPIKey:         apiKey,
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiTimeout:        getEnvAsDurationOrDefault("GEMINI_TIMEOUT", 60*time.Second),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		GeminiTemperature:    getEnvAsFloatOrDefault("GEMINI_TEMPERATURE", 0.7),
		RedisURL:             getEnvOrDefault("REDIS_URL", ""),
		SessionTTL:           getEnvAsDurationOrDefault("SESSION_TTL", 2*time.Hour),
		AIRateLimitPerMin:    getEnvAsIntOrDefault("AI_RATE_LIMIT_PER_MINUTE", 20),
	}

	if cfg.GeminiConcurrentReqs < 1 {
		cfg.GeminiConcurrentReqs = 1
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func requireEnv(key string) (string, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return "", fmt.Errorf("%s: %w", key, ErrMissingEnv)
	}
	return val, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float32) float32 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 32)
	if err != nil {
		return defaultVal
	}
	return float32(f)
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
