package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Env      string
	LogLevel string

	// Backend API
	APIBaseURL    string
	APITimeout    time.Duration
	APIMaxRetries int
	APIBackoff    time.Duration

	// Credentials for the booking flow
	AccountEmail    string
	AccountPassword string

	// Default geolocation submitted with assessments when the host
	// application provides none
	DefaultLatitude  float64
	DefaultLongitude float64
	DefaultAddress   string

	// Draft persistence
	RedisAddr     string
	RedisPassword string
	DraftTTL      time.Duration

	// Stub backend server
	Port      string
	JWTSecret string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		APIBaseURL:    getEnv("MEDIALERT_API_BASE_URL", "http://localhost:8000"),
		APITimeout:    getEnvAsDuration("MEDIALERT_API_TIMEOUT", 15*time.Second),
		APIMaxRetries: getEnvAsInt("MEDIALERT_API_MAX_RETRIES", 2),
		APIBackoff:    getEnvAsDuration("MEDIALERT_API_BACKOFF", 500*time.Millisecond),

		AccountEmail:    getEnv("MEDIALERT_ACCOUNT_EMAIL", ""),
		AccountPassword: getEnv("MEDIALERT_ACCOUNT_PASSWORD", ""),

		DefaultLatitude:  getEnvAsFloat("MEDIALERT_DEFAULT_LATITUDE", 4.8156),
		DefaultLongitude: getEnvAsFloat("MEDIALERT_DEFAULT_LONGITUDE", 6.9271),
		DefaultAddress:   getEnv("MEDIALERT_DEFAULT_ADDRESS", "Port Harcourt, Nigeria"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		DraftTTL:      getEnvAsDuration("MEDIALERT_DRAFT_TTL", 30*time.Minute),

		Port:      getEnv("PORT", "8000"),
		JWTSecret: getEnv("JWT_SECRET", "medialert-dev-secret"),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsFloat retrieves an environment variable as a float or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
