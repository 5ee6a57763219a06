package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// GetString retrieves an environment variable or returns a fallback when unset.
func GetString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetInt retrieves an environment variable as integer or returns fallback.
func GetInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			log.Printf("invalid value for %s: %v", key, err)
			return fallback
		}
		return parsed
	}
	return fallback
}

// GetBool retrieves an environment variable as bool or returns fallback.
func GetBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			log.Printf("invalid value for %s: %v", key, err)
			return fallback
		}
		return parsed
	}
	return fallback
}

// WebConfig holds runtime configuration for the web frontend.
type WebConfig struct {
	Environment        string
	Addr               string
	BackendAPIURL      string
	PublicBaseURL      string
	APITimeout         time.Duration
	SessionSecret      string
	CookieName         string
	CookieSecure       bool
	SessionTTL         time.Duration
	SessionRedisAddr   string
	SessionRedisPass   string
	SessionRedisDB     int
	RateLimitRedisAddr string
	RateLimitRedisPass string
	RateLimitRedisDB   int
}

// LoadWebConfig constructs a WebConfig from environment variables.
func LoadWebConfig() WebConfig {
	return WebConfig{
		Environment:        GetString("APP_ENV", "development"),
		Addr:               GetString("WEB_ADDR", ":3000"),
		BackendAPIURL:      GetString("BACKEND_API_URL", "http://localhost:8000"),
		PublicBaseURL:      GetString("PUBLIC_BASE_URL", "http://localhost:3000"),
		APITimeout:         time.Duration(GetInt("API_TIMEOUT_SECONDS", 15)) * time.Second,
		SessionSecret:      GetString("SESSION_SECRET", ""),
		CookieName:         GetString("SESSION_COOKIE_NAME", "hf_session"),
		CookieSecure:       GetBool("SESSION_COOKIE_SECURE", false),
		SessionTTL:         time.Duration(GetInt("SESSION_TTL_HOURS", 72)) * time.Hour,
		SessionRedisAddr:   GetString("SESSION_REDIS_ADDR", ""),
		SessionRedisPass:   GetString("SESSION_REDIS_PASSWORD", ""),
		SessionRedisDB:     GetInt("SESSION_REDIS_DB", 0),
		RateLimitRedisAddr: GetString("RATE_LIMIT_REDIS_ADDR", ""),
		RateLimitRedisPass: GetString("RATE_LIMIT_REDIS_PASSWORD", ""),
		RateLimitRedisDB:   GetInt("RATE_LIMIT_REDIS_DB", 0),
	}
}
