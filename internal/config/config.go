package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	// Base URL of the portal backend the client talks to.
	APIBaseURL string

	// Stub server only.
	RedisURL  string
	JWTSecret string

	// My-reaction loader knobs.
	ReactionRetryBase     time.Duration
	ReactionRetryAttempts int
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "3000"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:5173"),

		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:3000"),

		RedisURL:  os.Getenv("REDIS_URL"),
		JWTSecret: getEnv("JWT_SECRET", "12345"),
	}

	var err error
	cfg.ReactionRetryBase, err = time.ParseDuration(getEnv("REACTION_RETRY_BASE", "300ms"))
	if err != nil {
		return nil, fmt.Errorf("invalid REACTION_RETRY_BASE: %w", err)
	}
	cfg.ReactionRetryAttempts, err = strconv.Atoi(getEnv("REACTION_RETRY_MAX_ATTEMPTS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid REACTION_RETRY_MAX_ATTEMPTS: %w", err)
	}
	if cfg.ReactionRetryAttempts < 1 {
		return nil, fmt.Errorf("REACTION_RETRY_MAX_ATTEMPTS must be at least 1")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
