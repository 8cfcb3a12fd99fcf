package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	PostgresURL string
	AutoMigrate bool

	RedisURL       string
	DraftKeyPrefix string

	SessionIdleTTL         time.Duration
	FetchConcurrency       int
	RequireQuestionsOnEdit bool

	CORSAllowOrigin string
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	return &Config{
		Port:                   getString("PORT", "8080"),
		AppEnv:                 getString("APP_ENV", "production"),
		LogLevel:               getString("LOG_LEVEL", "info"),
		PostgresURL:            os.Getenv("POSTGRES_URL"),
		AutoMigrate:            getBool("AUTO_MIGRATE", true),
		RedisURL:               os.Getenv("REDIS_URL"),
		DraftKeyPrefix:         getString("DRAFT_KEY_PREFIX", "draft"),
		SessionIdleTTL:         getDuration("SESSION_IDLE_TTL", 30*time.Minute),
		FetchConcurrency:       getInt("FETCH_CONCURRENCY", 4),
		RequireQuestionsOnEdit: getBool("REQUIRE_QUESTIONS_ON_EDIT", false),
		CORSAllowOrigin:        getString("CORS_ALLOW_ORIGIN", "*"),
	}
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

func getString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
