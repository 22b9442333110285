package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Config holds the application configuration.
type Config struct {
	ServerPort      int
	DatabasePath    string
	SessionSecret   string
	CleanupSchedule string // standard cron expression for the background cleanup
	Env             string // "dev" or "production"
}

// Load loads configuration from a local .env file (if present) and the
// environment, falling back to development defaults.
func Load() (*Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	secret := getEnv("SESSION_SECRET", "")
	if secret == "" {
		secret = "dev-secret-key"
		log.Warn().Msg("SESSION_SECRET not set, using insecure development default")
	}

	schedule := getEnv("CLEANUP_SCHEDULE", "@hourly")
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:      port,
		DatabasePath:    getEnv("DATABASE_PATH", "./cronospark.db"),
		SessionSecret:   secret,
		CleanupSchedule: schedule,
		Env:             getEnv("APP_ENV", "dev"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
