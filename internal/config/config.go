package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}

	cfg := Config{
		DBName: getEnv("DB_NAME"),
		Port:   getEnv("PORT"),
		Turso: TursoConfig{
			PrimaryURL: os.Getenv("TURSO_PRIMARY_URL"),
			AuthToken:  os.Getenv("TURSO_AUTH_TOKEN"),
		},
		Auth: AuthConfig{
			Password:     os.Getenv("ADMIN_PASSWORD"),
			PasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
			TokenSecret:  getEnv("TOKEN_SECRET"),
			TokenTTL:     durationEnv("TOKEN_TTL", 12*time.Hour),
			LoginRate:    intEnv("LOGIN_RATE_PER_MINUTE", 5),
			LoginBurst:   intEnv("LOGIN_BURST", 5),
		},
		Slack: SlackConfig{
			Token:     os.Getenv("SLACK_BOT_TOKEN"),
			ChannelID: os.Getenv("SLACK_CHANNEL_ID"),
			DryRun:    os.Getenv("SLACK_DRY_RUN") == "true",
		},
		ProjectID:      os.Getenv("GCP_PROJECT"),
		OptionsFile:    stringEnv("OPTIONS_FILE", "config.yaml"),
		AllowedOrigins: strings.Split(stringEnv("CORS_ALLOWED_ORIGINS", "*"), ","),
	}
	if cfg.Auth.Password == "" && cfg.Auth.PasswordHash == "" {
		log.Fatalf("Error: one of ADMIN_PASSWORD or ADMIN_PASSWORD_HASH must be set.")
	}

	catalog, err := LoadCatalog(cfg.OptionsFile)
	if err != nil {
		log.Fatalf("Failed to load options file %s: %s", cfg.OptionsFile, err)
	}
	cfg.Catalog = catalog
	return cfg
}

func stringEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Warn("Invalid integer in environment, using default", "key", key, "value", value, "default", fallback)
		return fallback
	}
	return n
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Warn("Invalid duration in environment, using default", "key", key, "value", value, "default", fallback)
		return fallback
	}
	return d
}
