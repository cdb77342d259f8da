package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort   int
	DatabasePath string
	AppName      string

	// BaseURL is the public base URL all generated sites are served under,
	// e.g. "https://about-me.website".
	BaseURL string

	// TemplateHome is the fixed Hugo template skeleton copied into every
	// source workspace before content generation.
	TemplateHome string

	// ScratchRoot is the base path for per-slug source and build workspaces.
	ScratchRoot string

	// PublicRoot is the base path the web server serves live sites from.
	PublicRoot string

	BuildTimeout    time.Duration
	BuildWorkers    int
	JanitorSchedule string // standard cron expression

	JWTSecret string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
}

// Load loads configuration from environment variables or sets defaults.
// A .env file in the working directory is picked up when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	timeoutSecs, err := strconv.Atoi(getEnv("BUILD_TIMEOUT_SECONDS", "120"))
	if err != nil {
		return nil, fmt.Errorf("invalid BUILD_TIMEOUT_SECONDS: %w", err)
	}

	workers, err := strconv.Atoi(getEnv("BUILD_WORKERS", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid BUILD_WORKERS: %w", err)
	}
	if workers < 1 {
		workers = 1
	}

	cfg := &Config{
		ServerPort:       port,
		DatabasePath:     getEnv("DATABASE_PATH", "./aboutme.db"),
		AppName:          getEnv("APP_NAME", "AboutMe"),
		BaseURL:          getEnv("BASE_URL", "https://about-me.website"),
		TemplateHome:     getEnv("TEMPLATE_HOME", "./hugo-templates/default-template"),
		ScratchRoot:      getEnv("SCRATCH_ROOT", os.TempDir()),
		PublicRoot:       getEnv("PUBLIC_ROOT", "/var/www/about-me.website"),
		BuildTimeout:     time.Duration(timeoutSecs) * time.Second,
		BuildWorkers:     workers,
		JanitorSchedule:  getEnv("JANITOR_SCHEDULE", "0 3 * * *"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber: os.Getenv("TWILIO_FROM_NUMBER"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	return cfg, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
