package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	ServerPort     int
	DatabasePath   string
	UploadsDir     string // Base path for uploaded story images
	AssetsDir      string // Static assets, including the placeholder image
	JWTSecret      string
	TokenTTL       time.Duration
	SweepSchedule  string // Cron expression for the orphaned-asset sweep
	AllowedOrigins []string
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	portStr := getEnv("PORT", "8000")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	ttlHoursStr := getEnv("TOKEN_TTL_HOURS", "72")
	ttlHours, err := strconv.Atoi(ttlHoursStr)
	if err != nil {
		return nil, err
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	return &Config{
		ServerPort:     port,
		DatabasePath:   getEnv("DATABASE_PATH", "./tripscribe.db"),
		UploadsDir:     getEnv("UPLOADS_DIR", "./uploads"),
		AssetsDir:      getEnv("ASSETS_DIR", "./assets"),
		JWTSecret:      secret,
		TokenTTL:       time.Duration(ttlHours) * time.Hour,
		SweepSchedule:  getEnv("SWEEP_SCHEDULE", "0 3 * * *"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
