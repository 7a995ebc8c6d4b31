package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the service configuration
type Config struct {
	Port        string
	DBPath      string
	DatabaseURL string // postgres:// URL; takes precedence over DBPath
	ArtifactDir string
	JWTSecret   string // empty disables the admin routes

	LogLevel  string
	LogFormat string // json or console
	GinMode   string

	RateLimit  int
	RateWindow time.Duration

	WatchArtifacts  bool
	RetrainSchedule string // cron spec; empty disables scheduled retraining
	TestSize        float64
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment variables
// win over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:        getString("PORT", ":8080"),
		DBPath:      getString("DB_PATH", "./data/flights.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		ArtifactDir: getString("ARTIFACT_DIR", "./model/output"),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		LogLevel:  getString("LOG_LEVEL", "info"),
		LogFormat: getString("LOG_FORMAT", "json"),
		GinMode:   getString("GIN_MODE", "release"),

		RateLimit:  getInt("RATE_LIMIT", 100),
		RateWindow: getDuration("RATE_WINDOW", time.Minute),

		WatchArtifacts:  getBool("WATCH_ARTIFACTS", true),
		RetrainSchedule: os.Getenv("RETRAIN_SCHEDULE"),
		TestSize:        getFloat("TEST_SIZE", 0.2),
	}
}

// DataSource returns the database location the repositories should open
func (c *Config) DataSource() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DBPath
}

// AdminEnabled reports whether the admin routes are mounted
func (c *Config) AdminEnabled() bool {
	return c.JWTSecret != ""
}

func getString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return def
}
