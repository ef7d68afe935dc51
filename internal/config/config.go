// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the API server and the packctl CLI.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	CORSOrigins []string

	// JWTSecret is the HS256 secret bearer tokens are signed with. Required.
	JWTSecret string

	ForecastURL  string
	ArchiveURL   string
	GeocodingURL string

	// WeatherTimeout bounds each outbound weather or geocoding request.
	WeatherTimeout time.Duration

	// WeatherTimezone is the IANA zone used to decide what "today" is when
	// splitting a trip into forecast and historical ranges. Defaults to the
	// process's local zone.
	WeatherTimezone *time.Location

	// ForecastHorizonDays is how far ahead the forecast service has data.
	ForecastHorizonDays int

	// PreviewTTL is how long an unsaved-trip weather preview stays cached.
	PreviewTTL time.Duration

	// GeocodeRPS limits outbound city search requests per second.
	GeocodeRPS float64

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64

	// CacheSweepInterval is how often expired query cache entries are dropped.
	CacheSweepInterval time.Duration

	// MigrateOnStart runs pending migrations before serving.
	MigrateOnStart bool
}

// LoadEnvFile loads KEY=VALUE pairs from the given files (".env" when none)
// into the process environment without overriding variables already set.
// Missing files are not an error.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or the
// first variable that fails to parse.
func Load() (Config, error) {
	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		CORSOrigins:  splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		ForecastURL:  getEnv("FORECAST_URL", "https://api.open-meteo.com/v1/forecast"),
		ArchiveURL:   getEnv("ARCHIVE_URL", "https://archive-api.open-meteo.com/v1/archive"),
		GeocodingURL: getEnv("GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1/search"),
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.WeatherTimeout, err = getDuration("WEATHER_HTTP_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.PreviewTTL, err = getDuration("PREVIEW_TTL", 30*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.CacheSweepInterval, err = getDuration("CACHE_SWEEP_INTERVAL", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.ForecastHorizonDays, err = getInt("FORECAST_HORIZON_DAYS", 14); err != nil {
		return Config{}, err
	}
	if cfg.ForecastHorizonDays < 1 {
		return Config{}, fmt.Errorf("invalid FORECAST_HORIZON_DAYS: must be at least 1")
	}
	maxBody, err := getInt("MAX_BODY_BYTES", 1<<20)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxBodyBytes = int64(maxBody)
	if cfg.GeocodeRPS, err = getFloat("GEOCODE_RPS", 5); err != nil {
		return Config{}, err
	}
	if cfg.MigrateOnStart, err = getBool("MIGRATE_ON_START", true); err != nil {
		return Config{}, err
	}

	cfg.WeatherTimezone = time.Local
	if tz := os.Getenv("WEATHER_TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return Config{}, fmt.Errorf("invalid WEATHER_TIMEZONE: %w", err)
		}
		cfg.WeatherTimezone = loc
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q is not a positive duration", key, v)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid %s: %q is not a positive number", key, v)
	}
	return f, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
