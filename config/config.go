// Package config loads server configuration. It uses koanf to merge an
// optional YAML file with environment variables, which take precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds all configuration values for the API server.
type Config struct {
	Port     int    `koanf:"port"`
	Env      string `koanf:"env"`
	Timezone string `koanf:"timezone"`

	// Storage
	Store        string `koanf:"store"`
	DatabaseURL  string `koanf:"database_url"`
	DatabaseName string `koanf:"database_name"`
	SeedData     bool   `koanf:"seed_data"`

	// Geocoding. An empty token disables lookups; venues keep default coordinates.
	MapboxToken       string        `koanf:"mapbox_token"`
	MapboxURL         string        `koanf:"mapbox_url"`
	GeocodeWorkers    int           `koanf:"geocode_workers"`
	GeocodeQueueSize  int           `koanf:"geocode_queue_size"`
	GeocodeTimeout    time.Duration `koanf:"geocode_timeout"`
	GeocodeMaxElapsed time.Duration `koanf:"geocode_max_elapsed"`
	// GeocodeBackfillInterval re-queues unlocated venues periodically; 0s disables it.
	GeocodeBackfillInterval time.Duration `koanf:"geocode_backfill_interval"`
}

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required when STORE is postgres")
	ErrInvalidStore       = errors.New("STORE must be postgres or memory")
	ErrInvalidPort        = errors.New("PORT must be a valid integer")
	ErrInvalidWorkers     = errors.New("GEOCODE_WORKERS must be at least 1")
	ErrInvalidQueueSize   = errors.New("GEOCODE_QUEUE_SIZE must be at least 1")
	ErrInvalidTimezone    = errors.New("TIMEZONE must be a valid IANA zone name")
	ErrInvalidBackfill    = errors.New("GEOCODE_BACKFILL_INTERVAL must not be negative")
)

const (
	DefaultPort              = 8080
	DefaultEnv               = "development"
	DefaultTimezone          = "Europe/London"
	DefaultStore             = StorePostgres
	DefaultDatabaseName      = "events"
	DefaultMapboxURL         = "https://api.mapbox.com"
	DefaultGeocodeWorkers    = 2
	DefaultGeocodeQueueSize  = 100
	DefaultGeocodeTimeout    = 5 * time.Second
	DefaultGeocodeMaxElapsed = 2 * time.Minute
	DefaultGeocodeBackfill   = 10 * time.Minute
)

// Load reads configuration from an optional YAML file and then from the
// environment. It returns the config and every problem found (empty if valid).
// A config file that cannot be read is reported on its own.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	port, err := envInt("PORT", k.Int("port"), DefaultPort)
	collect(err)
	workers, err := envInt("GEOCODE_WORKERS", k.Int("geocode_workers"), DefaultGeocodeWorkers)
	collect(err)
	queueSize, err := envInt("GEOCODE_QUEUE_SIZE", k.Int("geocode_queue_size"), DefaultGeocodeQueueSize)
	collect(err)
	timeout, err := envDuration("GEOCODE_TIMEOUT", k.Duration("geocode_timeout"), DefaultGeocodeTimeout)
	collect(err)
	maxElapsed, err := envDuration("GEOCODE_MAX_ELAPSED", k.Duration("geocode_max_elapsed"), DefaultGeocodeMaxElapsed)
	collect(err)
	backfill, err := envDuration("GEOCODE_BACKFILL_INTERVAL", k.Duration("geocode_backfill_interval"), DefaultGeocodeBackfill)
	collect(err)

	cfg := &Config{
		Port:              port,
		Env:               envOr([]string{"APP_ENV", "ENV"}, k.String("env"), DefaultEnv),
		Timezone:          envOr([]string{"TIMEZONE", "TZ"}, k.String("timezone"), DefaultTimezone),
		Store:             strings.ToLower(envOr([]string{"STORE"}, k.String("store"), DefaultStore)),
		DatabaseURL:       envOr([]string{"DATABASE_URL"}, k.String("database_url"), ""),
		DatabaseName:      envOr([]string{"DATABASE_NAME"}, k.String("database_name"), DefaultDatabaseName),
		SeedData:          envBool("SEED_DATA", k.Bool("seed_data")),
		MapboxToken:       envOr([]string{"MAPBOX_ACCESS_TOKEN"}, k.String("mapbox_token"), ""),
		MapboxURL:         envOr([]string{"MAPBOX_URL"}, k.String("mapbox_url"), DefaultMapboxURL),
		GeocodeWorkers:    workers,
		GeocodeQueueSize:  queueSize,
		GeocodeTimeout:    timeout,
		GeocodeMaxElapsed: maxElapsed,

		GeocodeBackfillInterval: backfill,
	}

	return cfg, append(errs, cfg.Validate()...)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() []error {
	var errs []error

	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, ErrMissingDatabaseURL)
		}
	case StoreMemory:
	default:
		errs = append(errs, ErrInvalidStore)
	}
	if c.GeocodeWorkers < 1 {
		errs = append(errs, ErrInvalidWorkers)
	}
	if c.GeocodeQueueSize < 1 {
		errs = append(errs, ErrInvalidQueueSize)
	}
	if c.GeocodeBackfillInterval < 0 {
		errs = append(errs, ErrInvalidBackfill)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, ErrInvalidTimezone)
	}
	return errs
}

// Location returns the configured time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GeocodingEnabled reports whether a Mapbox token is configured.
func (c *Config) GeocodingEnabled() bool {
	return c.MapboxToken != ""
}

// LogSummary returns the configuration with secrets masked.
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"port":                fmt.Sprintf("%d", c.Port),
		"env":                 c.Env,
		"timezone":            c.Timezone,
		"store":               c.Store,
		"database_url":        maskDatabaseURL(c.DatabaseURL),
		"database_name":       c.DatabaseName,
		"seed_data":           strconv.FormatBool(c.SeedData),
		"mapbox_token":        maskSecret(c.MapboxToken),
		"mapbox_url":          c.MapboxURL,
		"geocode_workers":     fmt.Sprintf("%d", c.GeocodeWorkers),
		"geocode_queue_size":  fmt.Sprintf("%d", c.GeocodeQueueSize),
		"geocode_timeout":     c.GeocodeTimeout.String(),
		"geocode_max_elapsed": c.GeocodeMaxElapsed.String(),

		"geocode_backfill_interval": c.GeocodeBackfillInterval.String(),
	}
}

func envOr(envKeys []string, koanfVal, defaultVal string) string {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

func envInt(envKey string, koanfVal, defaultVal int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			if envKey == "PORT" {
				return 0, fmt.Errorf("%s: %w", val, ErrInvalidPort)
			}
			return 0, fmt.Errorf("%s must be a valid integer: %w", envKey, err)
		}
		return i, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

func envDuration(envKey string, koanfVal, defaultVal time.Duration) (time.Duration, error) {
	if val := os.Getenv(envKey); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid duration: %w", envKey, err)
		}
		return d, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

func envBool(envKey string, koanfVal bool) bool {
	switch strings.ToLower(os.Getenv(envKey)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return koanfVal
	}
}

func maskSecret(s string) string {
	if s == "" {
		return "<not set>"
	}
	if len(s) < 8 {
		return "****"
	}
	return s[:4] + "****"
}

// maskDatabaseURL hides the password in a user:password@host URL.
func maskDatabaseURL(s string) string {
	if s == "" {
		return "<not set>"
	}
	schemeEnd := strings.Index(s, "://")
	if schemeEnd == -1 {
		return maskSecret(s)
	}
	rest := s[schemeEnd+3:]
	at := strings.Index(rest, "@")
	if at == -1 {
		return s
	}
	colon := strings.Index(rest[:at], ":")
	if colon == -1 {
		return s
	}
	return s[:schemeEnd+3] + rest[:colon] + ":****" + rest[at:]
}
