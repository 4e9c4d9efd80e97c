package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`

	StoreDriver     string `yaml:"store_driver"`
	SQLitePath      string `yaml:"sqlite_path"`
	MongoDBURI      string `yaml:"mongodb_uri"`
	MongoDBPassword string `yaml:"mongodb_password"`
	MongoDBDatabase string `yaml:"mongodb_database"`

	// Timezone is the IANA zone event times are interpreted in.
	Timezone string `yaml:"timezone"`

	GeorefPath string `yaml:"georef_path"`
	CitiesPath string `yaml:"cities_path"`

	WeatherAPIURL      string        `yaml:"weather_api_url"`
	HolidayAPIURL      string        `yaml:"holiday_api_url"`
	HolidayRefreshCron string        `yaml:"holiday_refresh_cron"`
	ExternalTimeout    time.Duration `yaml:"external_timeout"`

	StatsRenderer string   `yaml:"stats_renderer"` // native | chromium
	CORSOrigins   []string `yaml:"cors_origins"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Port:               "8080",
		Environment:        "development",
		LogLevel:           "info",
		StoreDriver:        DriverSQLite,
		SQLitePath:         "events.db",
		MongoDBDatabase:    "mycalendar",
		Timezone:           "Australia/Sydney",
		WeatherAPIURL:      "http://www.7timer.info/bin/api.pl",
		HolidayAPIURL:      "https://date.nager.at/api/v2/publicholidays",
		HolidayRefreshCron: "0 3 * * *",
		ExternalTimeout:    5 * time.Second,
		StatsRenderer:      "native",
		CORSOrigins:        []string{"http://localhost:3000"},
	}
}

// LoadConfig builds the configuration from defaults, then the YAML file at
// path if one is given and exists, then environment variables.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Port = getEnvWithDefault("PORT", c.Port)
	c.Environment = getEnvWithDefault("ENVIRONMENT", c.Environment)
	c.LogLevel = getEnvWithDefault("LOG_LEVEL", c.LogLevel)
	c.StoreDriver = getEnvWithDefault("STORE_DRIVER", c.StoreDriver)
	c.SQLitePath = getEnvWithDefault("SQLITE_PATH", c.SQLitePath)
	c.MongoDBURI = getEnvWithDefault("MONGODB_URI", c.MongoDBURI)
	c.MongoDBPassword = getEnvWithDefault("MONGODB_PASSWORD", c.MongoDBPassword)
	c.MongoDBDatabase = getEnvWithDefault("MONGODB_DATABASE", c.MongoDBDatabase)
	c.Timezone = getEnvWithDefault("TIMEZONE", c.Timezone)
	c.GeorefPath = getEnvWithDefault("GEOREF_PATH", c.GeorefPath)
	c.CitiesPath = getEnvWithDefault("CITIES_PATH", c.CitiesPath)
	c.WeatherAPIURL = getEnvWithDefault("WEATHER_API_URL", c.WeatherAPIURL)
	c.HolidayAPIURL = getEnvWithDefault("HOLIDAY_API_URL", c.HolidayAPIURL)
	c.HolidayRefreshCron = getEnvWithDefault("HOLIDAY_REFRESH_CRON", c.HolidayRefreshCron)
	c.StatsRenderer = getEnvWithDefault("STATS_RENDERER", c.StatsRenderer)

	if v := os.Getenv("EXTERNAL_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("EXTERNAL_TIMEOUT: %w", err)
		}
		c.ExternalTimeout = d
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORSOrigins = origins
	}
	return nil
}

// Validate checks the settings that would otherwise fail late at startup.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite store")
		}
	case DriverMongo:
		if c.MongoDBURI == "" {
			return fmt.Errorf("MONGODB_URI is required for the mongo store")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (expected sqlite, mongo or memory)", c.StoreDriver)
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	if c.ExternalTimeout <= 0 {
		return fmt.Errorf("EXTERNAL_TIMEOUT must be positive")
	}
	if len(c.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must name at least one origin")
	}
	switch c.StatsRenderer {
	case "native", "chromium":
	default:
		return fmt.Errorf("unknown STATS_RENDERER %q (expected native or chromium)", c.StatsRenderer)
	}
	return nil
}

// Location loads Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
