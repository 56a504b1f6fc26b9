package config

import (
	"fmt"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"

	"github.com/ovaphlow/pitchfork/service-contact-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-contact-go/pkg/utilities"
)

type Config struct {
	HTTP       HTTPConfig     `yaml:"http"`
	GatewayURL string         `yaml:"gateway_url"`
	Database   DatabaseConfig `yaml:"database"`
	Log        LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Addr    string        `yaml:"addr"`
	Timeout time.Duration `yaml:"timeout"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
	TimeZone string `yaml:"timezone"`
}

type LogConfig struct {
	Level       string        `yaml:"level"`
	Dev         bool          `yaml:"dev"`
	File        string        `yaml:"file"`
	RotateEvery time.Duration `yaml:"rotate_every"`
	MaxAge      time.Duration `yaml:"max_age"`
}

// Load builds the configuration from environment variables and, when path
// (or CONFIG_FILE) names a YAML file, overlays the values it sets.
func Load(path string) (*Config, error) {
	db := database.ConfigFromEnv()
	lg := utilities.ConfigFromEnv()

	timeout := 15 * time.Second
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("HTTP_TIMEOUT: %w", err)
		}
		timeout = d
	}

	cfg := &Config{
		HTTP: HTTPConfig{
			Addr:    getEnv("HTTP_ADDR", "0.0.0.0:8431"),
			Timeout: timeout,
		},
		GatewayURL: getEnv("GATEWAY_URL", "http://localhost:8431"),
		Database: DatabaseConfig{
			Driver:   db.Driver,
			URL:      db.DSN,
			MaxConns: db.MaxConns,
			TimeZone: db.TimeZone,
		},
		Log: LogConfig{
			Level:       lg.Level,
			Dev:         lg.Dev,
			File:        lg.File,
			RotateEvery: lg.RotateEvery,
			MaxAge:      lg.MaxAge,
		},
	}

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.HTTP,
		validation.Field(&c.HTTP.Addr, validation.Required),
		validation.Field(&c.HTTP.Timeout, validation.Required, validation.Min(time.Millisecond)),
	); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	if err := validation.ValidateStruct(&c.Database,
		validation.Field(&c.Database.Driver, validation.Required,
			validation.In(database.DriverMySQL, database.DriverPostgres, database.DriverSQLite)),
		validation.Field(&c.Database.URL, validation.Required),
		validation.Field(&c.Database.MaxConns, validation.Min(1)),
	); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.GatewayURL, validation.Required, is.URL),
	)
}

// DB returns the connection settings for database.Connect.
func (c *Config) DB() database.Config {
	return database.Config{
		Driver:   c.Database.Driver,
		DSN:      c.Database.URL,
		MaxConns: c.Database.MaxConns,
		Timeout:  5 * time.Second,
		TimeZone: c.Database.TimeZone,
	}
}

// Logger returns the settings for utilities.Init.
func (c *Config) Logger() utilities.Config {
	return utilities.Config{
		Level:       c.Log.Level,
		Dev:         c.Log.Dev,
		File:        c.Log.File,
		RotateEvery: c.Log.RotateEvery,
		MaxAge:      c.Log.MaxAge,
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
