// Package config loads application settings from embedded defaults, an
// optional TOML file, an optional .env file and the process environment, in
// that order of precedence.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var defaultConfig []byte

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Media    MediaConfig    `toml:"media"`
	Session  SessionConfig  `toml:"session"`
	CORS     CORSConfig     `toml:"cors"`
	Logging  LoggingConfig  `toml:"logging"`
}

// DatabaseConfig selects the storage backend.
type DatabaseConfig struct {
	Driver string `toml:"driver"`
	URL    string `toml:"url"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `toml:"host"`
	Port            int           `toml:"port"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	IdleTimeout     time.Duration `toml:"idle_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// MediaConfig controls where uploads are stored and served from.
type MediaConfig struct {
	Root        string `toml:"root"`
	URL         string `toml:"url"`
	MaxUploadMB int64  `toml:"max_upload_mb"`
}

// SessionConfig holds the secret used to verify session tokens.
type SessionConfig struct {
	Secret string `toml:"secret"`
}

// CORSConfig holds the single origin allowed to call the admin API.
type CORSConfig struct {
	AllowedOrigin string `toml:"allowed_origin"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the embedded defaults.
func Default() Config {
	var cfg Config
	if _, err := toml.Decode(string(defaultConfig), &cfg); err != nil {
		panic(fmt.Sprintf("parse embedded default config: %v", err))
	}
	return cfg
}

// Load builds the configuration. path names an optional TOML file; envFile
// names an optional dotenv file whose values never replace variables that are
// already set. Missing files are skipped.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Server.Host, "HOST")
	setString(&c.Media.Root, "MEDIA_ROOT")
	setString(&c.Media.URL, "MEDIA_URL")
	setString(&c.Session.Secret, "SESSION_SECRET")
	setString(&c.CORS.AllowedOrigin, "CORS_ALLOWED_ORIGIN")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("MAX_UPLOAD_MB"); v != "" {
		mb, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_UPLOAD_MB: %w", err)
		}
		c.Media.MaxUploadMB = mb
	}

	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Format = strings.ToLower(c.Logging.Format)
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = strings.TrimSpace(v)
	}
}

// Validate checks that all required configuration is present and valid.
func (c Config) Validate() error {
	var problems []string

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.URL == "" {
			problems = append(problems, "DATABASE_URL is required for the postgres driver")
		}
	case DriverMemory:
	default:
		problems = append(problems, "DB_DRIVER must be one of: postgres, memory")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, "PORT must be between 1 and 65535")
	}

	if strings.TrimSpace(c.Media.Root) == "" {
		problems = append(problems, "MEDIA_ROOT is required")
	}
	if !strings.HasPrefix(c.Media.URL, "/") {
		problems = append(problems, "MEDIA_URL must start with /")
	}
	if c.Media.MaxUploadMB < 1 {
		problems = append(problems, "MAX_UPLOAD_MB must be positive")
	}

	if c.Session.Secret != "" && len(c.Session.Secret) < 16 {
		problems = append(problems, "SESSION_SECRET must be at least 16 characters")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		problems = append(problems, "LOG_LEVEL must be one of: debug, info, warn, error")
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		problems = append(problems, "LOG_FORMAT must be one of: json, text")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// MaxUploadBytes converts the upload limit to bytes.
func (c Config) MaxUploadBytes() int64 {
	return c.Media.MaxUploadMB << 20
}
