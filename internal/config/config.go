// Package config loads the gallery configuration from TOML files, a .env
// file and GALLERY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/gallery/pkg/database"
	"github.com/JaimeStill/gallery/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"
	DotEnvFile           = ".env"

	EnvGalleryEnv             = "GALLERY_ENV"
	EnvGalleryShutdownTimeout = "GALLERY_SHUTDOWN_TIMEOUT"
	EnvGalleryVersion         = "GALLERY_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "GALLERY_DB_HOST",
	Port:            "GALLERY_DB_PORT",
	Name:            "GALLERY_DB_NAME",
	User:            "GALLERY_DB_USER",
	Password:        "GALLERY_DB_PASSWORD",
	SSLMode:         "GALLERY_DB_SSL_MODE",
	MaxOpenConns:    "GALLERY_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "GALLERY_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "GALLERY_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "GALLERY_DB_CONN_TIMEOUT",
}

var blobEnv = &storage.Env{
	Enabled:          "GALLERY_BLOB_ENABLED",
	ContainerName:    "GALLERY_BLOB_CONTAINER_NAME",
	ConnectionString: "GALLERY_BLOB_CONNECTION_STRING",
	MaxListSize:      "GALLERY_BLOB_MAX_LIST_SIZE",
}

// Config is the root configuration for the gallery service and CLI.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Storage         StorageConfig   `toml:"storage"`
	Database        database.Config `toml:"database"`
	Blob            storage.Config  `toml:"blob"`
	API             APIConfig       `toml:"api"`
	Admin           AdminConfig     `toml:"admin"`
	Client          ClientConfig    `toml:"client"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the GALLERY_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvGalleryEnv); env != "" {
		return env
	}
	return "local"
}

func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads .env (without overriding variables already set), the base
// config if present and any GALLERY_ENV overlay, then finalizes all values.
// With no files present, defaults and environment variables provide
// everything.
func Load() (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}

	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Storage.Merge(&overlay.Storage)
	c.Database.Merge(&overlay.Database)
	c.Blob.Merge(&overlay.Blob)
	c.API.Merge(&overlay.API)
	c.Admin.Merge(&overlay.Admin)
	c.Client.Merge(&overlay.Client)
}

// Finalize applies defaults, environment overrides and validation. The
// database section is only validated in server mode.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Storage.Finalize(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if c.Storage.Server() {
		if err := c.Database.Finalize(databaseEnv); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if err := c.Blob.Finalize(blobEnv); err != nil {
		return fmt.Errorf("blob: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Admin.Finalize(); err != nil {
		return fmt.Errorf("admin: %w", err)
	}
	if err := c.Client.Finalize(); err != nil {
		return fmt.Errorf("client: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvGalleryShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvGalleryVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvGalleryEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
