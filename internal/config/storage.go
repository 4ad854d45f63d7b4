package config

import (
	"fmt"
	"os"
	"strings"
)

const EnvStorageMode = "GALLERY_STORAGE_MODE"

// Mode selects where the catalog lives.
type Mode string

const (
	// ModeLocal keeps the catalog on the client. The HTTP API refuses all
	// requests in this mode.
	ModeLocal Mode = "local"
	// ModeServer serves the catalog from PostgreSQL.
	ModeServer Mode = "server"
)

type StorageConfig struct {
	Mode Mode `toml:"mode"`
}

func (c *StorageConfig) Server() bool {
	return c.Mode == ModeServer
}

func (c *StorageConfig) Finalize() error {
	if c.Mode == "" {
		c.Mode = ModeLocal
	}
	if v := os.Getenv(EnvStorageMode); v != "" {
		c.Mode = Mode(strings.ToLower(v))
	}
	// "d1" names the server store in older deployments
	if c.Mode == "d1" {
		c.Mode = ModeServer
	}

	switch c.Mode {
	case ModeLocal, ModeServer:
		return nil
	default:
		return fmt.Errorf("invalid mode %q: must be local or server", c.Mode)
	}
}

func (c *StorageConfig) Merge(overlay *StorageConfig) {
	if overlay.Mode != "" {
		c.Mode = overlay.Mode
	}
}
