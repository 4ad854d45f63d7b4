package config

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

const (
	EnvClientRemote      = "GALLERY_CLIENT_REMOTE"
	EnvClientDataDir     = "GALLERY_CLIENT_DATA_DIR"
	EnvClientMergePolicy = "GALLERY_CLIENT_MERGE_POLICY"
	EnvClientTimeout     = "GALLERY_CLIENT_TIMEOUT"
	EnvClientUser        = "GALLERY_CLIENT_USER"
)

// ClientConfig configures the gallery CLI. Remote is the base URL of a
// gallery server including its API prefix; empty means local only.
type ClientConfig struct {
	Remote      string `toml:"remote"`
	DataDir     string `toml:"data_dir"`
	MergePolicy string `toml:"merge_policy"`
	Timeout     string `toml:"timeout"`
	User        string `toml:"user"`
}

func (c *ClientConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

func (c *ClientConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

func (c *ClientConfig) Merge(overlay *ClientConfig) {
	if overlay.Remote != "" {
		c.Remote = overlay.Remote
	}
	if overlay.DataDir != "" {
		c.DataDir = overlay.DataDir
	}
	if overlay.MergePolicy != "" {
		c.MergePolicy = overlay.MergePolicy
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.User != "" {
		c.User = overlay.User
	}
}

func (c *ClientConfig) loadDefaults() {
	if c.DataDir == "" {
		c.DataDir = ".gallery"
	}
	if c.MergePolicy == "" {
		c.MergePolicy = "max"
	}
	if c.Timeout == "" {
		c.Timeout = "10s"
	}
	if c.User == "" {
		c.User = "guest"
	}
}

func (c *ClientConfig) loadEnv() {
	if v := os.Getenv(EnvClientRemote); v != "" {
		c.Remote = v
	}
	if v := os.Getenv(EnvClientDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvClientMergePolicy); v != "" {
		c.MergePolicy = v
	}
	if v := os.Getenv(EnvClientTimeout); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv(EnvClientUser); v != "" {
		c.User = v
	}
}

func (c *ClientConfig) validate() error {
	if c.Remote != "" {
		u, err := url.Parse(c.Remote)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid remote %q", c.Remote)
		}
	}
	switch c.MergePolicy {
	case "max", "remote":
	default:
		return fmt.Errorf("invalid merge_policy %q: must be max or remote", c.MergePolicy)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
