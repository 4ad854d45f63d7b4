package config

import (
	"fmt"
	"os"
)

const (
	EnvAdminUsername = "GALLERY_ADMIN_USERNAME"
	EnvAdminPassword = "GALLERY_ADMIN_PASSWORD"
)

// AdminConfig holds the credentials the seed step creates the admin
// account with. Seeding skips the account when Password is empty.
type AdminConfig struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

func (c *AdminConfig) Finalize() error {
	if c.Username == "" {
		c.Username = "admin"
	}
	if v := os.Getenv(EnvAdminUsername); v != "" {
		c.Username = v
	}
	if v := os.Getenv(EnvAdminPassword); v != "" {
		c.Password = v
	}

	if c.Password != "" && len(c.Password) > 72 {
		return fmt.Errorf("password longer than 72 bytes")
	}
	return nil
}

func (c *AdminConfig) Merge(overlay *AdminConfig) {
	if overlay.Username != "" {
		c.Username = overlay.Username
	}
	if overlay.Password != "" {
		c.Password = overlay.Password
	}
}
