package config

import (
	"os"
	"path/filepath"
)

// appDir is the subdirectory under the user config dir holding the
// config file and token caches.
const appDir = "mediasource"

// DefaultConfigPath returns the default config file location,
// ~/.config/mediasource/config.toml on Linux.
func DefaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(base, appDir, "config.toml")
}

// DefaultCacheDir returns the default token cache directory.
func DefaultCacheDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(base, appDir, "tokens")
}

// TokenPath returns the token cache file for a provider. One opaque
// artifact per provider.
func (c *Config) TokenPath(provider string) string {
	dir := c.CacheDir
	if dir == "" {
		dir = DefaultCacheDir()
	}

	return filepath.Join(dir, provider+"_token.json")
}
