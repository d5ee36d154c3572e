// Package config is the credential store: it loads provider credentials
// and identifiers from a TOML config file, a .env file, and environment
// variables, and exposes validated, typed credential bundles per
// provider. Pure configuration reads — no network I/O ever happens
// here. Credential bundles are immutable once loaded and passed by
// value into the client constructors; there is no process-wide mutable
// settings object.
package config

import "fmt"

// Provider names used in errors, token cache file names, and the CLI.
const (
	ProviderNotion      = "notion"
	ProviderOneDrive    = "onedrive"
	ProviderGoogleDrive = "googledrive"
)

// Error is a configuration failure: a required field is missing,
// malformed, or points at an unreadable artifact. Fatal — surfaced
// immediately, never retried.
type Error struct {
	Provider string
	Field    string
	Reason   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %s: %s", e.Provider, e.Field, e.Reason)
}

// Config is the full on-disk configuration. Section and key names
// mirror the environment variable surface (NOTION_API_KEY and friends).
type Config struct {
	LogLevel string `toml:"log_level"`
	CacheDir string `toml:"cache_dir"` // token cache directory; defaults under the user config dir

	Notion      NotionConfig      `toml:"notion"`
	OneDrive    OneDriveConfig    `toml:"onedrive"`
	GoogleDrive GoogleDriveConfig `toml:"googledrive"`
}

// NotionConfig authenticates with a static integration token.
type NotionConfig struct {
	APIKey     string `toml:"api_key"`
	DatabaseID string `toml:"database_id"`
}

// OneDriveConfig is a confidential-client registration: id, secret,
// and tenant. FolderPath scopes listings (e.g. "/Videos").
type OneDriveConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	TenantID     string `toml:"tenant_id"`
	FolderPath   string `toml:"folder_path"`
}

// GoogleDriveConfig points at an installed-app client secrets file
// (the credentials.json downloaded from the Google console) and the
// folder to list.
type GoogleDriveConfig struct {
	CredentialsPath string `toml:"credentials_path"`
	FolderID        string `toml:"folder_id"`
}

// DefaultConfig returns a Config populated with defaults. Credentials
// have no defaults; scope fields do.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		OneDrive: OneDriveConfig{
			FolderPath: "/Videos",
		},
		GoogleDrive: GoogleDriveConfig{
			CredentialsPath: "credentials.json",
		},
	}
}
