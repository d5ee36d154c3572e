package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"
cache_dir = "/tmp/tokens"

[notion]
api_key = "secret_abc"
database_id = "0123456789abcdef0123456789abcdef"

[onedrive]
client_id = "e68ac5e1-7b5d-4f70-a103-d2d543e4ef22"
client_secret = "shhh"
tenant_id = "common"
folder_path = "/Recordings"

[googledrive]
credentials_path = "/etc/creds.json"
folder_id = "folder-1"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/tokens", cfg.CacheDir)
	assert.Equal(t, "secret_abc", cfg.Notion.APIKey)
	assert.Equal(t, "/Recordings", cfg.OneDrive.FolderPath)
	assert.Equal(t, "folder-1", cfg.GoogleDrive.FolderID)
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	path := writeConfig(t, `
[notion]
api_keyy = "typo"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown keys")
	assert.Contains(t, err.Error(), "notion.api_keyy")
}

func TestLoad_MalformedTOML(t *testing.T) {
	path := writeConfig(t, `log_level = `)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_DefaultsPreservedForUnsetKeys(t *testing.T) {
	path := writeConfig(t, `
[notion]
api_key = "secret_abc"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	// Unset keys keep their defaults.
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "/Videos", cfg.OneDrive.FolderPath)
	assert.Equal(t, "credentials.json", cfg.GoogleDrive.CredentialsPath)
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestResolve_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[notion]
api_key = "from_file"
database_id = "0123456789abcdef0123456789abcdef"
`)

	t.Setenv(EnvNotionAPIKey, "from_env")
	t.Setenv(EnvOneDriveFolderPath, "/FromEnv")

	cfg, err := Resolve(path)
	require.NoError(t, err)

	assert.Equal(t, "from_env", cfg.Notion.APIKey)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", cfg.Notion.DatabaseID)
	assert.Equal(t, "/FromEnv", cfg.OneDrive.FolderPath)
}

func TestResolve_ConfigPathFromEnv(t *testing.T) {
	path := writeConfig(t, `log_level = "warn"`)
	t.Setenv(EnvConfig, path)

	cfg, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestNotionCredential(t *testing.T) {
	cfg := DefaultConfig()

	_, err := cfg.NotionCredential()
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "api_key", cfgErr.Field)

	cfg.Notion.APIKey = "secret with space"
	_, err = cfg.NotionCredential()
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "api_key", cfgErr.Field)

	cfg.Notion.APIKey = "secret_abc"
	_, err = cfg.NotionCredential()
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "database_id", cfgErr.Field)

	cfg.Notion.DatabaseID = "not-a-hex-id"
	_, err = cfg.NotionCredential()
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "database_id", cfgErr.Field)

	// Dashed UUID form is accepted and normalized.
	cfg.Notion.DatabaseID = "01234567-89ab-cdef-0123-456789abcdef"
	cred, err := cfg.NotionCredential()
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", cred.DatabaseID)
}

func TestOneDriveCredential(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OneDrive.ClientID = "not-a-guid"
	cfg.OneDrive.ClientSecret = "s"
	cfg.OneDrive.TenantID = "common"

	_, err := cfg.OneDriveCredential()
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "client_id", cfgErr.Field)

	cfg.OneDrive.ClientID = "e68ac5e1-7b5d-4f70-a103-d2d543e4ef22"
	cred, err := cfg.OneDriveCredential()
	require.NoError(t, err)
	assert.Equal(t, "common", cred.TenantID)
	assert.Equal(t, "/Videos", cred.FolderPath)
}

func TestGoogleDriveCredential(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GoogleDrive.FolderID = "folder-1"
	cfg.GoogleDrive.CredentialsPath = filepath.Join(t.TempDir(), "missing.json")

	_, err := cfg.GoogleDriveCredential()
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "credentials_path", cfgErr.Field)

	credsPath := filepath.Join(t.TempDir(), "creds.json")
	require.NoError(t, os.WriteFile(credsPath, []byte(`{"installed":{}}`), 0o600))

	cfg.GoogleDrive.CredentialsPath = credsPath
	cred, err := cfg.GoogleDriveCredential()
	require.NoError(t, err)
	assert.JSONEq(t, `{"installed":{}}`, string(cred.ClientSecretJSON))
}

func TestTokenPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheDir = "/tmp/cache"

	assert.Equal(t, "/tmp/cache/onedrive_token.json", cfg.TokenPath(ProviderOneDrive))
}
