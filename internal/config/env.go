package config

import "os"

// Environment variable names. The provider variables match the .env
// surface the system has always used; MEDIASOURCE_CONFIG overrides the
// config file location.
const (
	EnvConfig = "MEDIASOURCE_CONFIG"

	EnvNotionAPIKey     = "NOTION_API_KEY"
	EnvNotionDatabaseID = "NOTION_DATABASE_ID"

	EnvOneDriveClientID     = "ONEDRIVE_CLIENT_ID"
	EnvOneDriveClientSecret = "ONEDRIVE_CLIENT_SECRET"
	EnvOneDriveTenantID     = "ONEDRIVE_TENANT_ID"
	EnvOneDriveFolderPath   = "ONEDRIVE_FOLDER_PATH"

	EnvGoogleDriveCredentialsPath = "GOOGLE_DRIVE_CREDENTIALS_PATH"
	EnvGoogleDriveFolderID        = "GOOGLE_DRIVE_FOLDER_ID"
)

// applyEnv overlays environment variables onto cfg. Environment wins
// over the config file; CLI flags (applied by the caller) win over both.
func applyEnv(cfg *Config) {
	setIfPresent(EnvNotionAPIKey, &cfg.Notion.APIKey)
	setIfPresent(EnvNotionDatabaseID, &cfg.Notion.DatabaseID)

	setIfPresent(EnvOneDriveClientID, &cfg.OneDrive.ClientID)
	setIfPresent(EnvOneDriveClientSecret, &cfg.OneDrive.ClientSecret)
	setIfPresent(EnvOneDriveTenantID, &cfg.OneDrive.TenantID)
	setIfPresent(EnvOneDriveFolderPath, &cfg.OneDrive.FolderPath)

	setIfPresent(EnvGoogleDriveCredentialsPath, &cfg.GoogleDrive.CredentialsPath)
	setIfPresent(EnvGoogleDriveFolderID, &cfg.GoogleDrive.FolderID)
}

func setIfPresent(name string, dst *string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}
