package config

import (
	"os"
	"strings"

	"github.com/google/uuid"
)

// notionIDLength is the length of a Notion database ID with dashes
// stripped (32 hex characters).
const notionIDLength = 32

// NotionCredential is the validated bundle for the Notion client.
type NotionCredential struct {
	APIKey     string
	DatabaseID string
}

// OneDriveCredential is the validated confidential-client bundle for
// the Microsoft Graph client.
type OneDriveCredential struct {
	ClientID     string
	ClientSecret string
	TenantID     string
	FolderPath   string
}

// GoogleDriveCredential is the validated bundle for the Google Drive
// client. ClientSecretJSON holds the raw contents of the installed-app
// credentials file.
type GoogleDriveCredential struct {
	ClientSecretJSON []byte
	FolderID         string
}

// NotionCredential validates and returns the Notion bundle.
func (c *Config) NotionCredential() (NotionCredential, error) {
	if c.Notion.APIKey == "" {
		return NotionCredential{}, &Error{Provider: ProviderNotion, Field: "api_key", Reason: "not set"}
	}

	if strings.ContainsAny(c.Notion.APIKey, " \t\n") {
		return NotionCredential{}, &Error{Provider: ProviderNotion, Field: "api_key", Reason: "contains whitespace"}
	}

	id := strings.ReplaceAll(c.Notion.DatabaseID, "-", "")
	if id == "" {
		return NotionCredential{}, &Error{Provider: ProviderNotion, Field: "database_id", Reason: "not set"}
	}

	if len(id) != notionIDLength || !isHex(id) {
		return NotionCredential{}, &Error{Provider: ProviderNotion, Field: "database_id", Reason: "must be 32 hex characters"}
	}

	return NotionCredential{APIKey: c.Notion.APIKey, DatabaseID: id}, nil
}

// OneDriveCredential validates and returns the OneDrive bundle.
// Client and tenant identifiers are Azure AD GUIDs.
func (c *Config) OneDriveCredential() (OneDriveCredential, error) {
	if c.OneDrive.ClientID == "" {
		return OneDriveCredential{}, &Error{Provider: ProviderOneDrive, Field: "client_id", Reason: "not set"}
	}

	if _, err := uuid.Parse(c.OneDrive.ClientID); err != nil {
		return OneDriveCredential{}, &Error{Provider: ProviderOneDrive, Field: "client_id", Reason: "not a valid GUID"}
	}

	if c.OneDrive.ClientSecret == "" {
		return OneDriveCredential{}, &Error{Provider: ProviderOneDrive, Field: "client_secret", Reason: "not set"}
	}

	if c.OneDrive.TenantID == "" {
		return OneDriveCredential{}, &Error{Provider: ProviderOneDrive, Field: "tenant_id", Reason: "not set"}
	}

	// Tenant may be a GUID or a named tenant like "common".
	if strings.ContainsAny(c.OneDrive.TenantID, " /\\") {
		return OneDriveCredential{}, &Error{Provider: ProviderOneDrive, Field: "tenant_id", Reason: "malformed"}
	}

	return OneDriveCredential{
		ClientID:     c.OneDrive.ClientID,
		ClientSecret: c.OneDrive.ClientSecret,
		TenantID:     c.OneDrive.TenantID,
		FolderPath:   c.OneDrive.FolderPath,
	}, nil
}

// GoogleDriveCredential validates and returns the Google Drive bundle,
// reading the client secrets file. The file must exist and be readable
// at load time — failing here beats failing mid-listing.
func (c *Config) GoogleDriveCredential() (GoogleDriveCredential, error) {
	if c.GoogleDrive.FolderID == "" {
		return GoogleDriveCredential{}, &Error{Provider: ProviderGoogleDrive, Field: "folder_id", Reason: "not set"}
	}

	if c.GoogleDrive.CredentialsPath == "" {
		return GoogleDriveCredential{}, &Error{Provider: ProviderGoogleDrive, Field: "credentials_path", Reason: "not set"}
	}

	data, err := os.ReadFile(c.GoogleDrive.CredentialsPath)
	if err != nil {
		return GoogleDriveCredential{}, &Error{
			Provider: ProviderGoogleDrive,
			Field:    "credentials_path",
			Reason:   "cannot read " + c.GoogleDrive.CredentialsPath,
		}
	}

	return GoogleDriveCredential{ClientSecretJSON: data, FolderID: c.GoogleDrive.FolderID}, nil
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}

	return true
}
