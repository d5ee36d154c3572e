package main

import (
	"os"

	"github.com/spf13/cobra"
)

// redacted replaces secret material in display output.
const redacted = "(set)"

// newConfigCmd groups configuration inspection subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

// newConfigShowCmd prints the effective configuration with secrets
// redacted. Useful for debugging the override chain (file, .env,
// environment).
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg := resolvedCfg

			rows := [][]string{
				{"log_level", cfg.LogLevel},
				{"cache_dir", displayOr(cfg.CacheDir, "(default)")},
				{"notion.api_key", secretStatus(cfg.Notion.APIKey)},
				{"notion.database_id", cfg.Notion.DatabaseID},
				{"onedrive.client_id", cfg.OneDrive.ClientID},
				{"onedrive.client_secret", secretStatus(cfg.OneDrive.ClientSecret)},
				{"onedrive.tenant_id", cfg.OneDrive.TenantID},
				{"onedrive.folder_path", cfg.OneDrive.FolderPath},
				{"googledrive.credentials_path", cfg.GoogleDrive.CredentialsPath},
				{"googledrive.folder_id", cfg.GoogleDrive.FolderID},
			}

			printTable(os.Stdout, []string{"KEY", "VALUE"}, rows)

			return nil
		},
	}
}

func secretStatus(v string) string {
	if v == "" {
		return "(not set)"
	}

	return redacted
}

func displayOr(v, fallback string) string {
	if v == "" {
		return fallback
	}

	return v
}
