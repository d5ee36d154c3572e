package main

import (
	"github.com/spf13/cobra"
)

// newLoginCmd runs the interactive browser consent flow for an OAuth
// provider and caches the resulting token.
func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <provider>",
		Short: "Authenticate an OAuth provider interactively",
		Long:  "Opens the default browser for consent and caches the resulting token.\nProviders: onedrive, googledrive. Notion uses a static API key and needs no login.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := buildLogger()

			session, err := oauthSession(args[0], logger)
			if err != nil {
				return err
			}

			if _, err := session.Login(cmd.Context()); err != nil {
				return err
			}

			statusf(flagQuiet, "Logged in to %s.\n", args[0])

			return nil
		},
	}
}
