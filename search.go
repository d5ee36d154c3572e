package main

import (
	"github.com/spf13/cobra"
)

// newSearchCmd runs the provider-native search: Notion workspace
// full-text search, Graph drive search, or a Drive name-contains query.
func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <provider> <query>",
		Short: "Search resources with the provider's native matching",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := buildLogger()

			p, err := buildProvider(args[0], defaultHTTPClient(), logger, false)
			if err != nil {
				return err
			}

			return printResources(cmd.Context(), p.searcher.Search(cmd.Context(), args[1]))
		},
	}
}
