package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/clipline/mediasource-go/internal/page"
	"github.com/clipline/mediasource-go/internal/source"
)

// newLsCmd lists the provider's configured scope: the Notion database,
// or the configured drive folder. An optional scope argument overrides
// the configured database ID, folder path, or folder ID.
func newLsCmd() *cobra.Command {
	var (
		flagFilter string
		flagSorts  string
		flagWhere  string
	)

	cmd := &cobra.Command{
		Use:   "ls <provider> [scope]",
		Short: "List resources in the configured database or folder",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := buildLogger()

			p, err := buildProvider(args[0], defaultHTTPClient(), logger, false)
			if err != nil {
				return err
			}

			opts := listOptions{clause: flagWhere}
			if len(args) == 2 {
				opts.scope = args[1]
			}

			if flagFilter != "" {
				opts.filter = json.RawMessage(flagFilter)
			}

			if flagSorts != "" {
				opts.sorts = json.RawMessage(flagSorts)
			}

			it, err := p.list(cmd.Context(), opts)
			if err != nil {
				return err
			}

			return printResources(cmd.Context(), it)
		},
	}

	cmd.Flags().StringVar(&flagFilter, "filter", "", "Notion filter object (raw JSON)")
	cmd.Flags().StringVar(&flagSorts, "sorts", "", "Notion sorts array (raw JSON)")
	cmd.Flags().StringVar(&flagWhere, "where", "", "Google Drive query clause ANDed onto the folder scope")

	return cmd
}

// printResources drains an iterator to stdout in table or JSON form.
// Items yielded before a mid-sequence failure are still printed; the
// failure is then returned.
func printResources(ctx context.Context, it *page.Iterator[source.Resource]) error {
	resources, err := it.Collect(ctx)

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if encErr := enc.Encode(resourcesJSON(resources)); encErr != nil {
			return encErr
		}

		return err
	}

	headers := []string{"NAME", "SIZE", "MODIFIED", "ID"}
	rows := make([][]string, 0, len(resources))

	for _, r := range resources {
		size := ""
		if r.Size > 0 {
			size = formatSize(r.Size)
		}

		modified := ""
		if !r.ModifiedAt.IsZero() {
			modified = formatTime(r.ModifiedAt)
		}

		rows = append(rows, []string{r.Name, size, modified, r.ID})
	}

	printTable(os.Stdout, headers, rows)

	return err
}

// resourceJSON is the stable JSON projection of a resource for --json
// output. Download handles are deliberately omitted — pre-authenticated
// URLs must not leak into logs or scripts.
type resourceJSON struct {
	ID         string                  `json:"id"`
	Name       string                  `json:"name"`
	Size       int64                   `json:"size,omitempty"`
	MimeType   string                  `json:"mime_type,omitempty"`
	CreatedAt  string                  `json:"created_at,omitempty"`
	ModifiedAt string                  `json:"modified_at,omitempty"`
	Properties map[string]source.Value `json:"properties,omitempty"`
}

func resourcesJSON(resources []source.Resource) []resourceJSON {
	out := make([]resourceJSON, 0, len(resources))

	for _, r := range resources {
		rj := resourceJSON{
			ID:         r.ID,
			Name:       r.Name,
			Size:       r.Size,
			MimeType:   r.MimeType,
			Properties: r.Properties,
		}

		if !r.CreatedAt.IsZero() {
			rj.CreatedAt = r.CreatedAt.Format("2006-01-02T15:04:05Z07:00")
		}

		if !r.ModifiedAt.IsZero() {
			rj.ModifiedAt = r.ModifiedAt.Format("2006-01-02T15:04:05Z07:00")
		}

		out = append(out, rj)
	}

	return out
}
