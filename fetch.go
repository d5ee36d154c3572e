package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/clipline/mediasource-go/internal/source"
)

// fetchConcurrency bounds parallel downloads in bulk fetch.
const fetchConcurrency = 4

// videoExtensions are the file extensions treated as video content when
// the provider reports no MIME type.
var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
	".webm": true,
	".m4v":  true,
	".wmv":  true,
	".flv":  true,
	".mpg":  true,
	".mpeg": true,
}

// newGetCmd downloads one resource's content. The argument is the
// provider-native file ID, or a direct download URL for providers that
// hand them out.
func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <provider> <id-or-url> [dest]",
		Short: "Download one resource to a local file",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := buildLogger()

			p, err := buildProvider(args[0], downloadHTTPClient(), logger, false)
			if err != nil {
				return err
			}

			handle := source.Handle{FileID: args[1]}
			if strings.HasPrefix(args[1], "https://") || strings.HasPrefix(args[1], "http://") {
				handle = source.Handle{URL: args[1]}
			}

			dest := ""
			if len(args) == 3 {
				dest = args[2]
			} else {
				dest = destFromHandle(handle)
			}

			if dest == "" {
				return fmt.Errorf("cannot derive a destination file name; pass one explicitly")
			}

			n, err := p.downloader.Download(cmd.Context(), handle, dest)
			if err != nil {
				// Interactive use: don't leave a partial file behind.
				_ = os.Remove(dest)

				return err
			}

			statusf(flagQuiet, "Downloaded %s (%s)\n", dest, formatSize(n))

			return nil
		},
	}
}

// newFetchCmd downloads every video file in the provider's configured
// folder into a local directory, a bounded number at a time.
func newFetchCmd() *cobra.Command {
	var flagAll bool

	cmd := &cobra.Command{
		Use:   "fetch <provider> [dest-dir]",
		Short: "Download all video files from the configured folder",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := buildLogger()

			p, err := buildProvider(args[0], downloadHTTPClient(), logger, false)
			if err != nil {
				return err
			}

			if p.downloader == nil {
				return fmt.Errorf("%s resources cannot be bulk downloaded", args[0])
			}

			destDir := "."
			if len(args) == 2 {
				destDir = args[1]
			}

			resources, err := p.lister.List(cmd.Context()).Collect(cmd.Context())
			if err != nil {
				return err
			}

			if !flagAll {
				resources = filterVideos(resources)
			}

			return fetchAll(cmd.Context(), p, resources, destDir)
		},
	}

	cmd.Flags().BoolVar(&flagAll, "all", false, "download every file, not just videos")

	return cmd
}

// filterVideos keeps resources that look like video content, by MIME
// type when present, else by file extension.
func filterVideos(resources []source.Resource) []source.Resource {
	out := make([]source.Resource, 0, len(resources))

	for _, r := range resources {
		switch {
		case strings.HasPrefix(r.MimeType, "video/"):
			out = append(out, r)
		case r.MimeType == "" && videoExtensions[strings.ToLower(filepath.Ext(r.Name))]:
			out = append(out, r)
		}
	}

	return out
}

// fetchAll downloads the given resources into destDir concurrently.
// The first failure cancels the remaining downloads; completed files
// stay on disk.
func fetchAll(ctx context.Context, p *provider, resources []source.Resource, destDir string) error {
	if len(resources) == 0 {
		statusf(flagQuiet, "Nothing to download.\n")

		return nil
	}

	progress := !flagQuiet && isatty.IsTerminal(os.Stderr.Fd())

	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)

	for _, r := range resources {
		r := r
		g.Go(func() error {
			dest := filepath.Join(destDir, safeFileName(r.Name))

			n, err := p.downloader.Download(gctx, r.Handle, dest)
			if err != nil {
				return fmt.Errorf("downloading %s: %w", r.Name, err)
			}

			completed := done.Add(1)
			if progress {
				fmt.Fprintf(os.Stderr, "[%d/%d] %s (%s)\n", completed, len(resources), r.Name, formatSize(n))
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	statusf(flagQuiet, "Downloaded %d file(s) to %s\n", len(resources), destDir)

	return nil
}

// safeFileName normalizes a remote name for the local filesystem: NFC
// Unicode normalization (macOS providers hand out NFD names) and path
// separator removal.
func safeFileName(name string) string {
	name = norm.NFC.String(name)
	name = strings.ReplaceAll(name, "/", "_")

	return strings.ReplaceAll(name, string(os.PathSeparator), "_")
}

// destFromHandle derives a local file name from a download handle when
// the caller did not pass one.
func destFromHandle(h source.Handle) string {
	if h.FileID != "" {
		return h.FileID
	}

	if h.URL != "" {
		if base := path.Base(strings.SplitN(h.URL, "?", 2)[0]); base != "." && base != "/" {
			return base
		}
	}

	return ""
}
