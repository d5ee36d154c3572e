package rest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
)

// downloadBufSize bounds the per-chunk memory for streaming downloads.
// The full payload is never materialized in memory.
const downloadBufSize = 1 << 20 // 1 MiB

// maxErrorBody caps how much of a failed download response is read for
// the error message.
const maxErrorBody = 8 << 10

// DownloadError reports a failed or incomplete download.
type DownloadError struct {
	Provider   string
	Dest       string
	StatusCode int   // 0 when the request itself failed
	Written    int64 // bytes written before the failure
	Err        error
}

func (e *DownloadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: download to %s failed: HTTP %d: %v", e.Provider, e.Dest, e.StatusCode, e.Err)
	}

	return fmt.Sprintf("%s: download to %s failed after %d bytes: %v", e.Provider, e.Dest, e.Written, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// ErrShortBody is wrapped by DownloadError when the stream ends before
// the announced Content-Length.
var ErrShortBody = fmt.Errorf("rest: response body shorter than content-length")

// DownloadToFile streams the body at rawURL to destPath in bounded
// chunks and returns the bytes written. authorized controls whether the
// client's bearer token is attached — pre-authenticated URLs (Graph
// download URLs, Notion's S3 links) must be fetched without it.
//
// The destination file is created only after a 2xx response, so a
// failed request (404 and the like) leaves no file behind. A failure
// mid-stream leaves the partial file in place — cleanup is the caller's
// responsibility, and a retry restarts from byte zero. The raw URL is
// never logged; pre-authenticated URLs embed credentials.
func (c *Client) DownloadToFile(ctx context.Context, rawURL string, authorized bool, destPath string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return 0, &DownloadError{Provider: c.provider, Dest: destPath, Err: err}
	}

	req.Header.Set("User-Agent", userAgent)

	if authorized {
		if c.token == nil {
			return 0, &DownloadError{Provider: c.provider, Dest: destPath, Err: fmt.Errorf("no token source for authorized download")}
		}

		tok, tokErr := c.token.Token(ctx)
		if tokErr != nil {
			return 0, &DownloadError{Provider: c.provider, Dest: destPath, Err: tokErr}
		}

		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &DownloadError{Provider: c.provider, Dest: destPath, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return 0, &DownloadError{
			Provider:   c.provider,
			Dest:       destPath,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %s", classifyStatus(resp.StatusCode), string(body)),
		}
	}

	if dir := filepath.Dir(destPath); dir != "." {
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			return 0, &DownloadError{Provider: c.provider, Dest: destPath, Err: mkErr}
		}
	}

	f, err := os.Create(destPath)
	if err != nil {
		return 0, &DownloadError{Provider: c.provider, Dest: destPath, Err: err}
	}

	buf := make([]byte, downloadBufSize)

	n, copyErr := io.CopyBuffer(f, resp.Body, buf)
	closeErr := f.Close()

	if copyErr != nil {
		c.logger.Error("streaming download failed",
			slog.String("provider", c.provider),
			slog.String("dest", destPath),
			slog.Int64("bytes_before_error", n),
			slog.String("error", copyErr.Error()),
		)

		return n, &DownloadError{Provider: c.provider, Dest: destPath, Written: n, Err: copyErr}
	}

	if closeErr != nil {
		return n, &DownloadError{Provider: c.provider, Dest: destPath, Written: n, Err: closeErr}
	}

	if resp.ContentLength >= 0 && n != resp.ContentLength {
		return n, &DownloadError{
			Provider: c.provider,
			Dest:     destPath,
			Written:  n,
			Err:      fmt.Errorf("%w: got %d of %d bytes", ErrShortBody, n, resp.ContentLength),
		}
	}

	c.logger.Debug("download complete",
		slog.String("provider", c.provider),
		slog.String("dest", destPath),
		slog.Int64("bytes_written", n),
	)

	return n, nil
}
