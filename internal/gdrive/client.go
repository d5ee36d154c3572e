// Package gdrive lists and downloads Google Drive files through the
// Drive v3 REST API, normalized into source.Resource records.
package gdrive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/clipline/mediasource-go/internal/page"
	"github.com/clipline/mediasource-go/internal/rest"
	"github.com/clipline/mediasource-go/internal/source"
)

// DefaultBaseURL is the production Drive v3 API base URL. Injectable so
// tests can point the client at a local server.
const DefaultBaseURL = "https://www.googleapis.com/drive/v3"

// listPageSize is the pageSize for file listing requests.
const listPageSize = 100

// fileFields is the partial-response selector for listings. Asking for
// exactly what we use keeps response pages small.
const fileFields = "nextPageToken, files(id, name, mimeType, size, createdTime, modifiedTime)"

// Client reads one Google Drive folder. The token source is an OAuth
// session owned by the caller.
type Client struct {
	rc       *rest.Client
	folderID string
	logger   *slog.Logger
}

// NewClient creates a Drive client rooted at folderID.
func NewClient(baseURL string, token rest.TokenSource, folderID string, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		rc:       rest.NewClient("googledrive", baseURL, httpClient, token, logger),
		folderID: folderID,
		logger:   logger,
	}
}

// driveFile mirrors the Drive v3 file JSON. Size arrives as a decimal
// string, not a number.
type driveFile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	Size         string `json:"size"`
	CreatedTime  string `json:"createdTime"`
	ModifiedTime string `json:"modifiedTime"`
}

type fileListResponse struct {
	Files         []driveFile `json:"files"`
	NextPageToken string      `json:"nextPageToken"`
}

// List lazily yields the files in the client's configured folder.
func (c *Client) List(ctx context.Context) *page.Iterator[source.Resource] {
	return c.ListFolder(ctx, c.folderID, "")
}

// ListFolder lazily yields the files directly under folderID. extraQuery
// is an optional Drive query clause ANDed onto the folder scope, in the
// provider's native grammar (e.g. "mimeType contains 'video/'").
// Continuation uses the opaque nextPageToken as the cursor.
func (c *Client) ListFolder(_ context.Context, folderID, extraQuery string) *page.Iterator[source.Resource] {
	q := fmt.Sprintf("'%s' in parents and trashed=false", escapeQueryLiteral(folderID))
	if extraQuery != "" {
		q += " and " + extraQuery
	}

	return c.listQuery(q)
}

// Search lazily yields non-trashed files whose name contains the query,
// anywhere the authorized user can see.
func (c *Client) Search(_ context.Context, query string) *page.Iterator[source.Resource] {
	q := fmt.Sprintf("name contains '%s' and trashed=false", escapeQueryLiteral(query))

	return c.listQuery(q)
}

func (c *Client) listQuery(q string) *page.Iterator[source.Resource] {
	return page.New(func(ctx context.Context, cursor string) ([]source.Resource, string, error) {
		params := url.Values{}
		params.Set("q", q)
		params.Set("fields", fileFields)
		params.Set("pageSize", strconv.Itoa(listPageSize))

		if cursor != "" {
			params.Set("pageToken", cursor)
		}

		resp, err := c.rc.Do(ctx, http.MethodGet, "/files?"+params.Encode(), nil)
		if err != nil {
			return nil, "", err
		}
		defer resp.Body.Close()

		var fl fileListResponse
		if err := json.NewDecoder(resp.Body).Decode(&fl); err != nil {
			return nil, "", fmt.Errorf("googledrive: decoding file list: %w", err)
		}

		resources := make([]source.Resource, 0, len(fl.Files))
		for i := range fl.Files {
			resources = append(resources, fl.Files[i].toResource(c.logger))
		}

		c.logger.Debug("fetched file page",
			slog.String("provider", "googledrive"),
			slog.Int("count", len(resources)),
			slog.Bool("has_more", fl.NextPageToken != ""),
		)

		return resources, fl.NextPageToken, nil
	})
}

// GetFile fetches one file's metadata by ID.
func (c *Client) GetFile(ctx context.Context, fileID string) (source.Resource, error) {
	params := url.Values{}
	params.Set("fields", "id, name, mimeType, size, createdTime, modifiedTime")

	resp, err := c.rc.Do(ctx, http.MethodGet, "/files/"+url.PathEscape(fileID)+"?"+params.Encode(), nil)
	if err != nil {
		return source.Resource{}, err
	}
	defer resp.Body.Close()

	var f driveFile
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		return source.Resource{}, fmt.Errorf("googledrive: decoding file %s: %w", fileID, err)
	}

	return f.toResource(c.logger), nil
}

// Download streams a file's content to destPath via alt=media. Unlike
// the other providers, Drive media downloads require the bearer token.
func (c *Client) Download(ctx context.Context, h source.Handle, destPath string) (int64, error) {
	if h.FileID == "" {
		return 0, &rest.DownloadError{
			Provider: "googledrive",
			Dest:     destPath,
			Err:      fmt.Errorf("resource has no file ID"),
		}
	}

	mediaURL := c.rc.BaseURL() + "/files/" + url.PathEscape(h.FileID) + "?alt=media"

	return c.rc.DownloadToFile(ctx, mediaURL, true, destPath)
}

// escapeQueryLiteral escapes a string for inclusion in a single-quoted
// Drive query literal.
func escapeQueryLiteral(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)

	return strings.ReplaceAll(s, "'", `\'`)
}

func (f *driveFile) toResource(logger *slog.Logger) source.Resource {
	size := int64(0)

	if f.Size != "" {
		parsed, err := strconv.ParseInt(f.Size, 10, 64)
		if err != nil {
			logger.Warn("unparseable file size", slog.String("file_id", f.ID), slog.String("value", f.Size))
		} else {
			size = parsed
		}
	}

	return source.Resource{
		ID:         f.ID,
		Name:       f.Name,
		Size:       size,
		MimeType:   f.MimeType,
		Handle:     source.Handle{FileID: f.ID},
		CreatedAt:  parseTime(f.CreatedTime),
		ModifiedAt: parseTime(f.ModifiedTime),
	}
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}

	return t
}
