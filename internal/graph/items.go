package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/clipline/mediasource-go/internal/page"
	"github.com/clipline/mediasource-go/internal/source"
)

// listPageSize is the $top value for children requests. 200 is the
// maximum the Graph API allows for drive item collections.
const listPageSize = 200

// ErrNoDownloadURL is returned when a drive item carries no
// pre-authenticated download URL even after a metadata refresh.
var ErrNoDownloadURL = fmt.Errorf("onedrive: item has no download URL")

// driveItemResponse mirrors the Graph API driveItem JSON. Unexported —
// callers receive normalized source.Resource values.
type driveItemResponse struct {
	ID                   string           `json:"id"`
	Name                 string           `json:"name"`
	Size                 int64            `json:"size"`
	CreatedDateTime      string           `json:"createdDateTime"`
	LastModifiedDateTime string           `json:"lastModifiedDateTime"`
	File                 *fileFacet       `json:"file"`
	Folder               *json.RawMessage `json:"folder"`
	DownloadURL          string           `json:"@microsoft.graph.downloadUrl"` //nolint:tagliatelle // Graph API annotation key
}

type fileFacet struct {
	MimeType string `json:"mimeType"`
}

type listResponse struct {
	Value    []driveItemResponse `json:"value"`
	NextLink string              `json:"@odata.nextLink"` //nolint:tagliatelle // OData annotation key
}

// encodePathSegments URL-encodes each segment of a slash-separated path.
// Characters like #, ?, %, and spaces are encoded per-segment so the
// resulting path is safe for interpolation into Graph API URLs.
func encodePathSegments(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}

	return strings.Join(segments, "/")
}

// childrenPath builds the list-children request path for a
// drive-relative folder path. Empty means the drive root.
func childrenPath(folderPath string) string {
	trimmed := strings.Trim(folderPath, "/")
	if trimmed == "" {
		return fmt.Sprintf("/me/drive/root/children?$top=%d", listPageSize)
	}

	return fmt.Sprintf("/me/drive/root:/%s:/children?$top=%d", encodePathSegments(trimmed), listPageSize)
}

// List lazily yields the files in the client's configured folder.
func (c *Client) List(ctx context.Context) *page.Iterator[source.Resource] {
	return c.ListFolder(ctx, c.folderPath)
}

// ListFolder lazily yields the files directly under folderPath. Folders
// are filtered out — only downloadable items surface. Continuation uses
// the full @odata.nextLink URL as the cursor.
func (c *Client) ListFolder(_ context.Context, folderPath string) *page.Iterator[source.Resource] {
	firstPath := childrenPath(folderPath)

	return page.New(func(ctx context.Context, cursor string) ([]source.Resource, string, error) {
		path := firstPath

		if cursor != "" {
			stripped, err := c.rc.StripBase(cursor)
			if err != nil {
				return nil, "", err
			}

			path = stripped
		}

		return c.fetchItems(ctx, path)
	})
}

// Search lazily yields files matching the query anywhere in the drive,
// using the Graph search endpoint's own relevance matching.
func (c *Client) Search(_ context.Context, query string) *page.Iterator[source.Resource] {
	// Single quotes in the q='…' literal are escaped by doubling.
	escaped := strings.ReplaceAll(query, "'", "''")
	firstPath := fmt.Sprintf("/me/drive/root/search(q='%s')?$top=%d", url.PathEscape(escaped), listPageSize)

	return page.New(func(ctx context.Context, cursor string) ([]source.Resource, string, error) {
		path := firstPath

		if cursor != "" {
			stripped, err := c.rc.StripBase(cursor)
			if err != nil {
				return nil, "", err
			}

			path = stripped
		}

		return c.fetchItems(ctx, path)
	})
}

// fetchItems executes one collection request and normalizes the page.
func (c *Client) fetchItems(ctx context.Context, path string) ([]source.Resource, string, error) {
	resp, err := c.rc.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, "", fmt.Errorf("onedrive: decoding item list: %w", err)
	}

	resources := make([]source.Resource, 0, len(lr.Value))

	for i := range lr.Value {
		if lr.Value[i].Folder != nil {
			continue
		}

		resources = append(resources, lr.Value[i].toResource(c.logger))
	}

	c.logger.Debug("fetched item page",
		slog.String("provider", "onedrive"),
		slog.Int("count", len(resources)),
		slog.Bool("has_more", lr.NextLink != ""),
	)

	return resources, lr.NextLink, nil
}

// GetItem fetches one drive item's metadata by ID.
func (c *Client) GetItem(ctx context.Context, itemID string) (source.Resource, error) {
	resp, err := c.rc.Do(ctx, http.MethodGet, "/me/drive/items/"+url.PathEscape(itemID), nil)
	if err != nil {
		return source.Resource{}, err
	}
	defer resp.Body.Close()

	var d driveItemResponse
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return source.Resource{}, fmt.Errorf("onedrive: decoding item %s: %w", itemID, err)
	}

	return d.toResource(c.logger), nil
}

// StatPath fetches one drive item's metadata by drive-relative path.
func (c *Client) StatPath(ctx context.Context, remotePath string) (source.Resource, error) {
	trimmed := strings.Trim(remotePath, "/")

	resp, err := c.rc.Do(ctx, http.MethodGet, "/me/drive/root:/"+encodePathSegments(trimmed), nil)
	if err != nil {
		return source.Resource{}, err
	}
	defer resp.Body.Close()

	var d driveItemResponse
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return source.Resource{}, fmt.Errorf("onedrive: decoding item at %q: %w", remotePath, err)
	}

	return d.toResource(c.logger), nil
}

// Download streams an item's content to destPath. The pre-authenticated
// download URL from listing is used when present; otherwise the item
// metadata is refreshed to obtain a fresh one (listing URLs expire
// after about an hour). Pre-authenticated URLs embed credentials and
// are fetched without the bearer token.
func (c *Client) Download(ctx context.Context, h source.Handle, destPath string) (int64, error) {
	downloadURL := h.URL

	if downloadURL == "" && h.FileID != "" {
		item, err := c.GetItem(ctx, h.FileID)
		if err != nil {
			return 0, err
		}

		downloadURL = item.Handle.URL
	}

	if downloadURL == "" {
		return 0, ErrNoDownloadURL
	}

	return c.rc.DownloadToFile(ctx, downloadURL, false, destPath)
}

// toResource normalizes a Graph driveItem into a source.Resource. The
// ephemeral download URL rides in the handle and is never logged.
func (d *driveItemResponse) toResource(logger *slog.Logger) source.Resource {
	res := source.Resource{
		ID:         d.ID,
		Name:       d.Name,
		Size:       d.Size,
		Handle:     source.Handle{URL: d.DownloadURL, FileID: d.ID},
		CreatedAt:  parseTimestamp(d.CreatedDateTime, logger),
		ModifiedAt: parseTimestamp(d.LastModifiedDateTime, logger),
	}

	if d.File != nil {
		res.MimeType = d.File.MimeType
	}

	return res
}

// parseTimestamp parses a Graph ISO 8601 timestamp. Malformed values are
// logged and replaced with the zero time rather than failing the page.
func parseTimestamp(s string, logger *slog.Logger) time.Time {
	if s == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		logger.Warn("unparseable timestamp", slog.String("value", s))

		return time.Time{}
	}

	return t
}
