// Package notion reads rows from a Notion database through the public
// REST API and normalizes them into source.Resource records with fully
// decoded property values.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/clipline/mediasource-go/internal/authn"
	"github.com/clipline/mediasource-go/internal/page"
	"github.com/clipline/mediasource-go/internal/rest"
	"github.com/clipline/mediasource-go/internal/source"
)

// DefaultBaseURL is the production Notion API base URL. Injectable so
// tests can point the client at a local server.
const DefaultBaseURL = "https://api.notion.com/v1"

const (
	apiVersion = "2022-06-28"

	// queryPageSize is the page_size for database queries — the maximum
	// the Notion API allows.
	queryPageSize = 100
)

// Client queries one Notion database. Authentication is a static
// integration token; there is no token lifecycle.
type Client struct {
	rc         *rest.Client
	databaseID string
	logger     *slog.Logger
}

// NewClient creates a Notion client bound to a database.
func NewClient(baseURL, apiKey, databaseID string, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	rc := rest.NewClient("notion", baseURL, httpClient, authn.NewStatic(apiKey), logger)
	rc.SetHeader("Notion-Version", apiVersion)

	return &Client{
		rc:         rc,
		databaseID: databaseID,
		logger:     logger,
	}
}

// QueryOptions carry the provider-native query grammar untranslated:
// Filter is a Notion filter object, Sorts a Notion sorts array. No
// cross-provider query DSL is attempted.
type QueryOptions struct {
	Filter json.RawMessage
	Sorts  json.RawMessage
}

type queryRequest struct {
	StartCursor string          `json:"start_cursor,omitempty"`
	PageSize    int             `json:"page_size"`
	Filter      json.RawMessage `json:"filter,omitempty"`
	Sorts       json.RawMessage `json:"sorts,omitempty"`
}

type queryResponse struct {
	Results    []pageObject `json:"results"`
	HasMore    bool         `json:"has_more"`
	NextCursor string       `json:"next_cursor"`
}

// pageObject mirrors the Notion page JSON. Unexported — callers receive
// normalized source.Resource values.
type pageObject struct {
	Object         string                     `json:"object"`
	ID             string                     `json:"id"`
	URL            string                     `json:"url"`
	CreatedTime    string                     `json:"created_time"`
	LastEditedTime string                     `json:"last_edited_time"`
	Properties     map[string]json.RawMessage `json:"properties"`
}

// List lazily yields every row of the configured database.
func (c *Client) List(ctx context.Context) *page.Iterator[source.Resource] {
	return c.Query(ctx, QueryOptions{})
}

// Query lazily yields database rows matching the native filter/sorts.
// The opaque start_cursor is round-tripped between pages; the sequence
// ends when has_more is false.
func (c *Client) Query(_ context.Context, opts QueryOptions) *page.Iterator[source.Resource] {
	path := "/databases/" + c.databaseID + "/query"

	return page.New(func(ctx context.Context, cursor string) ([]source.Resource, string, error) {
		body, err := json.Marshal(queryRequest{
			StartCursor: cursor,
			PageSize:    queryPageSize,
			Filter:      opts.Filter,
			Sorts:       opts.Sorts,
		})
		if err != nil {
			return nil, "", fmt.Errorf("notion: marshaling query: %w", err)
		}

		resp, err := c.rc.Do(ctx, http.MethodPost, path, bytes.NewReader(body))
		if err != nil {
			return nil, "", err
		}
		defer resp.Body.Close()

		var qr queryResponse
		if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
			return nil, "", fmt.Errorf("notion: decoding query response: %w", err)
		}

		resources := make([]source.Resource, 0, len(qr.Results))

		for i := range qr.Results {
			res, convErr := qr.Results[i].toResource()
			if convErr != nil {
				return nil, "", convErr
			}

			resources = append(resources, res)
		}

		c.logger.Debug("fetched database page",
			slog.String("database_id", c.databaseID),
			slog.Int("count", len(resources)),
			slog.Bool("has_more", qr.HasMore),
		)

		if !qr.HasMore {
			return resources, "", nil
		}

		if qr.NextCursor == "" {
			return nil, "", fmt.Errorf("notion: database %s: has_more without next_cursor", c.databaseID)
		}

		return resources, qr.NextCursor, nil
	})
}

type searchRequest struct {
	Query       string          `json:"query"`
	StartCursor string          `json:"start_cursor,omitempty"`
	PageSize    int             `json:"page_size"`
	Filter      json.RawMessage `json:"filter,omitempty"`
}

// searchPageFilter restricts search results to pages (database rows);
// database objects carry no row properties.
var searchPageFilter = json.RawMessage(`{"property":"object","value":"page"}`)

// Search runs the workspace full-text search, restricted to pages.
func (c *Client) Search(_ context.Context, query string) *page.Iterator[source.Resource] {
	return page.New(func(ctx context.Context, cursor string) ([]source.Resource, string, error) {
		body, err := json.Marshal(searchRequest{
			Query:       query,
			StartCursor: cursor,
			PageSize:    queryPageSize,
			Filter:      searchPageFilter,
		})
		if err != nil {
			return nil, "", fmt.Errorf("notion: marshaling search: %w", err)
		}

		resp, err := c.rc.Do(ctx, http.MethodPost, "/search", bytes.NewReader(body))
		if err != nil {
			return nil, "", err
		}
		defer resp.Body.Close()

		var qr queryResponse
		if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
			return nil, "", fmt.Errorf("notion: decoding search response: %w", err)
		}

		resources := make([]source.Resource, 0, len(qr.Results))

		for i := range qr.Results {
			if qr.Results[i].Object != "page" {
				continue
			}

			res, convErr := qr.Results[i].toResource()
			if convErr != nil {
				return nil, "", convErr
			}

			resources = append(resources, res)
		}

		if !qr.HasMore {
			return resources, "", nil
		}

		return resources, qr.NextCursor, nil
	})
}

// Database describes the configured database: its title and the
// property schema (name to type tag).
type Database struct {
	ID         string
	Title      string
	Properties map[string]string
}

type databaseResponse struct {
	ID         string    `json:"id"`
	Title      []textRun `json:"title"`
	Properties map[string]struct {
		Type string `json:"type"`
	} `json:"properties"`
}

// Database retrieves the configured database's metadata. Useful for
// validating that expected properties exist before a long listing.
func (c *Client) Database(ctx context.Context) (Database, error) {
	resp, err := c.rc.Do(ctx, http.MethodGet, "/databases/"+c.databaseID, nil)
	if err != nil {
		return Database{}, err
	}
	defer resp.Body.Close()

	var dr databaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return Database{}, fmt.Errorf("notion: decoding database %s: %w", c.databaseID, err)
	}

	props := make(map[string]string, len(dr.Properties))
	for name, p := range dr.Properties {
		props[name] = p.Type
	}

	return Database{
		ID:         dr.ID,
		Title:      joinRuns(dr.Title),
		Properties: props,
	}, nil
}

// Download streams the content behind a row's handle URL — Notion file
// URLs are short-lived pre-signed links fetched without authorization.
func (c *Client) Download(ctx context.Context, h source.Handle, destPath string) (int64, error) {
	if h.URL == "" {
		return 0, &rest.DownloadError{
			Provider: "notion",
			Dest:     destPath,
			Err:      fmt.Errorf("resource has no download URL"),
		}
	}

	return c.rc.DownloadToFile(ctx, h.URL, false, destPath)
}

// toResource decodes every property eagerly at the provider boundary
// so downstream code never inspects raw Notion JSON. The row's title
// property becomes the resource name; the page URL is the handle.
func (p *pageObject) toResource() (source.Resource, error) {
	props := make(map[string]source.Value, len(p.Properties))
	name := ""

	for propName, raw := range p.Properties {
		val, err := DecodeProperty(raw)
		if err != nil {
			return source.Resource{}, fmt.Errorf("notion: page %s, property %q: %w", p.ID, propName, err)
		}

		props[propName] = val

		if isTitle(raw) {
			name = val.Str()
		}
	}

	if name == "" {
		name = p.ID
	}

	created, _ := time.Parse(time.RFC3339, p.CreatedTime)
	edited, _ := time.Parse(time.RFC3339, p.LastEditedTime)

	return source.Resource{
		ID:         p.ID,
		Name:       name,
		Handle:     source.Handle{URL: p.URL},
		CreatedAt:  created,
		ModifiedAt: edited,
		Properties: props,
	}, nil
}

// isTitle peeks at a raw property's type tag without a full decode.
func isTitle(raw json.RawMessage) bool {
	var head struct {
		Type string `json:"type"`
	}

	return json.Unmarshal(raw, &head) == nil && head.Type == "title"
}
