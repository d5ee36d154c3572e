// Package graph lists and downloads OneDrive files through the
// Microsoft Graph API, normalized into source.Resource records.
package graph

import (
	"log/slog"
	"net/http"

	"github.com/clipline/mediasource-go/internal/rest"
)

// DefaultBaseURL is the production Graph API base URL. Injectable so
// tests can point the client at a local server.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

// Client reads one OneDrive folder through Microsoft Graph. The token
// source is an OAuth session owned by the caller.
type Client struct {
	rc         *rest.Client
	folderPath string
	logger     *slog.Logger
}

// NewClient creates a Graph client rooted at folderPath (drive-relative,
// e.g. "/Videos"; empty means the drive root).
func NewClient(baseURL string, token rest.TokenSource, folderPath string, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		rc:         rest.NewClient("onedrive", baseURL, httpClient, token, logger),
		folderPath: folderPath,
		logger:     logger,
	}
}
