package rest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const userAgent = "mediasource-go/0.1"

// TokenSource provides bearer tokens. Defined at the consumer per Go
// convention "accept interfaces, return structs" — the authn package
// provides the real implementations. A nil TokenSource means the
// client sends unauthenticated requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client is an HTTP client for one provider's REST API. It handles
// request construction, bearer injection (fresh per request, never
// cached across calls), and error classification. It does NOT retry:
// transient failures surface to the caller with provider status detail
// attached.
type Client struct {
	provider   string
	baseURL    string
	httpClient *http.Client
	token      TokenSource
	header     http.Header // static extra headers, e.g. Notion-Version
	logger     *slog.Logger
}

// NewClient creates a provider REST client. provider names the service
// in errors and logs (e.g. "notion").
func NewClient(provider, baseURL string, httpClient *http.Client, token TokenSource, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		provider:   provider,
		baseURL:    baseURL,
		httpClient: httpClient,
		token:      token,
		header:     http.Header{},
		logger:     logger,
	}
}

// SetHeader adds a static header sent with every API request.
func (c *Client) SetHeader(key, value string) {
	c.header.Set(key, value)
}

// Provider returns the provider name this client was built for.
func (c *Client) Provider() string { return c.provider }

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Do executes a single HTTP request against the API. The path is
// appended to the client's base URL. For non-nil bodies, Content-Type
// is set to application/json. The caller is responsible for closing
// the response body on success. Non-2xx responses are returned as
// *APIError with the body and request correlation ID attached.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: creating request: %w", c.provider, err)
	}

	reqID := uuid.NewString()
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("client-request-id", reqID)

	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != nil {
		tok, tokErr := c.token.Token(ctx)
		if tokErr != nil {
			return nil, fmt.Errorf("%s: obtaining token: %w", c.provider, tokErr)
		}

		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: request canceled: %w", c.provider, ctx.Err())
		}

		return nil, fmt.Errorf("%s: %s %s: %w", c.provider, method, path, err)
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		c.logger.Debug("request succeeded",
			slog.String("provider", c.provider),
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)

		return resp, nil
	}

	errBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()

	if readErr != nil {
		errBody = []byte("(failed to read response body)")
	}

	// Prefer the server's correlation ID when it echoes one.
	if serverID := resp.Header.Get("request-id"); serverID != "" {
		reqID = serverID
	}

	c.logger.Warn("request failed",
		slog.String("provider", c.provider),
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.String("request_id", reqID),
	)

	return nil, &APIError{
		Provider:   c.provider,
		StatusCode: resp.StatusCode,
		RequestID:  reqID,
		Message:    string(errBody),
		Err:        classifyStatus(resp.StatusCode),
	}
}

// StripBase removes the client's base URL prefix from a full URL,
// returning the path + query string for use with Do(). Used to turn a
// provider's full-URL continuation link (@odata.nextLink) back into a
// request path. Returns an error if the URL doesn't match the base.
func (c *Client) StripBase(fullURL string) (string, error) {
	if !strings.HasPrefix(fullURL, c.baseURL) {
		return "", fmt.Errorf("%s: continuation URL %q does not match base URL %q", c.provider, fullURL, c.baseURL)
	}

	return fullURL[len(c.baseURL):], nil
}
