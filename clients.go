package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os/exec"
	"runtime"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"

	"github.com/clipline/mediasource-go/internal/authn"
	"github.com/clipline/mediasource-go/internal/config"
	"github.com/clipline/mediasource-go/internal/gdrive"
	"github.com/clipline/mediasource-go/internal/graph"
	"github.com/clipline/mediasource-go/internal/notion"
	"github.com/clipline/mediasource-go/internal/page"
	"github.com/clipline/mediasource-go/internal/source"
)

// graphScopes request read access plus offline_access for a refresh
// token, so subsequent runs work without a browser.
var graphScopes = []string{"offline_access", "Files.Read.All", "User.Read"}

// driveScope is read-only Drive access.
const driveScope = "https://www.googleapis.com/auth/drive.readonly"

// listOptions carry the provider-native listing knobs the ls command
// exposes. Each provider honors what applies to it and rejects the
// rest — there is no cross-provider query DSL.
type listOptions struct {
	scope  string          // database ID, folder path, or folder ID override
	filter json.RawMessage // Notion filter object
	sorts  json.RawMessage // Notion sorts array
	clause string          // Drive query clause ANDed onto the folder scope
}

// provider bundles the capability views of one configured backend.
// Capabilities a backend lacks are nil.
type provider struct {
	name       string
	lister     source.Lister
	searcher   source.Searcher
	downloader source.Downloader
	list       func(ctx context.Context, opts listOptions) (*page.Iterator[source.Resource], error)
}

// buildProvider constructs the named provider's client from the
// resolved configuration. interactive enables the browser consent flow
// for the OAuth providers; batch commands leave it off and fail fast
// with a message telling the user to run login.
func buildProvider(name string, httpClient *http.Client, logger *slog.Logger, interactive bool) (*provider, error) {
	switch name {
	case config.ProviderNotion:
		return buildNotion(httpClient, logger)
	case config.ProviderOneDrive:
		return buildOneDrive(httpClient, logger, interactive)
	case config.ProviderGoogleDrive:
		return buildGoogleDrive(httpClient, logger, interactive)
	default:
		return nil, fmt.Errorf("unknown provider %q (want notion, onedrive, or googledrive)", name)
	}
}

func buildNotion(httpClient *http.Client, logger *slog.Logger) (*provider, error) {
	cred, err := resolvedCfg.NotionCredential()
	if err != nil {
		return nil, err
	}

	c := notion.NewClient(notion.DefaultBaseURL, cred.APIKey, cred.DatabaseID, httpClient, logger)

	list := func(ctx context.Context, opts listOptions) (*page.Iterator[source.Resource], error) {
		if opts.clause != "" {
			return nil, fmt.Errorf("--where applies to googledrive only")
		}

		client := c
		if opts.scope != "" {
			client = notion.NewClient(notion.DefaultBaseURL, cred.APIKey, opts.scope, httpClient, logger)
		}

		return client.Query(ctx, notion.QueryOptions{Filter: opts.filter, Sorts: opts.sorts}), nil
	}

	return &provider{name: config.ProviderNotion, lister: c, searcher: c, downloader: c, list: list}, nil
}

func buildOneDrive(httpClient *http.Client, logger *slog.Logger, interactive bool) (*provider, error) {
	cred, err := resolvedCfg.OneDriveCredential()
	if err != nil {
		return nil, err
	}

	oc := &oauth2.Config{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		Endpoint:     microsoft.AzureADEndpoint(cred.TenantID),
		Scopes:       graphScopes,
	}

	session := newSession(config.ProviderOneDrive, oc, logger, interactive)
	c := graph.NewClient(graph.DefaultBaseURL, session, cred.FolderPath, httpClient, logger)

	list := func(ctx context.Context, opts listOptions) (*page.Iterator[source.Resource], error) {
		if opts.filter != nil || opts.sorts != nil {
			return nil, fmt.Errorf("--filter/--sorts apply to notion only")
		}

		if opts.clause != "" {
			return nil, fmt.Errorf("--where applies to googledrive only")
		}

		folder := cred.FolderPath
		if opts.scope != "" {
			folder = opts.scope
		}

		return c.ListFolder(ctx, folder), nil
	}

	return &provider{name: config.ProviderOneDrive, lister: c, searcher: c, downloader: c, list: list}, nil
}

func buildGoogleDrive(httpClient *http.Client, logger *slog.Logger, interactive bool) (*provider, error) {
	cred, err := resolvedCfg.GoogleDriveCredential()
	if err != nil {
		return nil, err
	}

	oc, err := google.ConfigFromJSON(cred.ClientSecretJSON, driveScope)
	if err != nil {
		return nil, fmt.Errorf("parsing Google client secrets: %w", err)
	}

	session := newSession(config.ProviderGoogleDrive, oc, logger, interactive)
	c := gdrive.NewClient(gdrive.DefaultBaseURL, session, cred.FolderID, httpClient, logger)

	list := func(ctx context.Context, opts listOptions) (*page.Iterator[source.Resource], error) {
		if opts.filter != nil || opts.sorts != nil {
			return nil, fmt.Errorf("--filter/--sorts apply to notion only")
		}

		folder := cred.FolderID
		if opts.scope != "" {
			folder = opts.scope
		}

		return c.ListFolder(ctx, folder, opts.clause), nil
	}

	return &provider{name: config.ProviderGoogleDrive, lister: c, searcher: c, downloader: c, list: list}, nil
}

// newSession creates the OAuth session for a provider, wiring the
// browser opener only when the command allows interaction.
func newSession(name string, oc *oauth2.Config, logger *slog.Logger, interactive bool) *authn.Session {
	opts := []authn.Option{}
	if interactive {
		opts = append(opts, authn.WithBrowser(openBrowser))
	}

	return authn.NewSession(name, oc, resolvedCfg.TokenPath(name), logger, opts...)
}

// oauthSession returns the bare session for a provider, for the login
// command. Notion has no session to build.
func oauthSession(name string, logger *slog.Logger) (*authn.Session, error) {
	switch name {
	case config.ProviderOneDrive:
		cred, err := resolvedCfg.OneDriveCredential()
		if err != nil {
			return nil, err
		}

		oc := &oauth2.Config{
			ClientID:     cred.ClientID,
			ClientSecret: cred.ClientSecret,
			Endpoint:     microsoft.AzureADEndpoint(cred.TenantID),
			Scopes:       graphScopes,
		}

		return newSession(name, oc, logger, true), nil
	case config.ProviderGoogleDrive:
		cred, err := resolvedCfg.GoogleDriveCredential()
		if err != nil {
			return nil, err
		}

		oc, err := google.ConfigFromJSON(cred.ClientSecretJSON, driveScope)
		if err != nil {
			return nil, fmt.Errorf("parsing Google client secrets: %w", err)
		}

		return newSession(name, oc, logger, true), nil
	case config.ProviderNotion:
		return nil, fmt.Errorf("notion uses a static API key; nothing to log in to")
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}

// openBrowser launches the system default browser at url.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
