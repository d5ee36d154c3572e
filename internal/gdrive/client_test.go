package gdrive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipline/mediasource-go/internal/source"
)

type staticToken string

func (s staticToken) Token(_ context.Context) (string, error) {
	return string(s), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(url, folderID string) *Client {
	return NewClient(url, staticToken("drive-token"), folderID, nil, testLogger())
}

func fileJSON(id, name, size string) string {
	return fmt.Sprintf(`{
		"id": %q,
		"name": %q,
		"mimeType": "video/mp4",
		"size": %q,
		"createdTime": "2025-02-01T09:00:00.000Z",
		"modifiedTime": "2025-02-02T10:00:00.000Z"
	}`, id, name, size)
}

func TestList_QueryAndFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files", r.URL.Path)
		assert.Equal(t, "Bearer drive-token", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "'folder-1' in parents and trashed=false", q.Get("q"))
		assert.Equal(t, "100", q.Get("pageSize"))
		assert.Contains(t, q.Get("fields"), "nextPageToken")
		assert.Contains(t, q.Get("fields"), "size")
		assert.Empty(t, q.Get("pageToken"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"files":[%s]}`, fileJSON("f1", "clip.mp4", "4096"))
	}))
	defer srv.Close()

	resources, err := newTestClient(srv.URL, "folder-1").List(context.Background()).Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, resources, 1)

	r := resources[0]
	assert.Equal(t, "f1", r.ID)
	assert.Equal(t, "clip.mp4", r.Name)
	assert.Equal(t, int64(4096), r.Size, "string size field parsed to bytes")
	assert.Equal(t, "video/mp4", r.MimeType)
	assert.Equal(t, "f1", r.Handle.FileID)
	assert.Empty(t, r.Handle.URL)
	assert.Equal(t, 2025, r.ModifiedAt.Year())
}

func TestList_PageTokenRoundTrip(t *testing.T) {
	var tokens []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokens = append(tokens, r.URL.Query().Get("pageToken"))
		w.Header().Set("Content-Type", "application/json")

		if len(tokens) == 1 {
			fmt.Fprintf(w, `{"files":[%s],"nextPageToken":"tok-2"}`, fileJSON("f1", "a.mp4", "1"))
			return
		}

		fmt.Fprintf(w, `{"files":[%s]}`, fileJSON("f2", "b.mp4", "2"))
	}))
	defer srv.Close()

	resources, err := newTestClient(srv.URL, "folder-1").List(context.Background()).Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, resources, 2)
	assert.Equal(t, []string{"", "tok-2"}, tokens)
}

func TestListFolder_ExtraQueryClause(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t,
			"'folder-1' in parents and trashed=false and mimeType contains 'video/'",
			r.URL.Query().Get("q"),
		)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"files":[]}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "folder-1")

	_, err := c.ListFolder(context.Background(), "folder-1", "mimeType contains 'video/'").Collect(context.Background())
	require.NoError(t, err)
}

func TestSearch_EscapesQuotes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `name contains 'o\'brien' and trashed=false`, r.URL.Query().Get("q"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"files":[]}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, "folder-1").Search(context.Background(), "o'brien").Collect(context.Background())
	require.NoError(t, err)
}

func TestList_MissingSizeDefaultsToZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// Google Docs files report no size field.
		fmt.Fprint(w, `{"files":[{"id":"doc1","name":"Notes","mimeType":"application/vnd.google-apps.document"}]}`)
	}))
	defer srv.Close()

	resources, err := newTestClient(srv.URL, "folder-1").List(context.Background()).Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, resources, 1)
	assert.Zero(t, resources[0].Size)
}

func TestGetFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/f9", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, fileJSON("f9", "take.mov", "77"))
	}))
	defer srv.Close()

	r, err := newTestClient(srv.URL, "folder-1").GetFile(context.Background(), "f9")
	require.NoError(t, err)
	assert.Equal(t, "take.mov", r.Name)
	assert.Equal(t, int64(77), r.Size)
}

func TestDownload_AuthorizedMediaRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/f1", r.URL.Path)
		assert.Equal(t, "media", r.URL.Query().Get("alt"))
		// Drive media downloads need the bearer, unlike pre-signed URLs.
		assert.Equal(t, "Bearer drive-token", r.Header.Get("Authorization"))

		fmt.Fprint(w, "drive bytes")
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "folder-1")
	dest := filepath.Join(t.TempDir(), "out.mp4")

	n, err := c.Download(context.Background(), source.Handle{FileID: "f1"}, dest)
	require.NoError(t, err)
	assert.Equal(t, int64(len("drive bytes")), n)
}

func TestDownload_RequiresFileID(t *testing.T) {
	c := newTestClient("http://127.0.0.1:0", "folder-1")

	_, err := c.Download(context.Background(), source.Handle{}, filepath.Join(t.TempDir(), "f"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no file ID")
}
