package tokencache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestRead_FileNotFound(t *testing.T) {
	tok, err := Read("/nonexistent/path/token.json")
	assert.Nil(t, tok)
	assert.NoError(t, err)
}

func TestWriteRead_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notion_token.json")

	expiry := time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)
	original := &oauth2.Token{
		AccessToken:  "access-123",
		RefreshToken: "refresh-456",
		TokenType:    "Bearer",
		Expiry:       expiry,
	}

	require.NoError(t, Write(path, original))

	tok, err := Read(path)
	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.Equal(t, "access-123", tok.AccessToken)
	assert.Equal(t, "refresh-456", tok.RefreshToken)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.True(t, tok.Expiry.Equal(expiry))
}

func TestRead_CorruptFileIsCacheMiss(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	tok, err := Read(path)
	assert.Nil(t, tok)
	assert.NoError(t, err)
}

func TestRead_MissingTokenFieldIsCacheMiss(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"something":"else"}`), 0o600))

	tok, err := Read(path)
	assert.Nil(t, tok)
	assert.NoError(t, err)
}

func TestRead_EmptyAccessTokenIsCacheMiss(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"token":{"access_token":""}}`), 0o600))

	tok, err := Read(path)
	assert.Nil(t, tok)
	assert.NoError(t, err)
}

func TestWrite_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "token.json")

	require.NoError(t, Write(path, &oauth2.Token{AccessToken: "a"}))

	tok, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "a", tok.AccessToken)
}

func TestWrite_RestrictivePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, Write(path, &oauth2.Token{AccessToken: "a"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(FilePerms), info.Mode().Perm())
}

func TestWrite_NoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token.json")
	require.NoError(t, Write(path, &oauth2.Token{AccessToken: "a"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "token.json", entries[0].Name())
}

func TestWrite_OverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, Write(path, &oauth2.Token{AccessToken: "old"}))
	require.NoError(t, Write(path, &oauth2.Token{AccessToken: "new"}))

	tok, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "new", tok.AccessToken)
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, Write(path, &oauth2.Token{AccessToken: "a"}))

	require.NoError(t, Remove(path))

	tok, err := Read(path)
	assert.Nil(t, tok)
	assert.NoError(t, err)

	// Removing a missing cache is not an error.
	assert.NoError(t, Remove(path))
}
