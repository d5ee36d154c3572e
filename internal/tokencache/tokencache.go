// Package tokencache persists one OAuth token artifact per provider on
// durable storage. Writes are atomic (write-to-temp, fsync, rename) so
// a crash mid-write can never leave a readable-but-corrupt cache at the
// final path. A file that cannot be decoded reads as a cache miss, not
// an error — the worst case of a damaged cache is a re-login, never a
// crash.
package tokencache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// FilePerms restricts token files to owner-only read/write.
const FilePerms = 0o600

// DirPerms is used when creating the cache directory.
const DirPerms = 0o700

// file is the on-disk envelope. The token payload is whatever the
// oauth2 library serializes — this package preserves it without
// interpreting anything beyond presence.
type file struct {
	Token *oauth2.Token `json:"token"`
}

// Read returns the cached token for the given path, or nil if the file
// does not exist or does not decode as a token envelope. Only I/O
// failures on an existing file are reported as errors.
func Read(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("tokencache: reading %s: %w", path, err)
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		// Corrupt payload is a cache miss, never fatal.
		return nil, nil
	}

	if f.Token == nil || f.Token.AccessToken == "" {
		return nil, nil
	}

	return f.Token, nil
}

// Write persists the token atomically with 0600 permissions, creating
// the parent directory if needed. Never logs token values.
func Write(path string, tok *oauth2.Token) error {
	data, err := json.MarshalIndent(file{Token: tok}, "", "  ")
	if err != nil {
		return fmt.Errorf("tokencache: encoding: %w", err)
	}

	dir := filepath.Dir(path)
	if mkErr := os.MkdirAll(dir, DirPerms); mkErr != nil {
		return fmt.Errorf("tokencache: creating directory %s: %w", dir, mkErr)
	}

	// Temp file in the same directory guarantees same filesystem for rename(2).
	tmp, err := os.CreateTemp(dir, ".token-*.tmp")
	if err != nil {
		return fmt.Errorf("tokencache: creating temp file: %w", err)
	}

	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := os.Chmod(tmpPath, FilePerms); err != nil {
		tmp.Close()
		return fmt.Errorf("tokencache: setting permissions: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("tokencache: writing: %w", err)
	}

	// Flush to stable storage before rename so a power loss between close
	// and rename cannot leave an empty or partial file at the final path.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("tokencache: syncing: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tokencache: closing: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("tokencache: renaming: %w", err)
	}

	success = true

	return nil
}

// Remove deletes the cached token at the given path. Returns nil if no
// cache exists (already logged out).
func Remove(path string) error {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}
