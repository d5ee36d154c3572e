// Package source defines the provider-agnostic resource model shared by
// the provider clients. Provider packages decode raw API responses into
// these types at the boundary — callers never see raw provider JSON.
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/clipline/mediasource-go/internal/page"
)

// Handle identifies how to download a resource's content. URL is a
// direct (often pre-authenticated) download URL; FileID is the
// provider-native file identifier for clients that resolve download
// URLs on demand. Either field may be empty, but not both for
// downloadable resources.
type Handle struct {
	URL    string
	FileID string
}

// Resource is a normalized record for one remote item: a file in a
// cloud drive folder, or a row in a Notion database. Immutable after
// creation; owned by the caller once yielded from an iterator.
type Resource struct {
	ID         string
	Name       string
	Size       int64 // bytes; 0 when the provider omits size
	MimeType   string
	Handle     Handle
	CreatedAt  time.Time
	ModifiedAt time.Time

	// Properties holds decoded database-row values, keyed by property
	// name. Populated for Notion rows only; nil for file listings.
	Properties map[string]Value
}

// PropertyNotFoundError reports a lookup of a property name the
// resource does not carry. Surfaced instead of a silent default so
// schema drift is visible immediately.
type PropertyNotFoundError struct {
	Name string
}

func (e *PropertyNotFoundError) Error() string {
	return fmt.Sprintf("source: property %q not found", e.Name)
}

// Property returns the decoded value for the named property.
// Fails with *PropertyNotFoundError if the resource has no such
// property — absent is never coerced to null.
func (r Resource) Property(name string) (Value, error) {
	v, ok := r.Properties[name]
	if !ok {
		return Value{}, &PropertyNotFoundError{Name: name}
	}

	return v, nil
}

// Capability interfaces over the provider clients. Each provider
// implements the subset that makes sense for it; callers depend on the
// capability, not the concrete client.

// Lister lists the client's configured scope (database or folder).
type Lister interface {
	List(ctx context.Context) *page.Iterator[Resource]
}

// Searcher runs a provider-native full-text or name search.
type Searcher interface {
	Search(ctx context.Context, query string) *page.Iterator[Resource]
}

// Downloader streams a resource's content to a local file, returning
// the number of bytes written.
type Downloader interface {
	Download(ctx context.Context, h Handle, destPath string) (int64, error)
}
