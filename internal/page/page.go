// Package page turns a provider's page-fetch primitive into a lazy,
// forward-only, single-pass item sequence. The cursor format is opaque
// to this package — an empty cursor starts the sequence, and an empty
// next cursor from the fetch function ends it. Items are yielded in the
// exact order pages return them; no reordering or deduplication.
package page

import (
	"context"
	"fmt"
)

// FetchFunc fetches one page of items. cursor is "" for the first page;
// subsequent calls receive the next cursor returned by the previous
// call. Returning next == "" terminates the sequence.
type FetchFunc[T any] func(ctx context.Context, cursor string) (items []T, next string, err error)

// Error reports a page fetch that failed mid-sequence. Items already
// yielded before the failure remain valid.
type Error struct {
	Page int // 1-based page number of the failed fetch
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("page: fetching page %d: %v", e.Page, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Iterator is a lazy, forward-only cursor over paged items, following
// the bufio.Scanner idiom: Next advances, Item reads, Err reports a
// terminating failure. A fresh Iterator restarts from the first page;
// an exhausted one cannot be rewound.
type Iterator[T any] struct {
	fetch FetchFunc[T]
	buf   []T
	cur   T
	next  string
	pages int
	done  bool
	err   error
}

// New builds an Iterator over the given fetch function. No fetch
// happens until the first Next call.
func New[T any](fetch FetchFunc[T]) *Iterator[T] {
	return &Iterator[T]{fetch: fetch}
}

// Next advances to the next item, fetching pages on demand. It returns
// false when the sequence is exhausted or a fetch failed; check Err to
// distinguish. The bearer credential for each page fetch is resolved
// inside the fetch function per call, so long iterations spanning a
// token expiry re-authenticate transparently.
func (it *Iterator[T]) Next(ctx context.Context) bool {
	if it.err != nil {
		return false
	}

	for len(it.buf) == 0 {
		if it.done {
			return false
		}

		items, next, err := it.fetch(ctx, it.next)
		it.pages++

		if err != nil {
			it.err = &Error{Page: it.pages, Err: err}
			return false
		}

		it.next = next
		if next == "" {
			it.done = true
		}

		it.buf = items
	}

	it.cur = it.buf[0]
	it.buf = it.buf[1:]

	return true
}

// Item returns the item produced by the last successful Next call.
func (it *Iterator[T]) Item() T { return it.cur }

// Err returns the error that terminated iteration, or nil on clean
// exhaustion. Always a *Error wrapping the fetch failure.
func (it *Iterator[T]) Err() error { return it.err }

// Collect drains the iterator into a slice. On a mid-sequence fetch
// failure it returns the items yielded so far along with the error.
func (it *Iterator[T]) Collect(ctx context.Context) ([]T, error) {
	var out []T

	for it.Next(ctx) {
		out = append(out, it.Item())
	}

	return out, it.Err()
}
