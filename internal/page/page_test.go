package page

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedFetch returns a FetchFunc yielding the given pages in order,
// recording each cursor it receives.
func pagedFetch(pages [][]string, cursors *[]string) FetchFunc[string] {
	return func(_ context.Context, cursor string) ([]string, string, error) {
		*cursors = append(*cursors, cursor)

		idx := 0
		if cursor != "" {
			fmt.Sscanf(cursor, "page-%d", &idx)
		}

		next := ""
		if idx+1 < len(pages) {
			next = fmt.Sprintf("page-%d", idx+1)
		}

		return pages[idx], next, nil
	}
}

func TestIterator_MultiplePages(t *testing.T) {
	var cursors []string

	it := New(pagedFetch([][]string{
		{"a", "b"},
		{"c"},
		{"d", "e", "f"},
	}, &cursors))

	var got []string
	for it.Next(context.Background()) {
		got = append(got, it.Item())
	}

	require.NoError(t, it.Err())
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, got)
	assert.Equal(t, []string{"", "page-1", "page-2"}, cursors)
}

func TestIterator_LazyFirstFetch(t *testing.T) {
	fetched := 0

	it := New(func(_ context.Context, _ string) ([]string, string, error) {
		fetched++

		return []string{"x"}, "", nil
	})

	assert.Zero(t, fetched, "no fetch before the first Next call")

	require.True(t, it.Next(context.Background()))
	assert.Equal(t, 1, fetched)
}

func TestIterator_EmptyMiddlePage(t *testing.T) {
	// An empty page mid-sequence must not end iteration as long as a
	// next cursor is present.
	pages := map[string]struct {
		items []string
		next  string
	}{
		"":   {items: []string{"a"}, next: "p2"},
		"p2": {items: nil, next: "p3"},
		"p3": {items: []string{"b"}, next: ""},
	}

	it := New(func(_ context.Context, cursor string) ([]string, string, error) {
		p := pages[cursor]

		return p.items, p.next, nil
	})

	got, err := it.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestIterator_EmptySequence(t *testing.T) {
	it := New(func(_ context.Context, _ string) ([]string, string, error) {
		return nil, "", nil
	})

	assert.False(t, it.Next(context.Background()))
	assert.NoError(t, it.Err())
}

func TestIterator_MidSequenceError(t *testing.T) {
	fetchErr := errors.New("boom")

	it := New(func(_ context.Context, cursor string) ([]string, string, error) {
		if cursor == "p2" {
			return nil, "", fetchErr
		}

		return []string{"a", "b"}, "p2", nil
	})

	var got []string
	for it.Next(context.Background()) {
		got = append(got, it.Item())
	}

	// Items before the failure were yielded; then iteration stopped.
	assert.Equal(t, []string{"a", "b"}, got)

	err := it.Err()
	require.Error(t, err)

	var pageErr *Error
	require.ErrorAs(t, err, &pageErr)
	assert.Equal(t, 2, pageErr.Page)
	assert.ErrorIs(t, err, fetchErr)

	// Once failed, the iterator stays failed.
	assert.False(t, it.Next(context.Background()))
	assert.ErrorIs(t, it.Err(), fetchErr)
}

func TestIterator_CollectPartialOnError(t *testing.T) {
	fetchErr := errors.New("throttled")

	it := New(func(_ context.Context, cursor string) ([]string, string, error) {
		if cursor != "" {
			return nil, "", fetchErr
		}

		return []string{"a"}, "next", nil
	})

	got, err := it.Collect(context.Background())
	assert.Equal(t, []string{"a"}, got)
	assert.ErrorIs(t, err, fetchErr)
}

func TestIterator_FreshIteratorRestarts(t *testing.T) {
	fetch := func(_ context.Context, _ string) ([]string, string, error) {
		return []string{"a", "b"}, "", nil
	}

	first, err := New(fetch).Collect(context.Background())
	require.NoError(t, err)

	second, err := New(fetch).Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestIterator_ExhaustedStaysExhausted(t *testing.T) {
	it := New(func(_ context.Context, _ string) ([]string, string, error) {
		return []string{"only"}, "", nil
	})

	require.True(t, it.Next(context.Background()))
	assert.False(t, it.Next(context.Background()))
	assert.False(t, it.Next(context.Background()))
	assert.NoError(t, it.Err())
}
