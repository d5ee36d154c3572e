package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/clipline/mediasource-go/internal/source"
)

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", formatSize(512))
	assert.Equal(t, "1.0 KB", formatSize(1024))
	assert.Equal(t, "1.5 MB", formatSize(1536*1024))
	assert.Equal(t, "2.0 GB", formatSize(2*1024*1024*1024))
}

func TestFormatTime(t *testing.T) {
	past := time.Date(2019, time.March, 5, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "Mar  5  2019", formatTime(past))
}

func TestPrintTable(t *testing.T) {
	var sb strings.Builder

	printTable(&sb, []string{"NAME", "SIZE"}, [][]string{
		{"clip.mp4", "1.0 KB"},
		{"a-much-longer-name.mov", "2.0 GB"},
	})

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Contains(t, lines[1], "clip.mp4")

	// Columns align on the widest cell.
	assert.Equal(t, strings.Index(lines[0], "SIZE"), strings.Index(lines[2], "2.0 GB"))
}

func TestFilterVideos(t *testing.T) {
	resources := []source.Resource{
		{Name: "clip.mp4", MimeType: "video/mp4"},
		{Name: "notes.txt", MimeType: "text/plain"},
		{Name: "raw.MOV"},                                // no MIME, video extension
		{Name: "doc.pdf"},                                // no MIME, not video
		{Name: "weird.mp4", MimeType: "application/zip"}, // MIME wins over extension
	}

	got := filterVideos(resources)

	names := make([]string, len(got))
	for i, r := range got {
		names[i] = r.Name
	}

	assert.Equal(t, []string{"clip.mp4", "raw.MOV"}, names)
}

func TestSafeFileName(t *testing.T) {
	assert.Equal(t, "a_b.mp4", safeFileName("a/b.mp4"))

	// NFD input (as macOS-backed providers produce) normalizes to NFC.
	assert.Equal(t, "caf\u00e9.mp4", safeFileName("cafe\u0301.mp4"))
}

func TestDestFromHandle(t *testing.T) {
	assert.Equal(t, "file-123", destFromHandle(source.Handle{FileID: "file-123"}))
	assert.Equal(t, "clip.mp4", destFromHandle(source.Handle{URL: "https://x.example/a/clip.mp4?sig=abc"}))
	assert.Empty(t, destFromHandle(source.Handle{}))
}
