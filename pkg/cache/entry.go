// Package cache provides a Redis-backed response cache for single-record
// EPC lookups. Certificates are immutable once issued, so cached lookups are
// served without revalidation until the configured TTL lapses.
package cache

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Entry is a cached API response.
type Entry struct {
	// Data is the response body.
	Data []byte `json:"data"`

	// StatusCode is the HTTP status of the cached response.
	StatusCode int `json:"status_code"`

	// Headers are the response headers.
	Headers http.Header `json:"headers"`

	// CachedAt is when the response was stored.
	CachedAt time.Time `json:"cached_at"`
}

// ResponseToEntry reads a response body and builds a cache entry from it.
// The body is consumed; use EntryToResponse to reconstruct a readable
// response for the caller.
func ResponseToEntry(resp *http.Response) (*Entry, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &Entry{
		Data:       body,
		StatusCode: resp.StatusCode,
		Headers:    resp.Header.Clone(),
		CachedAt:   time.Now(),
	}, nil
}

// EntryToResponse reconstructs an HTTP response from a cache entry.
func EntryToResponse(entry *Entry) *http.Response {
	return &http.Response{
		StatusCode:    entry.StatusCode,
		Header:        entry.Headers.Clone(),
		Body:          io.NopCloser(bytes.NewReader(entry.Data)),
		ContentLength: int64(len(entry.Data)),
	}
}
