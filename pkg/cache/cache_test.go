package cache

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// setupTestRedis creates a test Redis client, skipping when unavailable.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func TestKeyString(t *testing.T) {
	tests := []struct {
		endpoint string
		want     string
	}{
		{"/domestic/certificate/1234567890", "epc:record:domestic:certificate:1234567890"},
		{"domestic/certificate/abc", "epc:record:domestic:certificate:abc"},
		{"/non-domestic/recommendations/xyz/", "epc:record:non-domestic:recommendations:xyz"},
	}
	for _, tt := range tests {
		if got := (Key{Endpoint: tt.endpoint}).String(); got != tt.want {
			t.Errorf("Key(%q).String() = %q, want %q", tt.endpoint, got, tt.want)
		}
	}
}

func TestResponseEntryRoundTrip(t *testing.T) {
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")

	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header:     headers,
		Body:       io.NopCloser(strings.NewReader(`{"rows": []}`)),
	}

	entry, err := ResponseToEntry(resp)
	if err != nil {
		t.Fatalf("ResponseToEntry() failed: %v", err)
	}
	if entry.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", entry.StatusCode)
	}
	if entry.CachedAt.IsZero() {
		t.Error("CachedAt not set")
	}

	rebuilt := EntryToResponse(entry)
	body, err := io.ReadAll(rebuilt.Body)
	if err != nil {
		t.Fatalf("Read rebuilt body: %v", err)
	}
	if string(body) != `{"rows": []}` {
		t.Errorf("Rebuilt body = %q, want original", body)
	}
	if rebuilt.Header.Get("Content-Type") != "application/json" {
		t.Error("Headers lost in round trip")
	}
}

func TestManager_GetMiss(t *testing.T) {
	redisClient := setupTestRedis(t)
	m := NewManager(redisClient, 0)

	_, err := m.Get(context.Background(), Key{Endpoint: "/domestic/certificate/missing"})
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestManager_SetGet(t *testing.T) {
	redisClient := setupTestRedis(t)
	m := NewManager(redisClient, time.Minute)
	ctx := context.Background()

	key := Key{Endpoint: "/domestic/certificate/1234567890"}
	entry := &Entry{
		Data:       []byte(`{"rows": [{"lmk-key": "1234567890"}]}`),
		StatusCode: http.StatusOK,
		Headers:    http.Header{"Content-Type": []string{"application/json"}},
		CachedAt:   time.Now(),
	}

	if err := m.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	got, err := m.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if string(got.Data) != string(entry.Data) {
		t.Errorf("Data = %q, want %q", got.Data, entry.Data)
	}
	if got.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", got.StatusCode)
	}
}

func TestManager_Delete(t *testing.T) {
	redisClient := setupTestRedis(t)
	m := NewManager(redisClient, time.Minute)
	ctx := context.Background()

	key := Key{Endpoint: "/domestic/certificate/gone"}
	entry := &Entry{Data: []byte(`{}`), StatusCode: http.StatusOK}

	if err := m.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := m.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := m.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after delete, got %v", err)
	}
}

func TestManager_SetNil(t *testing.T) {
	redisClient := setupTestRedis(t)
	m := NewManager(redisClient, time.Minute)

	if err := m.Set(context.Background(), Key{Endpoint: "/x"}, nil); err == nil {
		t.Error("Expected error for nil entry")
	}
}
