// Package testutil provides testing utilities for the EPC API client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// tokenHeader mirrors the continuation header served by the real API.
const tokenHeader = "X-Next-Search-After"

// MockEPC is a configurable mock EPC open data server. It serves a fixed
// record set through the paginated search endpoint, single records by LMK
// key, and a bulk-file manifest.
type MockEPC struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	records         map[string][]map[string]any
	recommendations map[string][]map[string]any
	files           []map[string]any

	// RequireAuth makes the server reject requests without an
	// Authorization header.
	RequireAuth bool

	// Tracking
	RequestCount   int
	SearchCount    int
	LastAuthHeader string
	LastQuery      map[string]string
}

// NewMockEPC creates a new mock EPC server.
func NewMockEPC() *MockEPC {
	mock := &MockEPC{
		handlers:        make(map[string]http.HandlerFunc),
		records:         make(map[string][]map[string]any),
		recommendations: make(map[string][]map[string]any),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastAuthHeader = r.Header.Get("Authorization")
		mock.LastQuery = map[string]string{}
		for key := range r.URL.Query() {
			mock.LastQuery[key] = r.URL.Query().Get(key)
		}
		requireAuth := mock.RequireAuth
		mock.mu.Unlock()

		if requireAuth && r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockEPC) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockEPC) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockEPC) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.SearchCount = 0
	m.LastAuthHeader = ""
	m.LastQuery = nil
}

// SetHandler sets a custom handler for a specific path, overriding the
// built-in behavior.
func (m *MockEPC) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetRecords installs the searchable record set for one register
// (e.g. "domestic"). Records must carry an "lmk-key" field for the
// single-record endpoints to find them.
func (m *MockEPC) SetRecords(recordType string, records []map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[recordType] = records
}

// SetRecommendations installs the recommendation rows for one LMK key.
func (m *MockEPC) SetRecommendations(lmkKey string, rows []map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recommendations[lmkKey] = rows
}

// SetFiles installs the bulk-file manifest.
func (m *MockEPC) SetFiles(files []map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = files
}

// GenerateRecords builds n sequential test records for convenience.
func GenerateRecords(n int) []map[string]any {
	records := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, map[string]any{
			"lmk-key":         fmt.Sprintf("key-%06d", i),
			"address":         fmt.Sprintf("%d Test Street", i+1),
			"local-authority": "E09000030",
			"energy-rating":   50 + i%50,
		})
	}
	return records
}

// defaultHandler routes the built-in API surface.
func (m *MockEPC) defaultHandler(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(r.URL.Path, "/")
	parts := strings.Split(path, "/")

	switch {
	case len(parts) == 1 && parts[0] == "files":
		m.serveFiles(w)
	case len(parts) == 2 && parts[1] == "search":
		m.serveSearch(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "certificate":
		m.serveCertificate(w, parts[0], parts[2])
	case len(parts) == 3 && parts[1] == "recommendations":
		m.serveRecommendations(w, parts[2])
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// serveSearch pages through the register's records. The continuation token
// is the offset of the next record, mirroring the opaque cursor the real
// service hands out.
func (m *MockEPC) serveSearch(w http.ResponseWriter, r *http.Request, recordType string) {
	m.mu.Lock()
	m.SearchCount++
	records := m.records[recordType]
	m.mu.Unlock()

	size := 25
	if raw := r.URL.Query().Get("size"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			size = parsed
		}
	}

	offset := 0
	if token := r.URL.Query().Get("search-after"); token != "" {
		parsed, err := strconv.Atoi(token)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		offset = parsed
	}

	if offset >= len(records) {
		writeRows(w, nil)
		return
	}

	end := offset + size
	if end > len(records) {
		end = len(records)
	}
	if end < len(records) {
		w.Header().Set(tokenHeader, strconv.Itoa(end))
	}

	writeRows(w, records[offset:end])
}

// serveCertificate finds one record by LMK key.
func (m *MockEPC) serveCertificate(w http.ResponseWriter, recordType, lmkKey string) {
	m.mu.RLock()
	records := m.records[recordType]
	m.mu.RUnlock()

	for _, record := range records {
		if record["lmk-key"] == lmkKey {
			writeRows(w, []map[string]any{record})
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

// serveRecommendations returns the recommendation rows for one LMK key.
func (m *MockEPC) serveRecommendations(w http.ResponseWriter, lmkKey string) {
	m.mu.RLock()
	rows, exists := m.recommendations[lmkKey]
	m.mu.RUnlock()

	if !exists {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeRows(w, rows)
}

// serveFiles returns the bulk-file manifest.
func (m *MockEPC) serveFiles(w http.ResponseWriter) {
	m.mu.RLock()
	files := m.files
	m.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"files": files})
}

// writeRows emits the API's rows body shape.
func writeRows(w http.ResponseWriter, rows []map[string]any) {
	w.Header().Set("Content-Type", "application/json")

	var columns []string
	if len(rows) > 0 {
		for key := range rows[0] {
			columns = append(columns, key)
		}
	}

	json.NewEncoder(w).Encode(map[string]any{
		"column-names": columns,
		"rows":         rows,
	})
}
