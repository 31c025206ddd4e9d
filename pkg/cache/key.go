package cache

import (
	"strings"
)

// Key identifies a cached single-record lookup.
type Key struct {
	// Endpoint is the API path of the lookup
	// (e.g. "/domestic/certificate/1234567890").
	Endpoint string
}

// String generates the deterministic Redis key.
// Format: epc:record:<endpoint with slashes collapsed to colons>
//
// Example:
//
//	epc:record:domestic:certificate:1234567890
func (k Key) String() string {
	endpoint := strings.Trim(k.Endpoint, "/")
	return "epc:record:" + strings.ReplaceAll(endpoint, "/", ":")
}
