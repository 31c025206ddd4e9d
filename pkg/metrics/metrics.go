// Package metrics provides the central Prometheus registry reference for the
// EPC client. All metrics are defined in their respective packages (client,
// pagination, cache, ratelimit, bulk) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the EPC client.
// All metrics are automatically registered via promauto in their respective
// packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - epc_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - epc_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - epc_errors_total{kind} (Counter): Errors by kind (validation, no_results, transport, auth)
//
// Pagination Metrics (pkg/pagination):
//   - epc_searches_total{mode, outcome} (Counter): Search calls by pagination mode and outcome
//   - epc_pages_fetched_total (Counter): Search pages fetched
//   - epc_records_fetched_total (Counter): Search records fetched across all pages
//   - epc_pages_per_search (Histogram): Pages fetched per search call
//
// Cache Metrics (pkg/cache):
//   - epc_cache_hits_total (Counter): Record-lookup cache hits
//   - epc_cache_misses_total (Counter): Record-lookup cache misses
//   - epc_cache_errors_total{operation} (Counter): Cache operation errors
//
// Pacing Metrics (pkg/ratelimit):
//   - epc_pacer_waits_total (Counter): Requests that waited for the pacing interval
//   - epc_pacer_wait_seconds (Histogram): Time spent waiting for the pacing interval
//
// Bulk Download Metrics (pkg/bulk):
//   - epc_bulk_downloads_total{outcome} (Counter): Bulk file downloads by outcome
//   - epc_bulk_bytes_total (Counter): Bytes downloaded from bulk files
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   rate(epc_cache_hits_total[5m]) /
//   (rate(epc_cache_hits_total[5m]) + rate(epc_cache_misses_total[5m]))
//
//   # Request Error Rate
//   rate(epc_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(epc_request_duration_seconds_bucket[5m]))
//
//   # Average Pages per Search
//   rate(epc_pages_fetched_total[5m]) / rate(epc_searches_total[5m])
