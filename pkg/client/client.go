// Package client provides the core EPC open data API client: authenticated
// request building, paginated search, single-record retrieval, file listing,
// and schema introspection.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/epcdata/epc-client/pkg/auth"
	"github.com/epcdata/epc-client/pkg/cache"
	"github.com/epcdata/epc-client/pkg/pagination"
	"github.com/epcdata/epc-client/pkg/query"
	"github.com/epcdata/epc-client/pkg/ratelimit"
)

// Prometheus metrics for EPC API requests.
var (
	epcRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "epc_requests_total",
		Help: "Total EPC API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	epcRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "epc_request_duration_seconds",
		Help:    "EPC API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	epcErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "epc_errors_total",
		Help: "Total EPC API errors by kind",
	}, []string{"kind"})
)

// searchAfterParam carries the continuation token to the API.
const searchAfterParam = "search-after"

// Client is the EPC open data API client.
type Client struct {
	httpClient *http.Client
	creds      auth.Credentials
	baseURL    string
	pacer      *ratelimit.Pacer
	cache      *cache.Manager
	validator  *query.Validator
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// Credentials for HTTP Basic authentication (REQUIRED).
	Credentials auth.Credentials

	// BaseURL overrides the production API root (mostly for tests).
	BaseURL string

	// Redis enables the record cache and cross-process request pacing.
	// Optional; nil disables caching and paces locally.
	Redis *redis.Client

	// UserAgent identifies the application to the API.
	UserAgent string

	// CacheTTL bounds how long single-record lookups are cached.
	CacheTTL time.Duration

	// PaceInterval is the minimum gap between API requests.
	PaceInterval time.Duration

	// Timeout for each HTTP request.
	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(creds auth.Credentials) Config {
	return Config{
		Credentials:  creds,
		BaseURL:      DefaultBaseURL,
		UserAgent:    "epc-client/0.1.0",
		CacheTTL:     cache.DefaultTTL,
		PaceInterval: ratelimit.DefaultInterval,
		Timeout:      30 * time.Second,
	}
}

// New creates a new EPC API client. Missing credentials are rejected here,
// before any request is attempted.
func New(cfg Config) (*Client, error) {
	if !cfg.Credentials.Valid() {
		return nil, &APIError{
			Kind:    ErrorKindAuth,
			Message: "credentials are required",
			Err:     auth.ErrMissingCredentials,
		}
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "epc-client").Logger()

	var cacheManager *cache.Manager
	if cfg.Redis != nil {
		cacheManager = cache.NewManager(cfg.Redis, cfg.CacheTTL)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		creds:     cfg.Credentials,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		pacer:     ratelimit.NewPacer(cfg.Redis, cfg.PaceInterval, logger),
		cache:     cacheManager,
		validator: query.NewValidator(logger),
		config:    cfg,
		logger:    logger,
	}, nil
}

// do paces, authenticates and executes one GET request. Exactly one network
// call is made per invocation; there is no retry. Non-2xx statuses are
// returned as an APIError with the response status.
func (c *Client) do(ctx context.Context, rawURL string) (*http.Response, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	token, err := c.creds.BasicToken()
	if err != nil {
		epcErrorsTotal.WithLabelValues(string(ErrorKindAuth)).Inc()
		return nil, &APIError{Kind: ErrorKindAuth, Message: "no credentials available", Err: err}
	}
	req.Header.Set("Authorization", "Basic "+token)
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	endpoint := req.URL.Path
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	epcRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		epcErrorsTotal.WithLabelValues(string(ErrorKindTransport)).Inc()
		epcRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, &APIError{Kind: ErrorKindTransport, Message: "request failed", Err: err}
	}

	epcRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode >= 400 {
		kind := classifyStatus(resp.StatusCode)
		epcErrorsTotal.WithLabelValues(string(kind)).Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("kind", string(kind)).
			Msg("EPC request error")
		resp.Body.Close()
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Kind:       kind,
			Message:    resp.Status,
		}
	}

	return resp, nil
}

// searchFetcher binds the client to one search endpoint for the pagination
// loop.
type searchFetcher struct {
	client   *Client
	endpoint string
}

// SearchPage issues one search request. The continuation token is merged
// into the existing query parameters as search-after; it never replaces them.
func (f *searchFetcher) SearchPage(ctx context.Context, params query.Params, searchAfter string) (*http.Response, error) {
	values := params.Values()
	if searchAfter != "" {
		values.Set(searchAfterParam, searchAfter)
	}
	return f.client.do(ctx, f.endpoint+"?"+values.Encode())
}

// SearchOptions controls pagination for one search call.
type SearchOptions struct {
	// Mode is the pagination mode (none, manual, all). Defaults to none.
	Mode pagination.Mode

	// MaxPages caps the number of pages fetched (0 = unlimited).
	MaxPages int

	// MaxRecords is the record ceiling; setting it forces Mode to all.
	MaxRecords int

	// PageDelay is the pause between page requests (0 = default).
	PageDelay time.Duration

	// ResumeToken seeds the first request's search-after parameter,
	// continuing a previous manual-mode search.
	ResumeToken string
}

// Search runs a paginated search against one register. Filters accept
// underscore or hyphen field names; at least one filter is required.
func (c *Client) Search(ctx context.Context, recordType RecordType, filters map[string]string, opts SearchOptions) (*pagination.Result, error) {
	endpoint, err := c.endpointURL(recordType, opSearch, "")
	if err != nil {
		return nil, err
	}

	params, err := c.validator.Normalize(filters)
	if err != nil {
		return nil, &APIError{Kind: ErrorKindValidation, Message: "invalid search filters", Err: err}
	}

	delay := opts.PageDelay
	if delay <= 0 {
		delay = pagination.DefaultConfig().PageDelay
	}

	orchestrator, err := pagination.New(&searchFetcher{client: c, endpoint: endpoint}, pagination.Config{
		Mode:       opts.Mode,
		MaxPages:   opts.MaxPages,
		MaxRecords: opts.MaxRecords,
		PageDelay:  delay,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, &APIError{Kind: ErrorKindValidation, Message: "invalid search options", Err: err}
	}

	result, err := orchestrator.Run(ctx, params, opts.ResumeToken)
	if err != nil {
		if errors.Is(err, pagination.ErrNoResults) {
			return nil, &APIError{Kind: ErrorKindNoResults, Message: "search matched no records", Err: err}
		}
		return nil, err
	}

	c.logger.Info().
		Str("record_type", string(recordType)).
		Int("pages", result.Pages).
		Int("records", result.TotalRecords).
		Msg("Search complete")

	return result, nil
}

// fetchRecord performs one cached single-record lookup and normalizes the
// response into a table.
func (c *Client) fetchRecord(ctx context.Context, rawURL string) (*pagination.Table, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	key := cache.Key{Endpoint: parsed.Path}

	if c.cache != nil {
		if entry, err := c.cache.Get(ctx, key); err == nil {
			c.logger.Debug().Str("endpoint", parsed.Path).Msg("Record served from cache")
			return normalizeRecord(cache.EntryToResponse(entry))
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("endpoint", parsed.Path).Msg("Cache get error")
		}
	}

	resp, err := c.do(ctx, rawURL)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, parsed.Path)
		}
		return nil, err
	}
	defer resp.Body.Close()

	if c.cache != nil {
		entry, err := cache.ResponseToEntry(resp)
		if err != nil {
			return nil, fmt.Errorf("read record response: %w", err)
		}
		if err := c.cache.Set(ctx, key, entry); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache record")
		}
		return normalizeRecord(cache.EntryToResponse(entry))
	}

	return normalizeRecord(resp)
}

// normalizeRecord reuses the search-page normalizer; the single-record
// endpoints return the same rows shape with exactly one row.
func normalizeRecord(resp *http.Response) (*pagination.Table, error) {
	defer resp.Body.Close()
	page, err := pagination.NormalizePage(resp)
	if err != nil {
		return nil, err
	}
	if page.Count == 0 {
		return nil, ErrNotFound
	}
	return page.Records, nil
}

// Certificate retrieves one certificate by its LMK key.
func (c *Client) Certificate(ctx context.Context, recordType RecordType, lmkKey string) (*pagination.Table, error) {
	endpoint, err := c.endpointURL(recordType, opCertificate, lmkKey)
	if err != nil {
		return nil, err
	}
	return c.fetchRecord(ctx, endpoint)
}

// Recommendations retrieves the improvement recommendations for one
// certificate by its LMK key.
func (c *Client) Recommendations(ctx context.Context, recordType RecordType, lmkKey string) (*pagination.Table, error) {
	endpoint, err := c.endpointURL(recordType, opRecommendations, lmkKey)
	if err != nil {
		return nil, err
	}
	return c.fetchRecord(ctx, endpoint)
}

// Schema reports the canonical column names served by a register. The API
// has no schema endpoint, so the columns are introspected from a one-record
// sample search using the given filters.
func (c *Client) Schema(ctx context.Context, recordType RecordType, filters map[string]string) ([]string, error) {
	endpoint, err := c.endpointURL(recordType, opSearch, "")
	if err != nil {
		return nil, err
	}

	params, err := c.validator.Normalize(filters)
	if err != nil {
		return nil, &APIError{Kind: ErrorKindValidation, Message: "invalid sample filters", Err: err}
	}

	fetcher := &searchFetcher{client: c, endpoint: endpoint}
	resp, err := fetcher.SearchPage(ctx, params.WithSize(1), "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	page, err := pagination.NormalizePage(resp)
	if err != nil {
		return nil, err
	}
	if page.Count == 0 {
		return nil, &APIError{Kind: ErrorKindNoResults, Message: "sample search matched no records", Err: pagination.ErrNoResults}
	}
	return page.Records.Columns, nil
}

// Close releases client resources.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
