package pagination

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/epcdata/epc-client/pkg/query"
)

// Prometheus metrics for search pagination.
var (
	epcSearchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "epc_searches_total",
		Help: "Total search calls by pagination mode and outcome",
	}, []string{"mode", "outcome"})

	epcPagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "epc_pages_fetched_total",
		Help: "Total search pages fetched",
	})

	epcRecordsFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "epc_records_fetched_total",
		Help: "Total search records fetched across all pages",
	})

	epcPagesPerSearch = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "epc_pages_per_search",
		Help:    "Number of pages fetched per search call",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200},
	})
)

var (
	// ErrNoResults is returned when the very first page comes back empty.
	ErrNoResults = errors.New("no matching records found")
)

// SearchFetcher issues one authenticated search request. Implementations
// perform exactly one network call per invocation and must return an error
// for network failures and non-2xx statuses.
type SearchFetcher interface {
	SearchPage(ctx context.Context, params query.Params, searchAfter string) (*http.Response, error)
}

// Config controls one search call's pagination behavior.
type Config struct {
	// Mode selects none, manual, or all. Defaults to ModeNone.
	Mode Mode

	// MaxPages caps the number of loop iterations (0 = unlimited).
	MaxPages int

	// MaxRecords is the record ceiling across all pages (0 = no ceiling).
	// Setting it forces Mode to ModeAll.
	MaxRecords int

	// PageDelay is the pause between successive page requests.
	PageDelay time.Duration

	// Logger receives progress and warning events.
	Logger zerolog.Logger
}

// DefaultConfig returns single-page retrieval with a polite inter-page delay.
func DefaultConfig() Config {
	return Config{
		Mode:      ModeNone,
		PageDelay: 500 * time.Millisecond,
	}
}

// Result is a finalized search result.
type Result struct {
	// Records is the concatenation of all fetched pages, trimmed to
	// MaxRecords when a ceiling was set.
	Records *Table

	// Pages is the number of loop iterations, counting an iteration aborted
	// by the page limit before any request was sent.
	Pages int

	// TotalRecords is the row count of Records.
	TotalRecords int

	// NextToken is the continuation token left by the last page in manual
	// mode, empty when pagination is exhausted or mode is not manual.
	NextToken string
}

// state is the mutable pagination state for one in-flight search call.
// It is created per call and never shared.
type state struct {
	pageCount    int
	totalRecords int
	token        string
	pages        []*Table
}

// Orchestrator drives the sequential page-fetch loop.
type Orchestrator struct {
	fetcher SearchFetcher
	cfg     Config
	logger  zerolog.Logger
}

// New creates an orchestrator. A MaxRecords ceiling forces ModeAll, since a
// ceiling is meaningless without automatic pagination; the override is
// logged so callers are not surprised.
func New(fetcher SearchFetcher, cfg Config) (*Orchestrator, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}

	if cfg.Mode == "" {
		cfg.Mode = ModeNone
	}
	if !cfg.Mode.Valid() {
		return nil, fmt.Errorf("unknown pagination mode %q", cfg.Mode)
	}

	logger := cfg.Logger.With().Str("component", "pagination").Logger()

	if cfg.MaxRecords > 0 && cfg.Mode != ModeAll {
		logger.Info().
			Str("requested_mode", string(cfg.Mode)).
			Int("max_records", cfg.MaxRecords).
			Msg("max_records set, forcing pagination mode to all")
		cfg.Mode = ModeAll
	}

	return &Orchestrator{
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// Run executes the pagination loop for the given normalized parameters.
// resumeToken seeds the first request's search-after parameter, allowing a
// manual-mode caller to pick up where a previous call left off.
//
// Each iteration: bump the page counter, compute the next page size, issue
// one request, normalize the page, accumulate it, and ask the continuation
// policy whether to keep going. Termination is guaranteed: the page limit,
// the record ceiling, a missing token, and a short or empty page each end
// the loop independently.
func (o *Orchestrator) Run(ctx context.Context, params query.Params, resumeToken string) (*Result, error) {
	st := &state{token: resumeToken}
	baseSize := params.Size()

	for {
		st.pageCount++

		if o.cfg.MaxPages > 0 && st.pageCount > o.cfg.MaxPages {
			o.logger.Info().
				Int("max_pages", o.cfg.MaxPages).
				Int("records", st.totalRecords).
				Msg("Page limit reached, stopping")
			break
		}

		size := PageSize(baseSize, o.cfg.MaxRecords, st.totalRecords)
		if size <= 0 {
			o.logger.Info().
				Int("max_records", o.cfg.MaxRecords).
				Msg("Record ceiling reached, stopping")
			break
		}

		page, err := o.fetchPage(ctx, params.WithSize(size), st.token)
		if err != nil {
			epcSearchesTotal.WithLabelValues(string(o.cfg.Mode), "error").Inc()
			return nil, err
		}

		epcPagesFetchedTotal.Inc()

		if page.Count == 0 {
			if st.totalRecords == 0 {
				epcSearchesTotal.WithLabelValues(string(o.cfg.Mode), "no_results").Inc()
				return nil, ErrNoResults
			}
			// An empty page after data has arrived is a normal stop.
			o.logger.Debug().Int("page", st.pageCount).Msg("Empty page, pagination exhausted")
			break
		}

		st.pages = append(st.pages, page.Records)
		st.totalRecords += page.Count
		epcRecordsFetchedTotal.Add(float64(page.Count))

		o.logger.Debug().
			Int("page", st.pageCount).
			Int("page_records", page.Count).
			Int("total_records", st.totalRecords).
			Bool("has_token", page.Token != "").
			Msg("Page fetched")

		if !ShouldContinue(o.cfg.Mode, o.cfg.MaxRecords, st.totalRecords, page.Count, size, page.Token) {
			if o.cfg.Mode == ModeManual && page.Token != "" {
				o.logger.Info().
					Str("search_after", page.Token).
					Msg("More pages available, resume with this token")
				st.token = page.Token
			} else {
				st.token = ""
			}
			break
		}

		st.token = page.Token

		if err := o.pause(ctx); err != nil {
			epcSearchesTotal.WithLabelValues(string(o.cfg.Mode), "cancelled").Inc()
			return nil, err
		}
	}

	epcSearchesTotal.WithLabelValues(string(o.cfg.Mode), "ok").Inc()
	epcPagesPerSearch.Observe(float64(st.pageCount))

	return o.finalize(st), nil
}

// fetchPage issues one request and normalizes the response. No retries: a
// failed page fails the whole search.
func (o *Orchestrator) fetchPage(ctx context.Context, params query.Params, token string) (*Page, error) {
	resp, err := o.fetcher.SearchPage(ctx, params, token)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	page, err := NormalizePage(resp)
	if err != nil {
		return nil, fmt.Errorf("normalize page: %w", err)
	}
	return page, nil
}

// pause sleeps between pages to avoid hammering the upstream service. The
// sleep is cancellable via the context.
func (o *Orchestrator) pause(ctx context.Context) error {
	if o.cfg.PageDelay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("pagination cancelled: %w", ctx.Err())
	case <-time.After(o.cfg.PageDelay):
		return nil
	}
}

// finalize concatenates accumulated pages in order and trims to the record
// ceiling. Zero pages yield an empty but well-typed table.
func (o *Orchestrator) finalize(st *state) *Result {
	records := &Table{}
	for _, page := range st.pages {
		records.Append(page)
	}
	if o.cfg.MaxRecords > 0 {
		records.Truncate(o.cfg.MaxRecords)
	}

	return &Result{
		Records:      records,
		Pages:        st.pageCount,
		TotalRecords: records.NumRows(),
		NextToken:    st.token,
	}
}
