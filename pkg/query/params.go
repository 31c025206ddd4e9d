// Package query normalizes and validates user-supplied search filters for the
// EPC open data API. The API expects hyphenated parameter names on the wire
// (local-authority); callers may supply either underscore or hyphen form.
package query

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Page size bounds enforced by the API.
const (
	// DefaultPageSize is used when the caller does not set size.
	DefaultPageSize = 25

	// MaxPageSize is the hard upper bound accepted by the API.
	MaxPageSize = 5000
)

var (
	// ErrEmptyFilter is returned when no filter parameters are supplied.
	// Interactive search requires at least one discriminating parameter;
	// full-dataset retrieval goes through the bulk download path instead.
	ErrEmptyFilter = errors.New("at least one search filter is required")

	// ErrInvalidSize is returned when size is present but not a positive number.
	ErrInvalidSize = errors.New("size must be a positive number")
)

// Params is a normalized filter mapping ready for query-string encoding.
// Keys are in canonical hyphenated wire form.
type Params map[string]string

// Validator normalizes filter parameters. Warnings (such as clamping an
// oversized page request) are emitted as structured log events so callers
// and tests can observe them without the validator writing to the console.
type Validator struct {
	logger zerolog.Logger
}

// NewValidator creates a validator that reports warnings to the given logger.
func NewValidator(logger zerolog.Logger) *Validator {
	return &Validator{logger: logger}
}

// Normalize validates raw filters and returns the canonical parameter
// mapping. Field names have underscores replaced with hyphens; the size
// field is bounds-checked and defaulted. Normalization is idempotent:
// running the output through Normalize again yields the same mapping.
func (v *Validator) Normalize(filters map[string]string) (Params, error) {
	params := make(Params, len(filters)+1)
	discriminating := 0
	for name, value := range filters {
		canonical := CanonicalField(name)
		if canonical != "size" {
			discriminating++
		}
		params[canonical] = value
	}

	// A size override is not a filter: it narrows nothing, so alone it
	// would request the entire register one page at a time.
	if discriminating == 0 {
		return nil, ErrEmptyFilter
	}

	size, err := v.normalizeSize(params["size"])
	if err != nil {
		return nil, err
	}
	params["size"] = strconv.Itoa(size)

	return params, nil
}

// normalizeSize applies the [1, MaxPageSize] bounds with default fallback.
func (v *Validator) normalizeSize(raw string) (int, error) {
	if raw == "" {
		return DefaultPageSize, nil
	}

	size, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, raw)
	}
	if size < 1 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	if size > MaxPageSize {
		v.logger.Warn().
			Int("requested", size).
			Int("clamped", MaxPageSize).
			Msg("Page size exceeds API maximum, clamping")
		return MaxPageSize, nil
	}
	return size, nil
}

// Size returns the page size carried in the params, or DefaultPageSize when
// absent or unparseable. Normalized params always carry a valid size.
func (p Params) Size() int {
	size, err := strconv.Atoi(p["size"])
	if err != nil || size < 1 {
		return DefaultPageSize
	}
	return size
}

// WithSize returns a copy of the params with size replaced.
func (p Params) WithSize(size int) Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	out["size"] = strconv.Itoa(size)
	return out
}

// Values converts the params to url.Values for query-string encoding.
func (p Params) Values() url.Values {
	values := make(url.Values, len(p))
	for k, v := range p {
		values.Set(k, v)
	}
	return values
}

// CanonicalField converts a filter name to the hyphenated wire form.
func CanonicalField(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}
