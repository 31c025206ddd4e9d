package client

import (
	"fmt"
	"net/url"
)

// DefaultBaseURL is the production EPC open data API root.
const DefaultBaseURL = "https://epc.opendatacommunities.org/api/v1"

// RecordType selects one of the certificate registers served by the API.
type RecordType string

const (
	// Domestic certificates (houses, flats).
	Domestic RecordType = "domestic"

	// NonDomestic certificates (commercial and other non-dwelling buildings).
	NonDomestic RecordType = "non-domestic"

	// Display energy certificates (public buildings).
	Display RecordType = "display"
)

// Valid reports whether the record type is one of the served registers.
func (r RecordType) Valid() bool {
	switch r {
	case Domestic, NonDomestic, Display:
		return true
	}
	return false
}

// operation identifies one API operation within a register.
type operation string

const (
	opSearch          operation = "search"
	opCertificate     operation = "certificate"
	opRecommendations operation = "recommendations"
)

// endpointPaths maps record type and operation to the API path template.
// Certificate and recommendation paths take the LMK key as a suffix.
var endpointPaths = map[RecordType]map[operation]string{
	Domestic: {
		opSearch:          "/domestic/search",
		opCertificate:     "/domestic/certificate",
		opRecommendations: "/domestic/recommendations",
	},
	NonDomestic: {
		opSearch:          "/non-domestic/search",
		opCertificate:     "/non-domestic/certificate",
		opRecommendations: "/non-domestic/recommendations",
	},
	Display: {
		opSearch:          "/display/search",
		opCertificate:     "/display/certificate",
		opRecommendations: "/display/recommendations",
	},
}

// filesPath is the bulk-file manifest endpoint.
const filesPath = "/files"

// endpointURL resolves the full URL for an operation. lmkKey is appended as a
// path segment for the single-record operations and must be empty for search.
func (c *Client) endpointURL(recordType RecordType, op operation, lmkKey string) (string, error) {
	paths, ok := endpointPaths[recordType]
	if !ok {
		return "", &APIError{
			Kind:    ErrorKindValidation,
			Message: fmt.Sprintf("unknown record type %q", recordType),
		}
	}
	path := paths[op]

	if op != opSearch {
		if lmkKey == "" {
			return "", &APIError{
				Kind:    ErrorKindValidation,
				Message: "LMK key is required",
			}
		}
		path += "/" + url.PathEscape(lmkKey)
	}

	return c.baseURL + path, nil
}
