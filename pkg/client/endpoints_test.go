package client

import (
	"errors"
	"testing"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(DefaultConfig(testCreds()))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return c
}

func TestEndpointURL(t *testing.T) {
	c := testClient(t)

	tests := []struct {
		recordType RecordType
		op         operation
		lmkKey     string
		want       string
	}{
		{Domestic, opSearch, "", DefaultBaseURL + "/domestic/search"},
		{NonDomestic, opSearch, "", DefaultBaseURL + "/non-domestic/search"},
		{Display, opSearch, "", DefaultBaseURL + "/display/search"},
		{Domestic, opCertificate, "1234567890", DefaultBaseURL + "/domestic/certificate/1234567890"},
		{NonDomestic, opRecommendations, "abc", DefaultBaseURL + "/non-domestic/recommendations/abc"},
	}

	for _, tt := range tests {
		got, err := c.endpointURL(tt.recordType, tt.op, tt.lmkKey)
		if err != nil {
			t.Errorf("endpointURL(%s, %s) failed: %v", tt.recordType, tt.op, err)
			continue
		}
		if got != tt.want {
			t.Errorf("endpointURL(%s, %s) = %q, want %q", tt.recordType, tt.op, got, tt.want)
		}
	}
}

func TestEndpointURL_UnknownType(t *testing.T) {
	c := testClient(t)

	_, err := c.endpointURL(RecordType("bogus"), opSearch, "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != ErrorKindValidation {
		t.Errorf("Expected validation APIError, got %v", err)
	}
}

func TestEndpointURL_MissingLMKKey(t *testing.T) {
	c := testClient(t)

	_, err := c.endpointURL(Domestic, opCertificate, "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != ErrorKindValidation {
		t.Errorf("Expected validation APIError, got %v", err)
	}
}

func TestEndpointURL_EscapesLMKKey(t *testing.T) {
	c := testClient(t)

	got, err := c.endpointURL(Domestic, opCertificate, "a b/c")
	if err != nil {
		t.Fatalf("endpointURL() failed: %v", err)
	}
	if got != DefaultBaseURL+"/domestic/certificate/a%20b%2Fc" {
		t.Errorf("endpointURL() = %q, LMK key not path-escaped", got)
	}
}

func TestRecordTypeValid(t *testing.T) {
	for _, rt := range []RecordType{Domestic, NonDomestic, Display} {
		if !rt.Valid() {
			t.Errorf("RecordType %q should be valid", rt)
		}
	}
	if RecordType("bogus").Valid() {
		t.Error("RecordType bogus should be invalid")
	}
}
