package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/epcdata/epc-client/internal/testutil"
	"github.com/epcdata/epc-client/pkg/client"
)

func TestParseRecordType(t *testing.T) {
	tests := []struct {
		input   string
		want    client.RecordType
		wantErr bool
	}{
		{"domestic", client.Domestic, false},
		{"DOMESTIC", client.Domestic, false},
		{"non-domestic", client.NonDomestic, false},
		{"display", client.Display, false},
		{"bogus", "", true},
	}

	for _, tt := range tests {
		got, err := parseRecordType(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseRecordType(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseRecordType(%q) failed: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseRecordType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseFilters(t *testing.T) {
	filters, err := parseFilters([]string{"local_authority=E09000030", "postcode=SW1A"})
	if err != nil {
		t.Fatalf("parseFilters() failed: %v", err)
	}
	if filters["local_authority"] != "E09000030" || filters["postcode"] != "SW1A" {
		t.Errorf("parseFilters() = %v", filters)
	}

	if _, err := parseFilters([]string{"novalue"}); err == nil {
		t.Error("Expected error for filter without =")
	}
	if _, err := parseFilters([]string{"=value"}); err == nil {
		t.Error("Expected error for filter without key")
	}
}

func TestSearchCommand(t *testing.T) {
	mock := testutil.NewMockEPC()
	defer mock.Close()
	mock.SetRecords("domestic", testutil.GenerateRecords(5))

	t.Setenv("EPC_EMAIL", "user@example.com")
	t.Setenv("EPC_API_KEY", "abc123")

	var out, errOut bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{
		"search", "domestic",
		"--base-url", mock.URL(),
		"--filter", "local_authority=E09000030",
	})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() failed: %v\nstderr: %s", err, errOut.String())
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 6 {
		t.Fatalf("Output lines = %d, want header + 5 rows:\n%s", len(lines), out.String())
	}
	if !strings.Contains(lines[0], "lmk_key") {
		t.Errorf("Header = %q, want canonical column names", lines[0])
	}
}

func TestCertificateCommand(t *testing.T) {
	mock := testutil.NewMockEPC()
	defer mock.Close()
	mock.SetRecords("domestic", testutil.GenerateRecords(5))

	t.Setenv("EPC_EMAIL", "user@example.com")
	t.Setenv("EPC_API_KEY", "abc123")

	var out bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"certificate", "domestic", "key-000002",
		"--base-url", mock.URL(),
	})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if !strings.Contains(out.String(), "key-000002") {
		t.Errorf("Output missing record:\n%s", out.String())
	}
}

func TestSearchCommand_UnknownRecordType(t *testing.T) {
	cmd := NewRootCmd("test")
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"search", "bogus", "--filter", "postcode=SW1A"})

	if err := cmd.Execute(); err == nil {
		t.Error("Expected error for unknown record type")
	}
}
