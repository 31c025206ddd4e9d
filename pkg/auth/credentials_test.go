package auth

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestBasicToken(t *testing.T) {
	creds := Credentials{Email: "user@example.com", APIKey: "abc123"}

	token, err := creds.BasicToken()
	if err != nil {
		t.Fatalf("BasicToken() failed: %v", err)
	}

	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		t.Fatalf("Token is not valid Base64: %v", err)
	}
	if string(decoded) != "user@example.com:abc123" {
		t.Errorf("Decoded token = %q, want %q", decoded, "user@example.com:abc123")
	}
}

func TestBasicToken_Missing(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
	}{
		{"empty", Credentials{}},
		{"no email", Credentials{APIKey: "abc123"}},
		{"no key", Credentials{Email: "user@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.creds.BasicToken()
			if !errors.Is(err, ErrMissingCredentials) {
				t.Errorf("Expected ErrMissingCredentials, got %v", err)
			}
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvEmail, "env@example.com")
	t.Setenv(EnvAPIKey, "envkey")

	creds, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() failed: %v", err)
	}
	if creds.Email != "env@example.com" || creds.APIKey != "envkey" {
		t.Errorf("FromEnv() = %+v, want env values", creds)
	}
}

func TestFromEnv_Missing(t *testing.T) {
	t.Setenv(EnvEmail, "")
	t.Setenv(EnvAPIKey, "")

	if _, err := FromEnv(); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("Expected ErrMissingCredentials, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := []byte("credentials:\n  email: file@example.com\n  api_key: filekey\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	creds, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if creds.Email != "file@example.com" || creds.APIKey != "filekey" {
		t.Errorf("LoadFile() = %+v, want file values", creds)
	}
}

func TestLoadFile_NoCredentialsSection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("other: value\n"), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := LoadFile(path); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("Expected ErrMissingCredentials, got %v", err)
	}
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := []byte("credentials:\n  email: file@example.com\n  api_key: filekey\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	t.Setenv(EnvEmail, "env@example.com")
	t.Setenv(EnvAPIKey, "envkey")

	creds, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if creds.Email != "env@example.com" {
		t.Errorf("Email = %q, environment should take precedence", creds.Email)
	}
}

func TestLoad_MissingEverywhere(t *testing.T) {
	t.Setenv(EnvEmail, "")
	t.Setenv(EnvAPIKey, "")

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("Expected ErrMissingCredentials, got %v", err)
	}
}
