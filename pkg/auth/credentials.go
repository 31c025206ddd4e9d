// Package auth handles credentials for the EPC open data API.
// The API uses HTTP Basic authentication with the account email as the
// username and the issued API key as the password.
package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables consulted by FromEnv.
const (
	EnvEmail  = "EPC_EMAIL"
	EnvAPIKey = "EPC_API_KEY"
)

var (
	// ErrMissingCredentials is returned when no email/key pair is configured.
	ErrMissingCredentials = errors.New("no API credentials configured")
)

// Credentials is an explicit email/key pair for the EPC API.
// It is passed to the client by the caller; there is no ambient global state.
type Credentials struct {
	Email  string `yaml:"email"`
	APIKey string `yaml:"api_key"`
}

// Valid reports whether both fields are set.
func (c Credentials) Valid() bool {
	return c.Email != "" && c.APIKey != ""
}

// BasicToken returns the Base64-encoded "email:key" credential for the
// Authorization header. Returns ErrMissingCredentials if either field is empty.
func (c Credentials) BasicToken() (string, error) {
	if !c.Valid() {
		return "", ErrMissingCredentials
	}
	return base64.StdEncoding.EncodeToString([]byte(c.Email + ":" + c.APIKey)), nil
}

// FromEnv reads credentials from EPC_EMAIL / EPC_API_KEY.
func FromEnv() (Credentials, error) {
	creds := Credentials{
		Email:  os.Getenv(EnvEmail),
		APIKey: os.Getenv(EnvAPIKey),
	}
	if !creds.Valid() {
		return Credentials{}, ErrMissingCredentials
	}
	return creds, nil
}

// configFile is the on-disk YAML config shape.
type configFile struct {
	Credentials Credentials `yaml:"credentials"`
}

// LoadFile reads credentials from a YAML config file.
func LoadFile(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("read config file: %w", err)
	}

	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Credentials{}, fmt.Errorf("parse config file: %w", err)
	}

	if !cfg.Credentials.Valid() {
		return Credentials{}, fmt.Errorf("%w: %s has no credentials section", ErrMissingCredentials, path)
	}
	return cfg.Credentials, nil
}

// DefaultConfigPath returns ~/.epc/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".epc", "config.yaml"), nil
}

// Load resolves credentials from the environment first, then the config file
// at path (or the default path when path is empty). Environment wins so CI
// and one-off overrides do not require editing the file.
func Load(path string) (Credentials, error) {
	if creds, err := FromEnv(); err == nil {
		return creds, nil
	}

	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return Credentials{}, err
		}
	}

	creds, err := LoadFile(path)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, os.ErrNotExist) {
			return Credentials{}, ErrMissingCredentials
		}
		return Credentials{}, err
	}
	return creds, nil
}
