// Package bulk downloads and extracts the ZIP datasets published by the EPC
// open data service.
package bulk

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/epcdata/epc-client/pkg/auth"
)

// Prometheus metrics for bulk downloads.
var (
	epcBulkDownloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "epc_bulk_downloads_total",
		Help: "Total bulk file downloads by outcome",
	}, []string{"outcome"})

	epcBulkBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "epc_bulk_bytes_total",
		Help: "Total bytes downloaded from bulk files",
	})
)

// Downloader fetches bulk ZIP files with the caller's API credentials.
type Downloader struct {
	httpClient *http.Client
	creds      auth.Credentials
	logger     zerolog.Logger
}

// NewDownloader creates a downloader. Bulk files are large, so the HTTP
// client has no overall timeout; cancellation comes from the context.
func NewDownloader(creds auth.Credentials, logger zerolog.Logger) (*Downloader, error) {
	if !creds.Valid() {
		return nil, auth.ErrMissingCredentials
	}
	return &Downloader{
		httpClient: &http.Client{},
		creds:      creds,
		logger:     logger.With().Str("component", "bulk").Logger(),
	}, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (d *Downloader) SetHTTPClient(client *http.Client) {
	d.httpClient = client
}

// Download streams one bulk file to destPath, creating parent directories
// as needed. The partial file is removed on failure.
func (d *Downloader) Download(ctx context.Context, rawURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	token, err := d.creds.BasicToken()
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Basic "+token)

	start := time.Now()
	resp, err := d.httpClient.Do(req)
	if err != nil {
		epcBulkDownloadsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		epcBulkDownloadsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("download %s: unexpected status %s", rawURL, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}

	written, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(destPath)
		epcBulkDownloadsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("write %s: %w", destPath, err)
	}

	epcBulkDownloadsTotal.WithLabelValues("ok").Inc()
	epcBulkBytesTotal.Add(float64(written))

	d.logger.Info().
		Str("url", rawURL).
		Str("dest", destPath).
		Int64("bytes", written).
		Dur("duration", time.Since(start)).
		Msg("Bulk download complete")

	return nil
}

// Extract unpacks a downloaded ZIP archive into destDir. Archive entries
// escaping destDir are rejected.
func Extract(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", archivePath, err)
	}
	defer reader.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create extraction directory: %w", err)
	}

	for _, file := range reader.File {
		if err := extractFile(file, destDir); err != nil {
			return err
		}
	}
	return nil
}

// extractFile writes one archive entry under destDir.
func extractFile(file *zip.File, destDir string) error {
	// Path traversal guard: the entry name itself must be a local path,
	// regardless of whether destDir is relative or absolute.
	if !filepath.IsLocal(filepath.FromSlash(file.Name)) {
		return fmt.Errorf("archive entry %q escapes extraction directory", file.Name)
	}
	target := filepath.Join(destDir, file.Name)

	if file.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", file.Name, err)
	}

	in, err := file.Open()
	if err != nil {
		return fmt.Errorf("open archive entry %s: %w", file.Name, err)
	}
	defer in.Close()

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}

	_, err = io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("extract %s: %w", file.Name, err)
	}
	return nil
}

// DownloadAndExtract downloads one bulk file into workDir and extracts it
// into workDir/<name without .zip>.
func (d *Downloader) DownloadAndExtract(ctx context.Context, rawURL, name, workDir string) (string, error) {
	archivePath := filepath.Join(workDir, name)
	if err := d.Download(ctx, rawURL, archivePath); err != nil {
		return "", err
	}

	extractDir := filepath.Join(workDir, strings.TrimSuffix(name, ".zip"))
	if err := Extract(archivePath, extractDir); err != nil {
		return "", err
	}

	d.logger.Info().Str("dir", extractDir).Msg("Archive extracted")
	return extractDir, nil
}
