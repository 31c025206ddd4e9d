package client

import (
	"context"
	"encoding/json"
	"fmt"
)

// FileInfo describes one bulk dataset file offered by the API.
type FileInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// fileManifest is the JSON shape of the bulk-file listing.
type fileManifest struct {
	Files []FileInfo `json:"files"`
}

// Files lists the bulk ZIP files available for download.
func (c *Client) Files(ctx context.Context) ([]FileInfo, error) {
	resp, err := c.do(ctx, c.baseURL+filesPath)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var manifest fileManifest
	if err := json.NewDecoder(resp.Body).Decode(&manifest); err != nil {
		return nil, fmt.Errorf("parse file manifest: %w", err)
	}
	return manifest.Files, nil
}

// FileURL resolves a bulk file name to its download URL. Names are matched
// against the manifest so typos surface before a download starts.
func (c *Client) FileURL(ctx context.Context, name string) (string, error) {
	files, err := c.Files(ctx)
	if err != nil {
		return "", err
	}
	for _, f := range files {
		if f.Name == name {
			if f.URL != "" {
				return f.URL, nil
			}
			return c.baseURL + filesPath + "/" + f.Name, nil
		}
	}
	return "", &APIError{
		Kind:    ErrorKindValidation,
		Message: fmt.Sprintf("unknown bulk file %q", name),
	}
}
