// Package blobstore is the HTTP client for the external file storage
// service that holds uploaded binaries.
package blobstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/karmanotes/pipeline/internal/core/domain"
	"github.com/karmanotes/pipeline/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.BlobStore = (*Client)(nil)

const (
	defaultTimeout = 2 * time.Minute

	// maxPayload caps downloaded file size.
	maxPayload = 50 << 20
)

// Client talks to the storage service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a storage client. baseURL is the service endpoint used for
// ingesting external URLs; Fetch works against any stored-file URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// NewWithHTTPClient creates a storage client with a custom HTTP client.
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Fetch downloads the binary at a stored-file URL.
func (c *Client) Fetch(ctx context.Context, sourceURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building fetch request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching stored file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, serviceError(resp)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxPayload))
	if err != nil {
		return nil, fmt.Errorf("reading stored file: %w", err)
	}
	return payload, nil
}

// storeResponse is the service's ingest reply.
type storeResponse struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

// Store asks the storage service to ingest an external URL.
func (c *Client) Store(ctx context.Context, externalURL string) (string, string, error) {
	form := url.Values{"url": {externalURL}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/store", strings.NewReader(form.Encode()))
	if err != nil {
		return "", "", fmt.Errorf("building store request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("storing external file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", serviceError(resp)
	}

	var stored storeResponse
	if err := json.NewDecoder(resp.Body).Decode(&stored); err != nil {
		return "", "", fmt.Errorf("decoding store response: %w", err)
	}
	if stored.URL == "" {
		return "", "", fmt.Errorf("storage service returned no url")
	}
	return stored.URL, stored.Type, nil
}

// serviceError builds a classified error from a non-200 response. The
// body is included truncated; storage services put the reason there.
func serviceError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &domain.ServiceError{
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(body)),
	}
}
