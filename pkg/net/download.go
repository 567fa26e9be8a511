package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxDownloadBytes caps the size of a fetched document.
const MaxDownloadBytes int64 = 512 << 20

var ErrorURLNotFound = errors.New("URL not found")

func getResp(ctx context.Context, c *http.Client, url string) (*http.Response, error) {
	if c == nil {
		var err error
		if c, err = GetHTTPClient(); err != nil {
			return nil, fmt.Errorf("error creating HTTP client: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP Get request: %w", err)
	}

	req.Header.Set("User-Agent", clientAgent)

	resp, err := c.Do(req) //nolint:gosec // URL comes from operator configuration
	if err != nil {
		return nil, err
	}
	PrintHTTPResponse(resp)

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, ErrorURLNotFound
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("error downloading file (status: %d - %s): %s", resp.StatusCode, resp.Status, url)
	}

	return resp, nil
}

// Fetch returns the body of url. A nil client uses GetHTTPClient.
func Fetch(ctx context.Context, c *http.Client, url string) ([]byte, error) {
	resp, err := getResp(ctx, c, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("error reading downloaded content: %w", err)
	}
	if int64(len(b)) > MaxDownloadBytes {
		return nil, fmt.Errorf("downloaded content exceeds %d bytes: %s", MaxDownloadBytes, url)
	}
	return b, nil
}
