// Package httpx holds the HTTP plumbing shared by all source adapters:
// a preconfigured client and a small retrying GET helper.
package httpx

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const userAgent = "trendwatch/1.0 (+https://dailytrending.info)"

const (
	maxAttempts  = 3
	retryBackoff = 300 * time.Millisecond
)

// NewClient returns an HTTP client with the given per-request timeout.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// Get performs a GET with the shared User-Agent, retrying transport
// errors and retryable status codes with linear backoff. The caller owns
// the response body on success.
func Get(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("create request %s: %w", url, err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := client.Do(req)
		if err == nil && !retryableStatus(resp.StatusCode) {
			return resp, nil
		}

		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp.Body.Close()
		}

		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}

	return nil, fmt.Errorf("get %s: failed after %d attempts: %w", url, maxAttempts, lastErr)
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
