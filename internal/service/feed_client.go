package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	feedTimeout        = 60 * time.Second
	feedMaxRetries     = 3
	feedInitialBackoff = 2 * time.Second
)

// FeedClient loads bulletin feeds from a URL or a local file
type FeedClient struct {
	client         *http.Client
	initialBackoff time.Duration
}

// NewFeedClient creates a new FeedClient
func NewFeedClient() *FeedClient {
	return &FeedClient{
		client: &http.Client{
			Timeout: feedTimeout,
		},
		initialBackoff: feedInitialBackoff,
	}
}

// Fetch returns the raw feed at location. http(s) locations are downloaded,
// anything else is read from disk.
func (c *FeedClient) Fetch(ctx context.Context, location string) ([]byte, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		body, err := c.fetchWithRetry(ctx, location)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch feed %s: %w", location, err)
		}
		return body, nil
	}

	body, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed %s: %w", location, err)
	}
	return body, nil
}

// fetchWithRetry performs an HTTP GET with exponential backoff retry
func (c *FeedClient) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	backoff := c.initialBackoff

	for attempt := 0; attempt < feedMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()

		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		return body, nil
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", feedMaxRetries, lastErr)
}
