package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/newspulse/backend/internal/retry"
)

// maxBodySize caps response bodies so a misbehaving site can't eat memory.
const maxBodySize = 10 << 20 // 10 MB

const defaultUserAgent = "newspulse/1.0 (+https://github.com/newspulse/backend)"

// StatusError is returned when a fetch finishes with a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %s", e.URL, e.Status)
}

// Client downloads pages with timeouts and retries on transient failures.
type Client struct {
	HTTPClient  *http.Client
	UserAgent   string
	MaxAttempts int
	RetryDelay  time.Duration
}

// New returns a client with sane defaults for news-site scraping.
func New(timeout time.Duration) *Client {
	return &Client{
		HTTPClient:  &http.Client{Timeout: timeout},
		UserAgent:   defaultUserAgent,
		MaxAttempts: 3,
		RetryDelay:  2 * time.Second,
	}
}

// GetHTML downloads the page at rawURL and returns its body as a string.
// Server errors and network hiccups are retried; 4xx responses are not.
func (c *Client) GetHTML(ctx context.Context, rawURL string) (string, error) {
	var body string
	cfg := retry.Config{
		MaxAttempts: c.MaxAttempts,
		Delay:       c.RetryDelay,
		Backoff:     true,
		ShouldRetry: isTransient,
	}
	err := retry.WithRetry(ctx, cfg, func() error {
		var err error
		body, err = c.getOnce(ctx, rawURL)
		return err
	})
	if err != nil {
		return "", err
	}
	return body, nil
}

func (c *Client) getOnce(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &StatusError{URL: rawURL, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("read body of %s: %w", rawURL, err)
	}
	return string(data), nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return defaultUserAgent
}

// isTransient reports whether the error is worth another attempt:
// network failures, timeouts, 5xx responses and 429.
func isTransient(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500 || statusErr.StatusCode == http.StatusTooManyRequests
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF)
}
