// Package telegram delivers digest messages to a chat or channel.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/newspulse/backend/internal/logger"
	"github.com/newspulse/backend/internal/metrics"
)

const defaultAPIURL = "https://api.telegram.org"

// Client sends messages through the Bot API with retry and backoff.
type Client struct {
	token       string
	chatID      string
	apiURL      string
	httpClient  *http.Client
	maxRetries  int
	backoffBase time.Duration
}

func New(token, chatID string) *Client {
	return &Client{
		token:       token,
		chatID:      chatID,
		apiURL:      defaultAPIURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		maxRetries:  3,
		backoffBase: time.Second,
	}
}

// WithAPIURL points the client at a different endpoint. Used in tests.
func (c *Client) WithAPIURL(u string) *Client {
	c.apiURL = u
	return c
}

// SendMessage delivers text with exponential backoff between attempts.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		lastErr = c.sendMessageOnce(ctx, text)
		if lastErr == nil {
			logger.Debug("Message sent to Telegram", "attempt", attempt)
			metrics.Global.IncrementNotificationsSent()
			return nil
		}

		logger.Warn("Telegram send failed", "attempt", attempt, "max", c.maxRetries, "error", lastErr.Error())

		if attempt < c.maxRetries {
			// Exponential backoff: 2^attempt * base
			wait := time.Duration(1<<attempt) * c.backoffBase
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
	}

	return fmt.Errorf("send message after %d tries: %w", c.maxRetries, lastErr)
}

func (c *Client) sendMessageOnce(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.apiURL, c.token)

	payload := map[string]interface{}{
		"chat_id":                  c.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API status %d", resp.StatusCode)
	}
	return nil
}
