package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/newspulse/backend/internal/metrics"
)

const defaultBaseURL = "https://graph.facebook.com/v16.0"

// Graph timestamps look like 2024-05-01T12:30:00+0000.
const createdTimeLayout = "2006-01-02T15:04:05-0700"

// Post is a single page post with a message.
type Post struct {
	Text      string    `json:"text"`
	Permalink string    `json:"permalink"`
	Created   time.Time `json:"created"`
}

// Client reads page posts from the Facebook Graph API.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
}

func New(accessToken string, timeout time.Duration) *Client {
	return &Client{
		accessToken: accessToken,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// WithBaseURL points the client at a different endpoint. Used in tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

type postsResponse struct {
	Data []struct {
		Message      string `json:"message"`
		CreatedTime  string `json:"created_time"`
		PermalinkURL string `json:"permalink_url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// PagePosts returns the page's recent posts. Posts without a message
// (shares, photo-only posts) are skipped.
func (c *Client) PagePosts(ctx context.Context, pageID string) ([]Post, error) {
	params := url.Values{}
	params.Set("fields", "message,created_time,permalink_url")
	params.Set("access_token", c.accessToken)

	endpoint := fmt.Sprintf("%s/%s/posts?%s", c.baseURL, url.PathEscape(pageID), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("facebook request: %w", err)
	}
	defer resp.Body.Close()

	var parsed postsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode facebook response: %w", err)
	}

	if parsed.Error != nil {
		return nil, fmt.Errorf("facebook API error %d (%s): %s",
			parsed.Error.Code, parsed.Error.Type, parsed.Error.Message)
	}

	posts := make([]Post, 0, len(parsed.Data))
	for _, p := range parsed.Data {
		if p.Message == "" {
			continue
		}
		created, _ := time.Parse(createdTimeLayout, p.CreatedTime)
		posts = append(posts, Post{
			Text:      p.Message,
			Permalink: p.PermalinkURL,
			Created:   created,
		})
	}

	metrics.Global.AddPostsFetched(len(posts))
	return posts, nil
}
