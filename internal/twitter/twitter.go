package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/newspulse/backend/internal/metrics"
)

const defaultBaseURL = "https://api.twitter.com/2"

// Tweet is one recent-search result with its engagement counts.
type Tweet struct {
	Text      string    `json:"text"`
	Likes     int       `json:"likes"`
	Retweets  int       `json:"retweets"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// Client talks to the Twitter v2 API with a bearer token.
type Client struct {
	bearerToken string
	baseURL     string
	httpClient  *http.Client
}

func New(bearerToken string, timeout time.Duration) *Client {
	return &Client{
		bearerToken: bearerToken,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// WithBaseURL points the client at a different endpoint. Used in tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

type searchResponse struct {
	Data []struct {
		ID            string `json:"id"`
		Text          string `json:"text"`
		CreatedAt     string `json:"created_at"`
		PublicMetrics struct {
			LikeCount    int `json:"like_count"`
			RetweetCount int `json:"retweet_count"`
		} `json:"public_metrics"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// SearchRecent returns recent tweets matching the query.
// The API accepts 10 to 100 results per request, so maxResults is clamped.
func (c *Client) SearchRecent(ctx context.Context, query string, maxResults int) ([]Tweet, error) {
	if maxResults < 10 {
		maxResults = 10
	}
	if maxResults > 100 {
		maxResults = 100
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("max_results", strconv.Itoa(maxResults))
	params.Set("tweet.fields", "public_metrics,created_at")

	endpoint := c.baseURL + "/tweets/search/recent?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twitter request: %w", err)
	}
	defer resp.Body.Close()

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode twitter response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		detail := parsed.Detail
		if detail == "" && len(parsed.Errors) > 0 {
			detail = parsed.Errors[0].Message
		}
		return nil, fmt.Errorf("twitter API status %d: %s", resp.StatusCode, detail)
	}

	tweets := make([]Tweet, 0, len(parsed.Data))
	for _, tw := range parsed.Data {
		created, _ := time.Parse(time.RFC3339, tw.CreatedAt)
		tweets = append(tweets, Tweet{
			Text:      tw.Text,
			Likes:     tw.PublicMetrics.LikeCount,
			Retweets:  tw.PublicMetrics.RetweetCount,
			URL:       "https://twitter.com/i/web/status/" + tw.ID,
			CreatedAt: created,
		})
	}

	metrics.Global.AddTweetsFetched(len(tweets))
	return tweets, nil
}
