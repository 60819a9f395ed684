package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/newspulse/backend/internal/extract"
	"github.com/newspulse/backend/internal/metrics"
)

const defaultBaseURL = "https://newsapi.org/v2"

// Article is one story from the NewsAPI top-headlines response.
type Article struct {
	Title       string
	URL         string
	Source      string
	Description string
	PublishedAt time.Time
}

// Client talks to newsapi.org.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New returns a NewsAPI client. An empty key is allowed; calls will just
// fail with the API's own error, which keeps configuration checks in one place.
func New(apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithBaseURL points the client at a different endpoint. Used in tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

type topHeadlinesResponse struct {
	Status       string `json:"status"`
	Code         string `json:"code"`
	Message      string `json:"message"`
	TotalResults int    `json:"totalResults"`
	Articles     []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// TopHeadlines fetches the current top headlines for a country.
// Stories without a link keep the placeholder used across the app.
func (c *Client) TopHeadlines(ctx context.Context, country string, pageSize int) ([]Article, error) {
	params := url.Values{}
	params.Set("country", country)
	if pageSize > 0 {
		params.Set("pageSize", strconv.Itoa(pageSize))
	}

	endpoint := c.baseURL + "/top-headlines?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsapi request: %w", err)
	}
	defer resp.Body.Close()

	var parsed topHeadlinesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode newsapi response: %w", err)
	}

	if parsed.Status != "ok" {
		return nil, fmt.Errorf("newsapi error %s: %s", parsed.Code, parsed.Message)
	}

	articles := make([]Article, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		if a.Title == "" {
			continue
		}
		link := a.URL
		if link == "" {
			link = extract.MissingLinkSentinel
		}
		published, _ := time.Parse(time.RFC3339, a.PublishedAt)
		articles = append(articles, Article{
			Title:       a.Title,
			URL:         link,
			Source:      a.Source.Name,
			Description: a.Description,
			PublishedAt: published,
		})
	}

	metrics.Global.IncrementAPIFetches()
	return articles, nil
}
