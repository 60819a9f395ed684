// Package groq runs summarization and headline classification on Groq's
// OpenAI-compatible API.
package groq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/newspulse/backend/internal/cache"
	"github.com/newspulse/backend/internal/metrics"
	"github.com/newspulse/backend/internal/ratelimit"
)

const DefaultBaseURL = "https://api.groq.com/openai/v1"

// Verdict is the classifier's answer for one headline.
type Verdict struct {
	Label      string  `json:"label"`      // "real", "fake" or "uncertain"
	Confidence float64 `json:"confidence"` // 0.0 to 1.0
}

// Client wraps the Groq chat API for digest work.
type Client struct {
	client  *openai.Client
	model   string
	limiter *ratelimit.AILimiter
	cache   *cache.Cache
}

// New builds a Groq client. baseURL empty means the public endpoint;
// limiter and cache may be nil.
func New(apiKey, model, baseURL string, limiter *ratelimit.AILimiter, c *cache.Cache) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cfg.BaseURL = baseURL

	return &Client{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		limiter: limiter,
		cache:   c,
	}
}

// SummarizeHeadlines turns a headline batch into a concise bullet-point
// summary.
func (c *Client) SummarizeHeadlines(ctx context.Context, headlines []string) (string, error) {
	if len(headlines) == 0 {
		return "", errors.New("no headlines to summarize")
	}

	joined := strings.Join(headlines, "\n")
	cacheKey := cache.GenerateKey("groq-summary", joined)
	if c.cache != nil {
		if cached, ok := c.cache.GetString(cacheKey); ok {
			if c.limiter != nil {
				c.limiter.RecordCacheHit(len(joined) / 4)
			}
			return cached, nil
		}
	}

	prompt := fmt.Sprintf(`### HEADLINES:
%s
### INSTRUCTION:
Summarize the following news headlines into a concise bullet-point list.
### SUMMARY:`, joined)

	content, err := c.complete(ctx, prompt, 1024)
	if err != nil {
		return "", fmt.Errorf("groq summarize: %w", err)
	}

	summary := strings.TrimSpace(content)
	if c.cache != nil {
		c.cache.Set(cacheKey, summary, 6*time.Hour)
	}
	metrics.Global.IncrementSummariesGenerated()
	return summary, nil
}

// ClassifyHeadline asks the model whether a headline reads like real
// reporting or fabricated content. The model must answer in strict JSON;
// anything else is an error the caller can choose to ignore.
func (c *Client) ClassifyHeadline(ctx context.Context, headline string) (Verdict, error) {
	var verdict Verdict
	if strings.TrimSpace(headline) == "" {
		return verdict, errors.New("empty headline")
	}

	cacheKey := cache.GenerateKey("groq-classify", headline)
	if c.cache != nil {
		if cached, ok := c.cache.GetString(cacheKey); ok {
			if err := json.Unmarshal([]byte(cached), &verdict); err == nil {
				if c.limiter != nil {
					c.limiter.RecordCacheHit(len(headline) / 4)
				}
				return verdict, nil
			}
		}
	}

	prompt := fmt.Sprintf(`Classify the following news headline as real reporting or likely fabricated.
Respond with strict JSON only, no prose, in exactly this shape:
{"label": "real" | "fake" | "uncertain", "confidence": <number between 0.0 and 1.0>}

Headline: %s`, headline)

	content, err := c.complete(ctx, prompt, 128)
	if err != nil {
		return verdict, fmt.Errorf("groq classify: %w", err)
	}

	cleaned := stripCodeFences(content)
	if err := json.Unmarshal([]byte(cleaned), &verdict); err != nil {
		return verdict, fmt.Errorf("parse classifier verdict %q: %w", cleaned, err)
	}

	switch verdict.Label {
	case "real", "fake", "uncertain":
	default:
		return verdict, fmt.Errorf("unexpected classifier label %q", verdict.Label)
	}
	if verdict.Confidence < 0 || verdict.Confidence > 1 {
		return verdict, fmt.Errorf("classifier confidence %v out of range", verdict.Confidence)
	}

	if c.cache != nil {
		if payload, err := json.Marshal(verdict); err == nil {
			c.cache.Set(cacheKey, string(payload), 24*time.Hour)
		}
	}
	metrics.Global.IncrementClassificationsDone()
	return verdict, nil
}

func (c *Client) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Use(ratelimit.ProviderGroq); err != nil {
			return "", err
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// stripCodeFences unwraps ```json ... ``` blocks models like to add.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
