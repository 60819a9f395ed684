package gemini

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/newspulse/backend/internal/cache"
	"github.com/newspulse/backend/internal/metrics"
	"github.com/newspulse/backend/internal/ratelimit"
)

const defaultModel = "gemini-1.5-flash"

// Client wraps the Gemini API as the alternative summarization provider.
type Client struct {
	client  *genai.Client
	model   string
	limiter *ratelimit.AILimiter
	cache   *cache.Cache
}

// NewClient connects to Gemini. model empty means gemini-1.5-flash;
// limiter and cache may be nil.
func NewClient(ctx context.Context, apiKey, model string, limiter *ratelimit.AILimiter, c *cache.Cache) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{client: client, model: model, limiter: limiter, cache: c}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// SummarizeHeadlines produces a bullet-point summary of the headline batch.
func (c *Client) SummarizeHeadlines(ctx context.Context, headlines []string) (string, error) {
	if len(headlines) == 0 {
		return "", errors.New("no headlines to summarize")
	}

	joined := strings.Join(headlines, "\n")
	cacheKey := cache.GenerateKey("gemini-summary", joined)
	if c.cache != nil {
		if cached, ok := c.cache.GetString(cacheKey); ok {
			if c.limiter != nil {
				c.limiter.RecordCacheHit(len(joined) / 4)
			}
			return cached, nil
		}
	}

	prompt := fmt.Sprintf(`Here are today's news headlines:

%s

Summarize them into a concise bullet-point list covering the main themes.
Answer strictly in this format:

SUMMARY: <the bullet-point list>`, capRunes(joined, 6000))

	response, err := c.generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("gemini summarize: %w", err)
	}

	summary := parseLabeled(response, "SUMMARY")
	if c.cache != nil {
		c.cache.Set(cacheKey, summary, 6*time.Hour)
	}
	metrics.Global.IncrementSummariesGenerated()
	return summary, nil
}

// Translate renders text in the target language.
func (c *Client) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	prompt := fmt.Sprintf(`Translate the following text to %s.
Keep names of people, brands and organizations untranslated.
Answer strictly in this format:

TRANSLATION: <the translated text>

Text:
%s`, targetLang, capRunes(text, 6000))

	response, err := c.generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("gemini translate: %w", err)
	}

	metrics.Global.IncrementTranslationsDone()
	return parseLabeled(response, "TRANSLATION"), nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Use(ratelimit.ProviderGemini); err != nil {
			return "", err
		}
	}

	model := c.client.GenerativeModel(c.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no response from gemini")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", errors.New("gemini response had no text parts")
	}
	return b.String(), nil
}

// capRunes trims text to a rune cap, preferring to cut at a sentence end.
func capRunes(text string, maxRunes int) string {
	text = strings.Join(strings.Fields(strings.ReplaceAll(text, "\r", "")), " ")
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)
	trimmed := string(runes[:maxRunes])
	if idx := strings.LastIndex(trimmed, ". "); idx > 1200 {
		trimmed = trimmed[:idx+1]
	}
	return trimmed
}

// parseLabeled pulls the text after "LABEL:" out of a model response. The
// label line may sit anywhere; everything after it belongs to the section.
// When the model skipped the label, the whole response is the answer.
func parseLabeled(response, label string) string {
	re := regexp.MustCompile(`(?i)^` + label + `\s*: ?`)

	lines := strings.Split(response, "\n")
	var b strings.Builder
	found := false

	for _, line := range lines {
		if !found {
			if re.MatchString(strings.TrimSpace(line)) {
				found = true
				rest := re.ReplaceAllString(strings.TrimSpace(line), "")
				if rest != "" {
					b.WriteString(rest)
				}
			}
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(line)
	}

	if !found {
		return strings.TrimSpace(response)
	}
	return strings.TrimSpace(b.String())
}
