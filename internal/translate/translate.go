package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/newspulse/backend/internal/cache"
	"github.com/newspulse/backend/internal/logger"
	"github.com/newspulse/backend/internal/metrics"
	"github.com/newspulse/backend/internal/ratelimit"
)

const googleTranslateURL = "https://translate.googleapis.com/translate_a/single"

// langNames maps ISO codes to the names used in AI prompts.
var langNames = map[string]string{
	"en": "English", "uk": "Ukrainian", "da": "Danish", "de": "German",
	"sv": "Swedish", "no": "Norwegian", "fr": "French", "es": "Spanish",
	"it": "Italian", "pl": "Polish", "pt": "Portuguese",
}

// Translator translates digest text, trying the free Google endpoint first
// and falling back to OpenAI when a key is configured.
type Translator struct {
	openaiClient *openai.Client
	httpClient   *http.Client
	limiter      *ratelimit.AILimiter
	cache        *cache.Cache
	googleURL    string
}

// New builds a Translator. openaiKey may be empty; the fallback is then
// skipped. limiter and cache may be nil.
func New(openaiKey string, limiter *ratelimit.AILimiter, c *cache.Cache) *Translator {
	t := &Translator{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    limiter,
		cache:      c,
		googleURL:  googleTranslateURL,
	}
	if openaiKey != "" {
		t.openaiClient = openai.NewClient(openaiKey)
	}
	return t
}

// WithGoogleURL overrides the free endpoint. Used in tests.
func (t *Translator) WithGoogleURL(u string) *Translator {
	t.googleURL = u
	return t
}

// Translate converts text from one language to another. An empty source
// means auto-detect. If every service fails, the original text comes back
// with a nil error so the digest still goes out untranslated.
func (t *Translator) Translate(ctx context.Context, text, from, to string) (string, error) {
	if text == "" || to == "" {
		return text, nil
	}
	if from == "" {
		from = "auto"
	}
	if from == to {
		return text, nil
	}

	text = cleanForTranslation(text)

	originalText := text
	if len(text) > 4000 {
		text = text[:4000] + "..."
	}

	cacheKey := cache.GenerateKey("translate", from, to, text)
	if t.cache != nil {
		if cached, ok := t.cache.GetString(cacheKey); ok {
			if t.limiter != nil {
				t.limiter.RecordCacheHit(len(text) / 4)
			}
			return cached, nil
		}
	}

	result, err := t.translateWithGoogle(ctx, text, from, to)
	if err == nil && result != "" && result != text {
		result = SanitizeAIText(result)
		t.finish(cacheKey, result)
		return result, nil
	}
	logger.Debug("Google Translate failed, trying fallback", "from", from, "to", to, "error", errString(err))

	if t.openaiClient != nil {
		result, err := t.translateWithOpenAI(ctx, text, from, to)
		if err == nil && result != "" && result != text {
			result = SanitizeAIText(result)
			t.finish(cacheKey, result)
			return result, nil
		}
		logger.Debug("OpenAI translate failed", "from", from, "to", to, "error", errString(err))
	}

	logger.Warn("All translation services failed, keeping original", "from", from, "to", to)
	metrics.Global.IncrementFailedTranslations()
	return originalText, nil
}

func (t *Translator) finish(cacheKey, result string) {
	if t.cache != nil {
		t.cache.Set(cacheKey, result, 24*time.Hour)
	}
	metrics.Global.IncrementTranslationsDone()
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// translateWithGoogle uses the free public Google Translate endpoint.
func (t *Translator) translateWithGoogle(ctx context.Context, text, from, to string) (string, error) {
	if t.limiter != nil {
		if err := t.limiter.Use(ratelimit.ProviderTranslate); err != nil {
			return "", err
		}
	}

	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", from)
	params.Set("tl", to)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.googleURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read translate response: %w", err)
	}

	return parseGoogleResponse(body)
}

// parseGoogleResponse unpacks the endpoint's nested-array payload:
// [[["translated","original",...],...],...]
func parseGoogleResponse(body []byte) (string, error) {
	var response []interface{}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}
	if len(response) == 0 {
		return "", errors.New("empty translate response")
	}

	segments, ok := response[0].([]interface{})
	if !ok {
		return "", errors.New("unexpected translate response format")
	}

	var result strings.Builder
	for _, segment := range segments {
		if parts, ok := segment.([]interface{}); ok && len(parts) > 0 {
			if translated, ok := parts[0].(string); ok {
				result.WriteString(translated)
			}
		}
	}

	return result.String(), nil
}

// translateWithOpenAI asks the chat model for a plain translation.
func (t *Translator) translateWithOpenAI(ctx context.Context, text, from, to string) (string, error) {
	sourceLang := langNames[from]
	if sourceLang == "" {
		sourceLang = "the source language"
	}
	targetLang := langNames[to]
	if targetLang == "" {
		targetLang = to
	}

	prompt := fmt.Sprintf(`Translate the following %s news text to %s.
Keep the meaning, tone and journalistic style of the original.
Translate only the text itself, without additional comments.

Text to translate:
%s`, sourceLang, targetLang, text)

	reqCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	resp, err := t.openaiClient.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
		Model: openai.GPT3Dot5Turbo,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens: 2000,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// cleanForTranslation flattens text into one line and drops fragments too
// short to translate meaningfully.
func cleanForTranslation(text string) string {
	lines := strings.Split(text, "\n")
	var cleanLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" && len(line) > 5 {
			cleanLines = append(cleanLines, line)
		}
	}

	return strings.Join(cleanLines, " ")
}

var (
	parenDisclaimerRe   = regexp.MustCompile(`(?i)\([^()]*(?:note:|disclaimer|machine translation|translated by|ai-generated)[^()]*\)`)
	bracketDisclaimerRe = regexp.MustCompile(`(?i)\[[^\[\]]*(?:note:|disclaimer|machine translation|translated by|ai-generated)[^\[\]]*\]`)
)

// SanitizeAIText strips the disclaimers AI services sometimes wrap around
// translations, whether inline in parentheses or brackets or as whole lines.
func SanitizeAIText(text string) string {
	if text == "" {
		return ""
	}

	text = parenDisclaimerRe.ReplaceAllString(text, "")
	text = bracketDisclaimerRe.ReplaceAllString(text, "")

	lines := strings.Split(text, "\n")
	var kept []string
	for _, line := range lines {
		trimmed := strings.ToLower(strings.TrimSpace(line))
		if strings.HasPrefix(trimmed, "note:") || strings.HasPrefix(trimmed, "disclaimer:") {
			continue
		}
		kept = append(kept, line)
	}
	text = strings.Join(kept, "\n")

	for strings.Contains(text, "  ") {
		text = strings.ReplaceAll(text, "  ", " ")
	}
	return strings.TrimSpace(text)
}
