package groq

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/newspulse/backend/internal/ratelimit"
)

func chatServer(t *testing.T, reply string, gotPrompt *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if gotPrompt != nil && len(req.Messages) > 0 {
			*gotPrompt = req.Messages[0].Content
		}
		fmt.Fprintf(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": %q,
			"choices": [{"index": 0, "message": {"role": "assistant", "content": %q}, "finish_reason": "stop"}]
		}`, req.Model, reply)
	}))
}

func TestSummarizeHeadlinesBuildsPrompt(t *testing.T) {
	var prompt string
	srv := chatServer(t, "- first\n- second", &prompt)
	defer srv.Close()

	client := New("key", "llama-3.1-70b-versatile", srv.URL, nil, nil)
	summary, err := client.SummarizeHeadlines(context.Background(), []string{"First story", "Second story"})
	if err != nil {
		t.Fatalf("SummarizeHeadlines() error: %v", err)
	}
	if summary != "- first\n- second" {
		t.Errorf("summary = %q", summary)
	}
	for _, want := range []string{"### HEADLINES:", "First story", "### INSTRUCTION:", "### SUMMARY:"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestSummarizeHeadlinesEmptyInput(t *testing.T) {
	client := New("key", "m", "http://unused.invalid", nil, nil)
	if _, err := client.SummarizeHeadlines(context.Background(), nil); err == nil {
		t.Error("expected error for empty headline list")
	}
}

func TestSummarizeRespectsRateLimit(t *testing.T) {
	srv := chatServer(t, "- x", nil)
	defer srv.Close()

	limiter := ratelimit.New(map[string]int{ratelimit.ProviderGroq: 1}, 0)
	client := New("key", "m", srv.URL, limiter, nil)

	if _, err := client.SummarizeHeadlines(context.Background(), []string{"A"}); err != nil {
		t.Fatalf("first call error: %v", err)
	}
	if _, err := client.SummarizeHeadlines(context.Background(), []string{"B"}); err == nil {
		t.Error("second call expected rate-limit error, got nil")
	}
}

func TestClassifyHeadlineParsesVerdict(t *testing.T) {
	srv := chatServer(t, `{"label": "real", "confidence": 0.85}`, nil)
	defer srv.Close()

	client := New("key", "m", srv.URL, nil, nil)
	verdict, err := client.ClassifyHeadline(context.Background(), "Central bank raises rates")
	if err != nil {
		t.Fatalf("ClassifyHeadline() error: %v", err)
	}
	if verdict.Label != "real" || verdict.Confidence != 0.85 {
		t.Errorf("verdict = %+v", verdict)
	}
}

func TestClassifyHeadlineStripsCodeFences(t *testing.T) {
	srv := chatServer(t, "```json\n{\"label\": \"fake\", \"confidence\": 0.9}\n```", nil)
	defer srv.Close()

	client := New("key", "m", srv.URL, nil, nil)
	verdict, err := client.ClassifyHeadline(context.Background(), "Aliens endorse candidate")
	if err != nil {
		t.Fatalf("ClassifyHeadline() error: %v", err)
	}
	if verdict.Label != "fake" {
		t.Errorf("verdict = %+v", verdict)
	}
}

func TestClassifyHeadlineRejectsBadLabel(t *testing.T) {
	srv := chatServer(t, `{"label": "maybe", "confidence": 0.5}`, nil)
	defer srv.Close()

	client := New("key", "m", srv.URL, nil, nil)
	if _, err := client.ClassifyHeadline(context.Background(), "Some headline"); err == nil {
		t.Error("expected error for unknown label")
	}
}

func TestClassifyHeadlineRejectsProse(t *testing.T) {
	srv := chatServer(t, "This headline appears to be real.", nil)
	defer srv.Close()

	client := New("key", "m", srv.URL, nil, nil)
	if _, err := client.ClassifyHeadline(context.Background(), "Some headline"); err == nil {
		t.Error("expected error for non-JSON reply")
	}
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct{ in, want string }{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
	}
	for _, tc := range cases {
		if got := stripCodeFences(tc.in); got != tc.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
