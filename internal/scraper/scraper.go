package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/newspulse/backend/internal/extract"
	"github.com/newspulse/backend/internal/logger"
	"github.com/newspulse/backend/internal/metrics"
)

// Fetcher downloads a page and returns its HTML.
type Fetcher interface {
	GetHTML(ctx context.Context, url string) (string, error)
}

// Article is the readable part of a single article page.
type Article struct {
	Title   string
	Content string
	URL     string
}

// ScrapeHeadlines downloads the page at pageURL and extracts its headlines.
// Empty rules fall back to the default selector set.
func ScrapeHeadlines(ctx context.Context, fetcher Fetcher, pageURL string, rules []string) ([]extract.Headline, error) {
	html, err := fetcher.GetHTML(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", pageURL, err)
	}
	if len(rules) == 0 {
		rules = extract.DefaultRules
	}
	headlines, err := extract.Extract(html, pageURL, rules)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", pageURL, err)
	}
	metrics.Global.IncrementPagesScraped()
	return headlines, nil
}

// ExtractArticle downloads an article page and pulls out its readable text.
func ExtractArticle(ctx context.Context, fetcher Fetcher, articleURL string) (*Article, error) {
	html, err := fetcher.GetHTML(ctx, articleURL)
	if err != nil {
		return nil, fmt.Errorf("load article %s: %w", articleURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse article %s: %w", articleURL, err)
	}

	content := cleanContent(extractBodyText(doc))
	if content == "" {
		return nil, fmt.Errorf("no readable content at %s", articleURL)
	}

	return &Article{
		Title:   extractTitle(doc),
		Content: content,
		URL:     articleURL,
	}, nil
}

// extractBodyText walks common content selectors until enough paragraphs show up.
func extractBodyText(doc *goquery.Document) string {
	var paragraphs []string

	selectors := []string{
		"article p",
		".article p",
		".article-body p",
		".content p",
		".post-content p",
		".entry-content p",
		"main p",
		"#content p",
		".text p",
		"p",
	}

	for _, selector := range selectors {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if text != "" && len(text) > 20 {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= 3 { // three paragraphs is enough to call it content
			break
		}
	}

	return strings.Join(paragraphs, "\n\n")
}

// extractTitle gets the article title.
func extractTitle(doc *goquery.Document) string {
	selectors := []string{
		"h1",
		"title",
		".article-title",
		".headline",
		".entry-title",
	}

	for _, selector := range selectors {
		title := strings.TrimSpace(doc.Find(selector).First().Text())
		if title != "" {
			return title
		}
	}

	return ""
}

// cleanContent normalizes article text: strips leftover markup, drops
// boilerplate lines and re-assembles paragraphs.
func cleanContent(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "<br/>", " ")
	content = strings.ReplaceAll(content, "<p>", "\n\n")
	content = strings.ReplaceAll(content, "</p>", "")

	// Strip any remaining tags.
	inTag := false
	var result strings.Builder
	for _, char := range content {
		if char == '<' {
			inTag = true
		} else if char == '>' {
			inTag = false
		} else if !inTag {
			result.WriteRune(char)
		}
	}

	content = strings.TrimSpace(result.String())

	lines := strings.Split(content, "\n")
	var cleanLines []string
	var currentParagraph strings.Builder

	flush := func() {
		paragraph := strings.TrimSpace(currentParagraph.String())
		if len(paragraph) > 30 {
			cleanLines = append(cleanLines, paragraph)
		}
		currentParagraph.Reset()
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)

		if len(line) < 8 {
			if currentParagraph.Len() > 0 {
				flush()
			}
			continue
		}

		if isJunkLine(line) {
			continue
		}

		if currentParagraph.Len() > 0 {
			currentParagraph.WriteString(" ")
		}
		currentParagraph.WriteString(line)

		// Sentence end closes the paragraph.
		if strings.HasSuffix(line, ".") || strings.HasSuffix(line, "!") || strings.HasSuffix(line, "?") {
			flush()
		}
	}
	if currentParagraph.Len() > 0 {
		flush()
	}

	resultText := strings.Join(cleanLines, "\n\n")

	for strings.Contains(resultText, "  ") {
		resultText = strings.ReplaceAll(resultText, "  ", " ")
	}
	for strings.Contains(resultText, "\n\n\n") {
		resultText = strings.ReplaceAll(resultText, "\n\n\n", "\n\n")
	}

	resultText = strings.TrimSpace(resultText)

	// Cap length on a paragraph boundary.
	if len(resultText) > 1800 {
		paragraphs := strings.Split(resultText, "\n\n")
		var selected []string
		totalLength := 0

		for _, paragraph := range paragraphs {
			if totalLength+len(paragraph) >= 1600 {
				break
			}
			selected = append(selected, paragraph)
			totalLength += len(paragraph) + 2
		}

		if len(selected) > 0 {
			resultText = strings.Join(selected, "\n\n")
		}
	}

	return resultText
}

// isJunkLine flags navigation and housekeeping text that shows up inside
// article bodies on most news sites.
func isJunkLine(line string) bool {
	lower := strings.ToLower(line)
	junkIndicators := []string{
		"cookie", "gdpr", "advertisement", "sponsored",
		"read more", "click here", "follow us", "share this",
		"sign up for", "subscribe to", "newsletter", "log in",
		"all rights reserved", "privacy policy", "terms of service",
	}

	for _, indicator := range junkIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// ExtractArticles fetches full text for up to five article URLs, pausing
// between requests so sites aren't hammered.
func ExtractArticles(ctx context.Context, fetcher Fetcher, urls []string) map[string]*Article {
	result := make(map[string]*Article)

	for i, url := range urls {
		if i >= 5 {
			break
		}
		if ctx.Err() != nil {
			break
		}

		article, err := ExtractArticle(ctx, fetcher, url)
		if err != nil {
			logger.Warn("Failed to extract article", "url", url, "error", err.Error())
			continue
		}

		if len(article.Content) > 100 {
			result[url] = article
			logger.Debug("Extracted article", "url", url, "chars", len(article.Content))
		}

		select {
		case <-ctx.Done():
			return result
		case <-time.After(500 * time.Millisecond):
		}
	}

	return result
}
