// Package extract pulls headline/link pairs out of raw HTML using CSS
// selector rules. It performs no network I/O and keeps no state between
// calls, so it is safe for concurrent use.
package extract

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoHeadlines is returned when no rule matched any usable element.
// Callers should treat it as an expected outcome (wrong selectors for the
// site, or a page without headlines), not as a hard failure.
var ErrNoHeadlines = errors.New("no headlines found")

// MissingLinkSentinel is the link value used when a matched element carries
// no href attribute at all.
const MissingLinkSentinel = "#"

// DefaultRules covers the headline markup conventions of most news sites.
var DefaultRules = []string{
	"h1 a",
	"h2 a",
	"h3 a",
	".headline a",
	".news-title a",
	".entry-title a",
	".post-title a",
}

// Headline is a single extracted (text, link) pair. Text is non-empty and
// whitespace-trimmed; Link is absolute except for the missing-href sentinel.
type Headline struct {
	Text string `json:"text"`
	Link string `json:"link"`
}

// Extract applies the selector rules to the HTML in order and returns the
// deduplicated headlines in discovery order (rule order, then document order
// within a rule). Two matches with the same trimmed text are considered the
// same headline even when their links differ; the first one wins.
//
// Relative hrefs are resolved against baseURL. An element without an href
// gets MissingLinkSentinel and no resolution is attempted. Malformed HTML is
// parsed leniently and a selector that does not compile simply matches
// nothing.
func Extract(html, baseURL string, rules []string) ([]Headline, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	seen := make(map[string]struct{})
	var headlines []Headline

	for _, rule := range rules {
		doc.Find(rule).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if text == "" {
				return
			}
			if _, dup := seen[text]; dup {
				return
			}

			link := MissingLinkSentinel
			if href, ok := s.Attr("href"); ok {
				link = resolveLink(base, href)
			}

			seen[text] = struct{}{}
			headlines = append(headlines, Headline{Text: text, Link: link})
		})
	}

	if len(headlines) == 0 {
		return nil, ErrNoHeadlines
	}
	return headlines, nil
}

// resolveLink makes href absolute relative to base. When base or href cannot
// be parsed the raw href is returned unchanged.
func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
