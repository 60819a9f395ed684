package sources

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Feed is a single RSS/Atom feed entry.
type Feed struct {
	Name       string   `yaml:"name"`
	URL        string   `yaml:"url"`
	Lang       string   `yaml:"lang"`
	Categories []string `yaml:"categories"`
}

// ScrapeTarget is a site whose headlines are pulled straight from its HTML.
// Rules are CSS selectors tried in order; empty means the default set.
type ScrapeTarget struct {
	Name  string   `yaml:"name"`
	URL   string   `yaml:"url"`
	Rules []string `yaml:"rules"`
}

// Config is the YAML source list:
//
// feeds:
//   - name: BBC
//     url: https://feeds.bbci.co.uk/news/rss.xml
// scrape:
//   - name: Example
//     url: https://example.com/news
//     rules: ["h2 a"]
type Config struct {
	Feeds  []Feed         `yaml:"feeds"`
	Scrape []ScrapeTarget `yaml:"scrape"`
}

// Load reads the source list from a YAML file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources config: %w", err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse sources config: %w", err)
	}

	for i, feed := range cfg.Feeds {
		if feed.URL == "" {
			return nil, fmt.Errorf("feed #%d has no url", i+1)
		}
	}
	for i, target := range cfg.Scrape {
		if target.URL == "" {
			return nil, fmt.Errorf("scrape target #%d has no url", i+1)
		}
	}
	return &cfg, nil
}
