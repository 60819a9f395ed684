package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// NewsAPI settings
	NewsAPIKey   string
	NewsCountry  string
	NewsPageSize int

	// AI settings
	AIProvider        string // "groq" or "gemini"
	GroqAPIKey        string
	GroqModel         string
	GroqBaseURL       string
	GeminiAPIKey      string
	OpenAIAPIKey      string // translation fallback only
	MaxGroqRequests   int    // per day, 0 = unlimited
	MaxGeminiRequests int
	MaxAIRequests     int

	// Social settings
	TwitterBearerToken string
	TwitterQuery       string
	TwitterMaxResults  int
	FacebookToken      string
	FacebookPageID     string

	// Sources and digest settings
	SourcesConfigPath string
	TargetLanguage    string // empty = no translation
	Interests         []string
	MaxHeadlines      int

	// Polling settings
	PollInterval   time.Duration
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration

	// Seen-headline store settings
	StoreBackend  string // "file", "postgres" or "redis"
	SeenFilePath  string
	SeenTTLHours  int
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Delivery settings (optional)
	TelegramToken  string
	TelegramChatID string

	// App settings
	HTTPAddr string
	Debug    bool
}

func Load() (*Config, error) {
	cfg := &Config{
		NewsCountry:       "us",
		NewsPageSize:      20,
		AIProvider:        "groq",
		GroqModel:         "llama-3.1-70b-versatile",
		GroqBaseURL:       "https://api.groq.com/openai/v1",
		MaxGroqRequests:   50,
		MaxGeminiRequests: 50,
		MaxAIRequests:     100,
		TwitterQuery:      "trending",
		TwitterMaxResults: 10,
		SourcesConfigPath: "configs/sources.yaml",
		MaxHeadlines:      30,
		PollInterval:      30 * time.Second,
		RequestTimeout:    15 * time.Second,
		RetryAttempts:     3,
		RetryDelay:        5 * time.Second,
		StoreBackend:      "file",
		SeenFilePath:      "seen_headlines.json",
		SeenTTLHours:      48,
		HTTPAddr:          ":8080",
	}

	cfg.NewsAPIKey = os.Getenv("NEWS_API_KEY")
	cfg.GroqAPIKey = os.Getenv("GROQ_API_KEY")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.TwitterBearerToken = os.Getenv("TWITTER_BEARER_TOKEN")
	cfg.FacebookToken = os.Getenv("FACEBOOK_ACCESS_TOKEN")
	cfg.FacebookPageID = os.Getenv("FACEBOOK_PAGE_ID")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	cfg.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")

	cfg.NewsCountry = getEnvOrDefault("NEWS_COUNTRY", cfg.NewsCountry)
	cfg.NewsPageSize = getEnvIntOrDefault("NEWS_PAGE_SIZE", cfg.NewsPageSize)
	cfg.AIProvider = getEnvOrDefault("AI_PROVIDER", cfg.AIProvider)
	cfg.GroqModel = getEnvOrDefault("GROQ_MODEL", cfg.GroqModel)
	cfg.GroqBaseURL = getEnvOrDefault("GROQ_BASE_URL", cfg.GroqBaseURL)
	cfg.MaxGroqRequests = getEnvIntOrDefault("MAX_GROQ_REQUESTS", cfg.MaxGroqRequests)
	cfg.MaxGeminiRequests = getEnvIntOrDefault("MAX_GEMINI_REQUESTS", cfg.MaxGeminiRequests)
	cfg.MaxAIRequests = getEnvIntOrDefault("MAX_AI_REQUESTS", cfg.MaxAIRequests)
	cfg.TwitterQuery = getEnvOrDefault("TWITTER_QUERY", cfg.TwitterQuery)
	cfg.TwitterMaxResults = getEnvIntOrDefault("TWITTER_MAX_RESULTS", cfg.TwitterMaxResults)
	cfg.SourcesConfigPath = getEnvOrDefault("SOURCES_CONFIG_PATH", cfg.SourcesConfigPath)
	cfg.TargetLanguage = os.Getenv("TARGET_LANGUAGE")
	cfg.MaxHeadlines = getEnvIntOrDefault("MAX_HEADLINES", cfg.MaxHeadlines)
	cfg.PollInterval = getEnvDurationOrDefault("POLL_INTERVAL", cfg.PollInterval)
	cfg.RequestTimeout = getEnvDurationOrDefault("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)
	cfg.RetryDelay = getEnvDurationOrDefault("RETRY_DELAY", cfg.RetryDelay)
	cfg.StoreBackend = getEnvOrDefault("STORE_BACKEND", cfg.StoreBackend)
	cfg.SeenFilePath = getEnvOrDefault("SEEN_FILE_PATH", cfg.SeenFilePath)
	cfg.SeenTTLHours = getEnvIntOrDefault("SEEN_TTL_HOURS", cfg.SeenTTLHours)
	cfg.RedisDB = getEnvIntOrDefault("REDIS_DB", 0)
	cfg.HTTPAddr = getEnvOrDefault("HTTP_ADDR", cfg.HTTPAddr)

	if interests := os.Getenv("INTERESTS"); interests != "" {
		for _, it := range strings.Split(interests, ",") {
			it = strings.TrimSpace(it)
			if it != "" {
				cfg.Interests = append(cfg.Interests, it)
			}
		}
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.NewsAPIKey == "" && c.SourcesConfigPath == "" {
		return fmt.Errorf("NEWS_API_KEY or SOURCES_CONFIG_PATH is required")
	}
	if c.AIProvider != "groq" && c.AIProvider != "gemini" {
		return fmt.Errorf("AI_PROVIDER must be 'groq' or 'gemini'")
	}
	switch c.StoreBackend {
	case "file":
		if c.SeenFilePath == "" {
			return fmt.Errorf("SEEN_FILE_PATH is required for the file store")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis store")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be 'file', 'postgres' or 'redis'")
	}
	if c.TelegramToken != "" && c.TelegramChatID == "" {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}
	if c.PollInterval < time.Second {
		return fmt.Errorf("POLL_INTERVAL must be at least 1s")
	}
	return nil
}

// SummarizationEnabled reports whether the configured AI provider has a key.
func (c *Config) SummarizationEnabled() bool {
	switch c.AIProvider {
	case "groq":
		return c.GroqAPIKey != ""
	case "gemini":
		return c.GeminiAPIKey != ""
	}
	return false
}
