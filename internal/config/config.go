// Package config loads the job settings from defaults, an optional YAML file
// and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/deusflow/hndigest/internal/gemini"
	"github.com/deusflow/hndigest/internal/hn"
	"github.com/deusflow/hndigest/internal/rss"
	"github.com/deusflow/hndigest/internal/scraper"
)

// DefaultConfigPath is read when HNDIGEST_CONFIG is unset.
const DefaultConfigPath = "configs/hndigest.yaml"

// ErrMissingAPIKey is returned by Validate when no Gemini key is configured.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is required")

type Config struct {
	// Gemini settings
	GeminiAPIKey      string `yaml:"-"`
	GeminiModel       string `yaml:"gemini_model"`
	MaxGeminiRequests int    `yaml:"max_gemini_requests"` // per run, 0 = unlimited

	// Hacker News settings
	HNAPIBaseURL      string `yaml:"hn_api_base_url"`
	MaxStoriesToFetch int    `yaml:"max_stories_to_fetch"`

	// Extraction settings
	UserAgent       string `yaml:"user_agent"`
	ExtractStrategy string `yaml:"extract_strategy"` // paragraphs | readability

	// Feed settings
	RSSFilePath    string      `yaml:"rss_file_path"`
	MaxFeedEntries int         `yaml:"max_feed_entries"`
	Channel        rss.Channel `yaml:"channel"`

	// Dedup settings
	ProcessedIDsFile string `yaml:"processed_ids_file"`
	MaxProcessedIDs  int    `yaml:"max_processed_ids"`

	// App settings
	ItemDelay      time.Duration `yaml:"item_delay"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MetricsFile    string        `yaml:"metrics_file"`
	LogLevel       string        `yaml:"log_level"`
	Debug          bool          `yaml:"debug"`
}

func defaults() *Config {
	return &Config{
		GeminiModel:       gemini.DefaultModel,
		HNAPIBaseURL:      hn.DefaultBaseURL,
		MaxStoriesToFetch: 30,
		UserAgent:         scraper.DefaultUserAgent,
		ExtractStrategy:   scraper.StrategyParagraphs,
		RSSFilePath:       "hacker_news_summary_zh.xml",
		MaxFeedEntries:    50,
		Channel:           rss.DefaultChannel,
		ProcessedIDsFile:  "processed_ids.txt",
		MaxProcessedIDs:   5000,
		ItemDelay:         5 * time.Second,
		FetchTimeout:      15 * time.Second,
		RequestTimeout:    30 * time.Second,
		LogLevel:          "info",
	}
}

func Load() (*Config, error) {
	cfg := defaults()

	// The key is checked before any file is read.
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	if cfg.GeminiAPIKey == "" {
		return nil, ErrMissingAPIKey
	}

	path := getEnvOrDefault("HNDIGEST_CONFIG", DefaultConfigPath)
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	// Load from environment
	cfg.GeminiModel = getEnvOrDefault("GEMINI_MODEL", cfg.GeminiModel)
	cfg.MaxGeminiRequests = getEnvIntOrDefault("MAX_GEMINI_REQUESTS", cfg.MaxGeminiRequests)

	cfg.HNAPIBaseURL = getEnvOrDefault("HN_API_BASE_URL", cfg.HNAPIBaseURL)
	cfg.MaxStoriesToFetch = getEnvIntOrDefault("MAX_STORIES_TO_FETCH", cfg.MaxStoriesToFetch)

	cfg.UserAgent = getEnvOrDefault("USER_AGENT", cfg.UserAgent)
	cfg.ExtractStrategy = getEnvOrDefault("EXTRACT_STRATEGY", cfg.ExtractStrategy)

	cfg.RSSFilePath = getEnvOrDefault("RSS_FILE_PATH", cfg.RSSFilePath)
	cfg.MaxFeedEntries = getEnvIntOrDefault("MAX_FEED_ENTRIES", cfg.MaxFeedEntries)

	cfg.ProcessedIDsFile = getEnvOrDefault("PROCESSED_IDS_FILE", cfg.ProcessedIDsFile)
	cfg.MaxProcessedIDs = getEnvIntOrDefault("MAX_PROCESSED_IDS", cfg.MaxProcessedIDs)

	cfg.ItemDelay = getEnvDurationOrDefault("ITEM_DELAY", cfg.ItemDelay)
	cfg.FetchTimeout = getEnvDurationOrDefault("FETCH_TIMEOUT", cfg.FetchTimeout)
	cfg.RequestTimeout = getEnvDurationOrDefault("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.MetricsFile = getEnvOrDefault("METRICS_FILE", cfg.MetricsFile)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

// loadFile overlays the YAML file at path. A missing file is not an error.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
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
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return ErrMissingAPIKey
	}
	if c.MaxFeedEntries <= 0 {
		return fmt.Errorf("MAX_FEED_ENTRIES must be positive")
	}
	if c.MaxProcessedIDs <= 0 {
		return fmt.Errorf("MAX_PROCESSED_IDS must be positive")
	}
	if c.MaxStoriesToFetch <= 0 {
		return fmt.Errorf("MAX_STORIES_TO_FETCH must be positive")
	}
	if c.MaxGeminiRequests < 0 {
		return fmt.Errorf("MAX_GEMINI_REQUESTS must not be negative")
	}
	if c.ItemDelay < 0 {
		return fmt.Errorf("ITEM_DELAY must not be negative")
	}
	if c.ExtractStrategy != scraper.StrategyParagraphs && c.ExtractStrategy != scraper.StrategyReadability {
		return fmt.Errorf("EXTRACT_STRATEGY must be '%s' or '%s'", scraper.StrategyParagraphs, scraper.StrategyReadability)
	}
	if c.RSSFilePath == "" || c.ProcessedIDsFile == "" {
		return fmt.Errorf("RSS_FILE_PATH and PROCESSED_IDS_FILE must be set")
	}
	return nil
}
