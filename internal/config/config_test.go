package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/deusflow/hndigest/internal/rss"
)

// isolate points the loader at an empty directory so a developer's
// configs/hndigest.yaml never leaks into the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HNDIGEST_CONFIG", filepath.Join(dir, "absent.yaml"))
	for _, key := range []string{
		"GEMINI_API_KEY", "GEMINI_MODEL", "MAX_GEMINI_REQUESTS", "HN_API_BASE_URL",
		"MAX_STORIES_TO_FETCH", "USER_AGENT", "EXTRACT_STRATEGY", "RSS_FILE_PATH",
		"MAX_FEED_ENTRIES", "PROCESSED_IDS_FILE", "MAX_PROCESSED_IDS", "ITEM_DELAY",
		"FETCH_TIMEOUT", "REQUEST_TIMEOUT", "METRICS_FILE", "LOG_LEVEL", "DEBUG",
	} {
		t.Setenv(key, "")
	}
	return dir
}

func TestLoadRequiresAPIKey(t *testing.T) {
	isolate(t)

	_, err := Load()
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestMissingAPIKeyFailsBeforeReadingFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(path, []byte("max_feed_entries: [oops"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("HNDIGEST_CONFIG", path)

	_, err := Load()
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey before the file is parsed, got %v", err)
	}
}

func TestLoadRejectsZeroStoryCap(t *testing.T) {
	isolate(t)
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("MAX_STORIES_TO_FETCH", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("MAX_STORIES_TO_FETCH=0 must be rejected")
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("GEMINI_API_KEY", "k")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxStoriesToFetch != 30 || cfg.MaxFeedEntries != 50 || cfg.MaxProcessedIDs != 5000 {
		t.Fatalf("unexpected caps: %+v", cfg)
	}
	if cfg.ItemDelay != 5*time.Second || cfg.FetchTimeout != 15*time.Second {
		t.Fatalf("unexpected timings: delay=%v fetch=%v", cfg.ItemDelay, cfg.FetchTimeout)
	}
	if cfg.RSSFilePath != "hacker_news_summary_zh.xml" || cfg.ProcessedIDsFile != "processed_ids.txt" {
		t.Fatalf("unexpected paths: %q %q", cfg.RSSFilePath, cfg.ProcessedIDsFile)
	}
	if cfg.Channel != rss.DefaultChannel {
		t.Fatalf("unexpected channel: %+v", cfg.Channel)
	}
	if cfg.MaxGeminiRequests != 0 {
		t.Fatalf("gemini budget should default to unlimited, got %d", cfg.MaxGeminiRequests)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "hndigest.yaml")
	yamlDoc := `
max_feed_entries: 20
item_delay: 2s
extract_strategy: readability
channel:
  title: Custom digest
  link: https://example.com/
  description: test
  language: en
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("HNDIGEST_CONFIG", path)
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("MAX_FEED_ENTRIES", "10")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxFeedEntries != 10 {
		t.Fatalf("env should win over file, got %d", cfg.MaxFeedEntries)
	}
	if cfg.ItemDelay != 2*time.Second {
		t.Fatalf("file item_delay not applied, got %v", cfg.ItemDelay)
	}
	if cfg.ExtractStrategy != "readability" {
		t.Fatalf("file strategy not applied, got %q", cfg.ExtractStrategy)
	}
	if cfg.Channel.Title != "Custom digest" || cfg.Channel.Language != "en" {
		t.Fatalf("channel not applied: %+v", cfg.Channel)
	}
	if !cfg.Debug {
		t.Fatalf("DEBUG=true should enable debug")
	}
	if cfg.MaxStoriesToFetch != 30 {
		t.Fatalf("unset keys keep defaults, got %d", cfg.MaxStoriesToFetch)
	}
}

func TestLoadRejectsBadFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(path, []byte("max_feed_entries: [oops"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("HNDIGEST_CONFIG", path)
	t.Setenv("GEMINI_API_KEY", "k")

	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		c := defaults()
		c.GeminiAPIKey = "k"
		return c
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	bad := []func(*Config){
		func(c *Config) { c.MaxFeedEntries = 0 },
		func(c *Config) { c.MaxProcessedIDs = -1 },
		func(c *Config) { c.MaxStoriesToFetch = 0 },
		func(c *Config) { c.ExtractStrategy = "magic" },
		func(c *Config) { c.ItemDelay = -time.Second },
		func(c *Config) { c.MaxGeminiRequests = -2 },
		func(c *Config) { c.RSSFilePath = "" },
	}
	for i, mutate := range bad {
		c := base()
		mutate(c)
		if err := c.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}
