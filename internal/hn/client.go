// Package hn talks to the Hacker News Firebase API.
package hn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/deusflow/hndigest/internal/news"
)

// DefaultBaseURL is the public Hacker News API root.
const DefaultBaseURL = "https://hacker-news.firebaseio.com/v0"

const untitled = "无标题"

// DefaultMaxStories caps the candidate list when Options.MaxStories is unset.
const DefaultMaxStories = 30

// Client lists top stories and resolves item metadata.
type Client struct {
	baseURL    string
	maxStories int
	httpClient *http.Client
	log        *slog.Logger
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL    string
	MaxStories int
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type item struct {
	ID    int64   `json:"id"`
	Title *string `json:"title"`
	URL   string  `json:"url"`
	Type  string  `json:"type"`
}

// NewClient builds a Client.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	maxStories := opts.MaxStories
	if maxStories <= 0 {
		maxStories = DefaultMaxStories
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		maxStories: maxStories,
		httpClient: httpClient,
		log:        logger,
	}
}

// ListCandidates returns top story ids in rank order, minus the excluded ones,
// capped at the configured maximum. Any failure yields an empty slice.
func (c *Client) ListCandidates(ctx context.Context, exclude map[news.ID]struct{}) []news.ID {
	var top []int64
	if err := c.getJSON(ctx, "/topstories.json", &top); err != nil {
		c.log.Error("failed to fetch top stories", "error", err)
		return nil
	}

	var ids []news.ID
	for _, raw := range top {
		if len(ids) >= c.maxStories {
			break
		}
		id := news.ID(strconv.FormatInt(raw, 10))
		if _, seen := exclude[id]; seen {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// FetchMetadata resolves a story. Items without an external url are reported
// as absent, as are network and decode failures.
func (c *Client) FetchMetadata(ctx context.Context, id news.ID) (*news.Story, bool) {
	var it *item
	if err := c.getJSON(ctx, "/item/"+string(id)+".json", &it); err != nil {
		c.log.Error("failed to fetch story details", "id", id, "error", err)
		return nil, false
	}
	if it == nil || it.URL == "" {
		c.log.Debug("story has no external url", "id", id)
		return nil, false
	}

	// Only a missing title gets the placeholder; an empty one is kept.
	title := untitled
	if it.Title != nil {
		title = *it.Title
	}
	return &news.Story{ID: id, Title: title, URL: it.URL}, true
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("hn api returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
