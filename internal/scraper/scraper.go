package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

const (
	// StrategyParagraphs keeps long <p> blocks and falls back to body text.
	StrategyParagraphs = "paragraphs"
	// StrategyReadability runs go-readability first, then the paragraph heuristic.
	StrategyReadability = "readability"

	// DefaultUserAgent mimics a desktop browser; many hosts reject bare Go clients.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 10 << 20
)

// Extractor fetches a story page and turns it into plain text.
type Extractor struct {
	client    *http.Client
	userAgent string
	strategy  string
	log       *slog.Logger
}

// Options configures an Extractor.
type Options struct {
	Timeout    time.Duration
	UserAgent  string
	Strategy   string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// New makes an Extractor. Unset options get the defaults above.
func New(opts Options) *Extractor {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	strategy := opts.Strategy
	if strategy == "" {
		strategy = StrategyParagraphs
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{client: client, userAgent: ua, strategy: strategy, log: logger}
}

// Extract gets the readable text of the page at pageURL. It reports false for
// non-HTML responses, transport or parse errors, and pages without text.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (string, bool) {
	body, err := e.fetch(ctx, pageURL)
	if err != nil {
		e.log.Warn("can't fetch article", "url", pageURL, "error", err)
		return "", false
	}
	if body == nil {
		return "", false
	}

	var text string
	if e.strategy == StrategyReadability {
		text = e.readable(body, pageURL)
	}
	if text == "" {
		text, err = paragraphText(body)
		if err != nil {
			e.log.Warn("can't parse article", "url", pageURL, "error", err)
			return "", false
		}
	}
	if text == "" {
		e.log.Warn("no text found in article", "url", pageURL)
		return "", false
	}
	return text, true
}

// fetch returns the HTML payload, or nil without error when the response is
// not HTML.
func (e *Extractor) fetch(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error loading page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		e.log.Warn("skipping non-HTML content", "content_type", contentType, "url", pageURL)
		return nil, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func (e *Extractor) readable(body []byte, pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(bytes.NewReader(body), parsed)
	if err != nil {
		e.log.Debug("readability failed, using paragraph heuristic", "url", pageURL, "error", err)
		return ""
	}
	return strings.TrimSpace(article.TextContent)
}
