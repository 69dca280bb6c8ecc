// Package rss maintains the published digest feed on disk.
package rss

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gorilla/feeds"
	"github.com/mmcdole/gofeed"

	"github.com/deusflow/hndigest/internal/news"
	"github.com/deusflow/hndigest/internal/storage"
)

// Channel is the fixed feed-level metadata.
type Channel struct {
	Title       string `yaml:"title"`
	Link        string `yaml:"link"`
	Description string `yaml:"description"`
	Language    string `yaml:"language"`
}

// DefaultChannel describes the Chinese Hacker News digest.
var DefaultChannel = Channel{
	Title:       "Hacker News 中文摘要",
	Link:        "https://news.ycombinator.com/",
	Description: "由Gemini AI每日更新的Hacker News热门文章中文摘要",
	Language:    "zh-CN",
}

// Entry is one published story. GUID equals Link and is a permalink.
type Entry struct {
	Title       string
	Link        string
	Description string
	GUID        string
	PubDate     time.Time
}

// Document is the feed, newest entry first.
type Document struct {
	Channel Channel
	Entries []Entry
}

// Store loads and persists the feed file.
type Store struct {
	filePath   string
	maxEntries int
	channel    Channel
	log        *slog.Logger
}

// NewStore creates a Store that caps the feed at maxEntries.
func NewStore(filePath string, maxEntries int, channel Channel, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		filePath:   filePath,
		maxEntries: maxEntries,
		channel:    channel,
		log:        logger,
	}
}

// Load reads the existing feed. A missing or unreadable file yields an empty
// document with the configured channel metadata.
func (s *Store) Load() *Document {
	doc := &Document{Channel: s.channel}

	f, err := os.Open(s.filePath)
	if os.IsNotExist(err) {
		return doc
	}
	if err != nil {
		s.log.Warn("can't open existing RSS file, creating a new one", "path", s.filePath, "error", err)
		return doc
	}
	defer f.Close()

	parsed, err := gofeed.NewParser().Parse(f)
	if err != nil {
		s.log.Warn("can't load existing RSS file, creating a new one", "path", s.filePath, "error", err)
		return doc
	}

	for _, item := range parsed.Items {
		entry := Entry{
			Title:       item.Title,
			Link:        item.Link,
			Description: item.Description,
			GUID:        item.GUID,
		}
		if entry.GUID == "" {
			entry.GUID = item.Link
		}
		if item.PublishedParsed != nil {
			entry.PubDate = item.PublishedParsed.UTC()
		}
		doc.Entries = append(doc.Entries, entry)
	}
	return doc
}

// Merge prepends each story in batch order, so the last story of the batch
// ends up first in the document. Every new entry is stamped with now (UTC).
func Merge(doc *Document, stories []news.SummarizedStory, now time.Time) *Document {
	for _, story := range stories {
		entry := Entry{
			Title:       story.Title,
			Link:        story.URL,
			Description: story.Summary,
			GUID:        story.URL,
			PubDate:     now.UTC(),
		}
		doc.Entries = append([]Entry{entry}, doc.Entries...)
	}
	return doc
}

// Trim drops entries from the tail until at most maxEntries remain.
func Trim(doc *Document, maxEntries int) *Document {
	if maxEntries >= 0 && len(doc.Entries) > maxEntries {
		doc.Entries = doc.Entries[:maxEntries]
	}
	return doc
}

// Persist renders doc as RSS 2.0 and replaces the feed file atomically.
func (s *Store) Persist(doc *Document) error {
	data, err := Render(doc)
	if err != nil {
		return err
	}
	if err := storage.WriteFileAtomic(s.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write RSS file: %w", err)
	}
	return nil
}

// Publish merges stories into the stored feed, trims it and writes it back.
func (s *Store) Publish(stories []news.SummarizedStory, now time.Time) error {
	doc := s.Load()
	doc = Merge(doc, stories, now)
	doc = Trim(doc, s.maxEntries)
	if err := s.Persist(doc); err != nil {
		return err
	}
	s.log.Info("RSS feed updated", "path", s.filePath, "new_entries", len(stories), "total_entries", len(doc.Entries))
	return nil
}

// Render produces the pretty-printed RSS 2.0 document.
func Render(doc *Document) ([]byte, error) {
	feed := &feeds.Feed{
		Title:       doc.Channel.Title,
		Link:        &feeds.Link{Href: doc.Channel.Link},
		Description: doc.Channel.Description,
		Items:       make([]*feeds.Item, 0, len(doc.Entries)),
	}
	for _, e := range doc.Entries {
		feed.Items = append(feed.Items, &feeds.Item{
			Title:       e.Title,
			Link:        &feeds.Link{Href: e.Link},
			Description: e.Description,
			Id:          e.GUID,
			IsPermaLink: "true",
			Created:     e.PubDate,
		})
	}

	channel := (&feeds.Rss{Feed: feed}).RssFeed()
	channel.Language = doc.Channel.Language

	var buf bytes.Buffer
	if err := feeds.WriteXML(channel, &buf); err != nil {
		return nil, fmt.Errorf("failed to render RSS: %w", err)
	}
	return buf.Bytes(), nil
}
