package hn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/deusflow/hndigest/internal/news"
)

func newTestServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestListCandidatesFiltersAndKeepsRankOrder(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, map[string]string{
		"/topstories.json": `[5, 4, 3, 2, 1]`,
	})
	c := NewClient(Options{BaseURL: server.URL, MaxStories: 3})

	exclude := map[news.ID]struct{}{"4": {}}
	got := c.ListCandidates(context.Background(), exclude)

	want := []news.ID{"5", "3", "2"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestListCandidatesZeroMaxUsesDefaultCap(t *testing.T) {
	t.Parallel()

	top := make([]string, 0, 40)
	for i := 1; i <= 40; i++ {
		top = append(top, strconv.Itoa(i))
	}
	server := newTestServer(t, map[string]string{
		"/topstories.json": "[" + strings.Join(top, ",") + "]",
	})
	c := NewClient(Options{BaseURL: server.URL})

	got := c.ListCandidates(context.Background(), nil)
	if len(got) != DefaultMaxStories {
		t.Fatalf("expected %d ids, got %d", DefaultMaxStories, len(got))
	}
	if got[0] != "1" || got[len(got)-1] != "30" {
		t.Fatalf("cap should keep the top ranked ids, got %v", got)
	}
}

func TestListCandidatesNetworkFailureIsEmpty(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, map[string]string{})
	c := NewClient(Options{BaseURL: server.URL, MaxStories: 30})

	if got := c.ListCandidates(context.Background(), nil); len(got) != 0 {
		t.Fatalf("expected no candidates on 404, got %v", got)
	}
}

func TestFetchMetadata(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, map[string]string{
		"/item/1.json": `{"id": 1, "title": "Show HN: A thing", "url": "https://example.com/a", "type": "story"}`,
		"/item/2.json": `{"id": 2, "title": "Ask HN: Anything?", "text": "body", "type": "story"}`,
		"/item/3.json": `null`,
		"/item/4.json": `{"id": 4, "url": "https://example.com/untitled"}`,
		"/item/5.json": `{"id": 5, "title": "", "url": "https://example.com/blank"}`,
	})
	c := NewClient(Options{BaseURL: server.URL})
	ctx := context.Background()

	story, ok := c.FetchMetadata(ctx, "1")
	if !ok {
		t.Fatalf("expected story 1 to resolve")
	}
	if story.ID != "1" || story.Title != "Show HN: A thing" || story.URL != "https://example.com/a" {
		t.Fatalf("unexpected story: %+v", story)
	}

	if _, ok := c.FetchMetadata(ctx, "2"); ok {
		t.Fatalf("item without url must not produce a story")
	}
	if _, ok := c.FetchMetadata(ctx, "3"); ok {
		t.Fatalf("null item must not produce a story")
	}
	if _, ok := c.FetchMetadata(ctx, "99"); ok {
		t.Fatalf("missing item must not produce a story")
	}

	story, ok = c.FetchMetadata(ctx, "4")
	if !ok {
		t.Fatalf("expected story 4 to resolve")
	}
	if story.Title != untitled {
		t.Fatalf("expected placeholder title, got %q", story.Title)
	}

	story, ok = c.FetchMetadata(ctx, "5")
	if !ok {
		t.Fatalf("expected story 5 to resolve")
	}
	if story.Title != "" {
		t.Fatalf("present empty title must be kept, got %q", story.Title)
	}
}
