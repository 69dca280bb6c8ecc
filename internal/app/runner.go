// Package app runs one pass of the Hacker News digest job.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/deusflow/hndigest/internal/metrics"
	"github.com/deusflow/hndigest/internal/news"
	"github.com/deusflow/hndigest/internal/ratelimit"
)

// DedupStore remembers which stories were already published.
type DedupStore interface {
	Load() (map[news.ID]struct{}, error)
	Record(id news.ID) error
	Prune() (int, error)
}

// StorySource lists candidate stories and resolves their metadata.
type StorySource interface {
	ListCandidates(ctx context.Context, exclude map[news.ID]struct{}) []news.ID
	FetchMetadata(ctx context.Context, id news.ID) (*news.Story, bool)
}

// Extractor turns a story URL into article text.
type Extractor interface {
	Extract(ctx context.Context, url string) (string, bool)
}

// Summarizer produces a short summary of article text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Publisher appends a batch of summarized stories to the feed.
type Publisher interface {
	Publish(stories []news.SummarizedStory, now time.Time) error
}

// Pacer blocks between consecutive stories.
type Pacer interface {
	Wait(ctx context.Context) error
}

// RunnerDeps wires the collaborators of a Runner. Budget, Metrics, Logger and
// Now are optional.
type RunnerDeps struct {
	Dedup      DedupStore
	Source     StorySource
	Extractor  Extractor
	Summarizer Summarizer
	Publisher  Publisher
	Pacer      Pacer
	Budget     *ratelimit.Budget
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	Now        func() time.Time
}

// Runner executes the select, summarize, publish and prune cycle.
type Runner struct {
	dedup      DedupStore
	source     StorySource
	extractor  Extractor
	summarizer Summarizer
	publisher  Publisher
	pacer      Pacer
	budget     *ratelimit.Budget
	metrics    *metrics.Metrics
	log        *slog.Logger
	now        func() time.Time
}

// NewRunner constructs a Runner from deps.
func NewRunner(deps RunnerDeps) *Runner {
	r := &Runner{
		dedup:      deps.Dedup,
		source:     deps.Source,
		extractor:  deps.Extractor,
		summarizer: deps.Summarizer,
		publisher:  deps.Publisher,
		pacer:      deps.Pacer,
		budget:     deps.Budget,
		metrics:    deps.Metrics,
		log:        deps.Logger,
		now:        deps.Now,
	}
	if r.pacer == nil {
		r.pacer = ratelimit.NewPacer(0)
	}
	if r.metrics == nil {
		r.metrics = metrics.New()
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Run processes the current top stories once. Skipped stories stay eligible
// for later runs; summarized ones are recorded even when the summary is a
// placeholder. The dedup log is pruned on every exit path after it loaded.
func (r *Runner) Run(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.RecordProcessingTime(time.Since(start))
		r.metrics.SetLastRun()
		if err != nil {
			r.metrics.SetError(err.Error())
		}
	}()

	seen, err := r.dedup.Load()
	if err != nil {
		return fmt.Errorf("load processed ids: %w", err)
	}
	r.log.Info("loaded processed ids", "count", len(seen))

	defer r.prune()

	candidates := r.source.ListCandidates(ctx, seen)
	r.metrics.AddCandidates(len(candidates))
	if len(candidates) == 0 {
		r.log.Info("no new stories to process")
		return nil
	}
	r.log.Info("found new stories", "count", len(candidates))

	batch := r.processAll(ctx, candidates)

	if len(batch) == 0 {
		r.log.Info("no stories summarized, feed left untouched")
		return nil
	}
	if err := r.publisher.Publish(batch, r.now()); err != nil {
		return fmt.Errorf("publish feed: %w", err)
	}
	r.metrics.SetPublished(len(batch))
	return nil
}

func (r *Runner) processAll(ctx context.Context, candidates []news.ID) []news.SummarizedStory {
	var batch []news.SummarizedStory
	for i, id := range candidates {
		if i > 0 {
			if err := r.pacer.Wait(ctx); err != nil {
				r.log.Warn("run interrupted, publishing partial batch", "processed", i, "remaining", len(candidates)-i, "error", err)
				break
			}
		}

		story, ok := r.processOne(ctx, id)
		if ok {
			batch = append(batch, story)
		}
	}
	return batch
}

func (r *Runner) processOne(ctx context.Context, id news.ID) (news.SummarizedStory, bool) {
	log := r.log.With("id", id)

	story, ok := r.source.FetchMetadata(ctx, id)
	if !ok {
		log.Info("skipping story without usable metadata")
		r.metrics.IncrementSkippedNoMetadata()
		return news.SummarizedStory{}, false
	}
	log = log.With("title", story.Title)
	log.Info("processing story", "url", story.URL)

	text, ok := r.extractor.Extract(ctx, story.URL)
	if !ok {
		log.Info("skipping story without extractable content", "url", story.URL)
		r.metrics.IncrementSkippedNoContent()
		return news.SummarizedStory{}, false
	}

	summary, outcome := r.summarize(ctx, text)
	switch outcome {
	case summaryTooShort:
		log.Warn("article text too short, using placeholder summary")
		r.metrics.IncrementSummariesTooShort()
	case summaryFailed:
		r.metrics.IncrementSummariesFailed()
	}

	if err := r.dedup.Record(id); err != nil {
		log.Error("failed to record processed id", "error", err)
		r.metrics.IncrementRecordErrors()
	}

	return news.SummarizedStory{Story: *story, Summary: summary}, true
}

func (r *Runner) prune() {
	dropped, err := r.dedup.Prune()
	if err != nil {
		r.log.Error("failed to prune processed ids", "error", err)
		return
	}
	r.metrics.SetPruned(dropped)
	if dropped > 0 {
		r.log.Info("pruned processed ids", "dropped", dropped)
	}
}
