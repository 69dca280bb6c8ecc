package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deusflow/hndigest/internal/config"
	"github.com/deusflow/hndigest/internal/gemini"
	"github.com/deusflow/hndigest/internal/hn"
	"github.com/deusflow/hndigest/internal/metrics"
	"github.com/deusflow/hndigest/internal/ratelimit"
	"github.com/deusflow/hndigest/internal/rss"
	"github.com/deusflow/hndigest/internal/scraper"
	"github.com/deusflow/hndigest/internal/storage"
)

// Run builds the production collaborators from cfg and executes one digest run.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	summarizer, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return fmt.Errorf("create gemini client: %w", err)
	}
	defer summarizer.Close()

	budget := ratelimit.NewBudget(cfg.MaxGeminiRequests)
	m := metrics.New()

	runner := NewRunner(RunnerDeps{
		Dedup: storage.NewProcessedIDs(cfg.ProcessedIDsFile, cfg.MaxProcessedIDs),
		Source: hn.NewClient(hn.Options{
			BaseURL:    cfg.HNAPIBaseURL,
			MaxStories: cfg.MaxStoriesToFetch,
			Timeout:    cfg.RequestTimeout,
			Logger:     logger.With("component", "hn"),
		}),
		Extractor: scraper.New(scraper.Options{
			Timeout:   cfg.FetchTimeout,
			UserAgent: cfg.UserAgent,
			Strategy:  cfg.ExtractStrategy,
			Logger:    logger.With("component", "scraper"),
		}),
		Summarizer: summarizer,
		Publisher:  rss.NewStore(cfg.RSSFilePath, cfg.MaxFeedEntries, cfg.Channel, logger.With("component", "rss")),
		Pacer:      ratelimit.NewPacer(cfg.ItemDelay),
		Budget:     budget,
		Metrics:    m,
		Logger:     logger.With("component", "runner"),
	})

	runErr := runner.Run(ctx)

	logger.Info("run finished", m.LogArgs()...)
	if cfg.MetricsFile != "" {
		if err := m.WriteReport(cfg.MetricsFile, map[string]interface{}{"gemini": budget.GetStats()}); err != nil {
			logger.Error("failed to write metrics report", "path", cfg.MetricsFile, "error", err)
		}
	}
	return runErr
}
