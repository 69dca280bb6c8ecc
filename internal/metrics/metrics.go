// Package metrics collects per-run counters for the digest job.
package metrics

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/deusflow/hndigest/internal/storage"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	CandidatesFound    int64
	StoriesPublished   int64
	SkippedNoMetadata  int64
	SkippedNoContent   int64
	SummariesTooShort  int64
	SummariesFailed    int64
	RecordErrors       int64
	ProcessedIDsPruned int64

	// Timings
	LastProcessingTime time.Duration

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

func New() *Metrics {
	return &Metrics{IsHealthy: true}
}

func (m *Metrics) AddCandidates(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CandidatesFound += int64(n)
}

func (m *Metrics) SetPublished(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StoriesPublished = int64(n)
}

func (m *Metrics) IncrementSkippedNoMetadata() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SkippedNoMetadata++
}

func (m *Metrics) IncrementSkippedNoContent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SkippedNoContent++
}

func (m *Metrics) IncrementSummariesTooShort() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummariesTooShort++
}

func (m *Metrics) IncrementSummariesFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummariesFailed++
}

func (m *Metrics) IncrementRecordErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordErrors++
}

func (m *Metrics) SetPruned(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProcessedIDsPruned = int64(n)
}

func (m *Metrics) RecordProcessingTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastProcessingTime = duration
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := map[string]interface{}{
		"candidates_found":        m.CandidatesFound,
		"stories_published":       m.StoriesPublished,
		"skipped_no_metadata":     m.SkippedNoMetadata,
		"skipped_no_content":      m.SkippedNoContent,
		"summaries_too_short":     m.SummariesTooShort,
		"summaries_failed":        m.SummariesFailed,
		"record_errors":           m.RecordErrors,
		"processed_ids_pruned":    m.ProcessedIDsPruned,
		"last_processing_time_ms": m.LastProcessingTime.Milliseconds(),
		"last_run_time":           m.LastRunTime.Format(time.RFC3339),
		"last_error":              m.LastError,
		"is_healthy":              m.IsHealthy,
	}
	if !m.LastErrorTime.IsZero() {
		stats["last_error_time"] = m.LastErrorTime.Format(time.RFC3339)
	}
	return stats
}

// LogArgs flattens GetStats into slog key/value pairs.
func (m *Metrics) LogArgs() []any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return []any{
		"candidates", m.CandidatesFound,
		"published", m.StoriesPublished,
		"skipped_no_metadata", m.SkippedNoMetadata,
		"skipped_no_content", m.SkippedNoContent,
		"too_short", m.SummariesTooShort,
		"summary_failed", m.SummariesFailed,
		"pruned", m.ProcessedIDsPruned,
		"duration", m.LastProcessingTime,
	}
}

// WriteReport stores the stats, plus any extra sections, as JSON at path.
func (m *Metrics) WriteReport(path string, extra map[string]interface{}) error {
	report := m.GetStats()
	for k, v := range extra {
		report[k] = v
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}
	if err := storage.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
