// Package ratelimit spaces out outbound requests and caps summarizer calls per run.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrBudgetExhausted is returned by Budget.Use once the per-run limit is hit.
var ErrBudgetExhausted = errors.New("summarizer request budget exhausted")

// Pacer sleeps a fixed delay between consecutive items.
type Pacer struct {
	delay time.Duration
}

// NewPacer returns a Pacer; a non-positive delay disables waiting.
func NewPacer(delay time.Duration) *Pacer {
	return &Pacer{delay: delay}
}

// Wait blocks for the configured delay or until ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Budget counts summarizer requests against an optional per-run limit.
type Budget struct {
	mu   sync.Mutex
	used int
	max  int // 0 = unlimited
}

// NewBudget creates a Budget; max <= 0 means unlimited.
func NewBudget(max int) *Budget {
	if max < 0 {
		max = 0
	}
	return &Budget{max: max}
}

// Use reserves one request, or returns ErrBudgetExhausted.
func (b *Budget) Use() error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.max > 0 && b.used >= b.max {
		return ErrBudgetExhausted
	}
	b.used++
	return nil
}

// GetStats returns usage numbers for the run report.
func (b *Budget) GetStats() map[string]interface{} {
	if b == nil {
		return map[string]interface{}{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	return map[string]interface{}{
		"gemini_used":  b.used,
		"gemini_limit": b.max,
	}
}
