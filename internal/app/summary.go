package app

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	// PlaceholderTooShort replaces the summary when the article has too little text.
	PlaceholderTooShort = "内容过短，无法生成有意义的摘要。"
	// PlaceholderFailed replaces the summary when the summarizer call fails.
	PlaceholderFailed = "调用AI总结服务失败。"

	minSummaryInputRunes = 200
	maxSummaryInputRunes = 8000
)

var errEmptySummary = errors.New("summarizer returned empty text")

// summaryOutcome tells the runner which path the guard took.
type summaryOutcome int

const (
	summaryOK summaryOutcome = iota
	summaryTooShort
	summaryFailed
)

// summarize guards the external summarizer. It always returns a non-empty
// summary; short input never reaches the service.
func (r *Runner) summarize(ctx context.Context, text string) (string, summaryOutcome) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < minSummaryInputRunes {
		return PlaceholderTooShort, summaryTooShort
	}

	if err := r.budget.Use(); err != nil {
		r.log.Warn("skipping summarizer call", "error", err)
		return PlaceholderFailed, summaryFailed
	}

	summary, err := r.summarizer.Summarize(ctx, truncateRunes(text, maxSummaryInputRunes))
	if err == nil && strings.TrimSpace(summary) == "" {
		err = errEmptySummary
	}
	if err != nil {
		r.log.Error("summarizer call failed", "error", err)
		return PlaceholderFailed, summaryFailed
	}
	return strings.TrimSpace(summary), summaryOK
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
