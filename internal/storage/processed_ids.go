package storage

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/deusflow/hndigest/internal/news"
)

// ProcessedIDs is the append-only log of already published story ids.
// On disk it is one id per line; Prune keeps only the newest maxLines lines.
type ProcessedIDs struct {
	filePath string
	maxLines int
}

// NewProcessedIDs creates a log bound to filePath, capped at maxLines after Prune.
func NewProcessedIDs(filePath string, maxLines int) *ProcessedIDs {
	return &ProcessedIDs{
		filePath: filePath,
		maxLines: maxLines,
	}
}

// Load returns every recorded id as a set. A missing file is an empty set.
func (p *ProcessedIDs) Load() (map[news.ID]struct{}, error) {
	lines, err := p.readLines()
	if err != nil {
		return nil, err
	}

	ids := make(map[news.ID]struct{}, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ids[news.ID(line)] = struct{}{}
	}
	return ids, nil
}

// Record appends id to the log.
func (p *ProcessedIDs) Record(id news.ID) error {
	f, err := os.OpenFile(p.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open processed ids file: %w", err)
	}

	if _, err := f.WriteString(string(id) + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("failed to append processed id %s: %w", id, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close processed ids file: %w", err)
	}
	return nil
}

// Prune rewrites the log with its last maxLines lines when it has grown past
// the cap, and reports how many lines were dropped.
func (p *ProcessedIDs) Prune() (int, error) {
	if p.maxLines <= 0 {
		return 0, nil
	}

	lines, err := p.readLines()
	if err != nil {
		return 0, err
	}
	if len(lines) <= p.maxLines {
		return 0, nil
	}

	keep := lines[len(lines)-p.maxLines:]
	var buf bytes.Buffer
	for _, line := range keep {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	if err := WriteFileAtomic(p.filePath, buf.Bytes(), 0644); err != nil {
		return 0, fmt.Errorf("failed to rewrite processed ids file: %w", err)
	}
	return len(lines) - len(keep), nil
}

// readLines returns the physical lines of the log, without trailing newlines.
func (p *ProcessedIDs) readLines() ([]string, error) {
	f, err := os.Open(p.filePath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open processed ids file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read processed ids file: %w", err)
	}
	return lines, nil
}
