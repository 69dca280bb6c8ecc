package metrics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestSetErrorMarksUnhealthy(t *testing.T) {
	m := New()
	if !m.GetStats()["is_healthy"].(bool) {
		t.Fatalf("new metrics should be healthy")
	}

	m.SetError("publish feed: disk full")

	stats := m.GetStats()
	if stats["is_healthy"].(bool) {
		t.Fatalf("expected unhealthy after SetError")
	}
	if stats["last_error"] != "publish feed: disk full" {
		t.Fatalf("unexpected last_error %v", stats["last_error"])
	}
	if _, ok := stats["last_error_time"]; !ok {
		t.Fatalf("expected last_error_time to be set")
	}
}

func TestWriteReport(t *testing.T) {
	m := New()
	m.AddCandidates(3)
	m.SetPublished(2)
	m.IncrementSkippedNoContent()

	path := filepath.Join(t.TempDir(), "metrics.json")
	if err := m.WriteReport(path, map[string]interface{}{"budget": map[string]int{"gemini_used": 2}}); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var report map[string]interface{}
	if err := json.Unmarshal(raw, &report); err != nil {
		t.Fatalf("report is not JSON: %v", err)
	}
	if report["candidates_found"] != float64(3) || report["stories_published"] != float64(2) {
		t.Fatalf("unexpected counters: %v", report)
	}
	if report["skipped_no_content"] != float64(1) {
		t.Fatalf("unexpected skipped_no_content: %v", report["skipped_no_content"])
	}
	if _, ok := report["budget"]; !ok {
		t.Fatalf("extra section missing: %v", report)
	}
}
