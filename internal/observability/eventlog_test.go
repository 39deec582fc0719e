package observability

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestLog(t *testing.T) (EventLog, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	t.Cleanup(func() { _ = log.Close() })
	return log, path
}

func TestWriteAndReadBack(t *testing.T) {
	log, _ := newTestLog(t)

	log.Info(EventWorkflowStarted, "frontend cycle", map[string]any{"component": "frontend"})
	log.Error(EventCollaboratorFail, "research timed out", nil)

	events, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Level != "INFO" || events[0].Type != EventWorkflowStarted {
		t.Errorf("first event = %+v", events[0])
	}
	if events[1].Level != "ERROR" {
		t.Errorf("second event level = %s, want ERROR", events[1].Level)
	}
}

func TestReadFilters(t *testing.T) {
	log, _ := newTestLog(t)

	log.Info(EventTaskGenerated, "task one", nil)
	log.Info(EventTunerApplied, "balanced", nil)
	log.Error(EventTunerError, "sampling failed", nil)

	byType, err := log.Read(EventFilter{Type: EventTunerApplied})
	if err != nil {
		t.Fatalf("reading by type: %v", err)
	}
	if len(byType) != 1 || byType[0].Message != "balanced" {
		t.Errorf("byType = %+v", byType)
	}

	byLevel, err := log.Read(EventFilter{Level: "ERROR"})
	if err != nil {
		t.Fatalf("reading by level: %v", err)
	}
	if len(byLevel) != 1 || byLevel[0].Type != EventTunerError {
		t.Errorf("byLevel = %+v", byLevel)
	}

	future := time.Now().UTC().Add(time.Hour)
	bySince, err := log.Read(EventFilter{Since: &future})
	if err != nil {
		t.Fatalf("reading by since: %v", err)
	}
	if len(bySince) != 0 {
		t.Errorf("bySince = %+v, want none", bySince)
	}
}

func TestReadSkipsMalformedLines(t *testing.T) {
	log, path := newTestLog(t)
	log.Info(EventTaskGenerated, "good", nil)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("opening for corruption: %v", err)
	}
	if _, err := f.WriteString("not json at all\n"); err != nil {
		t.Fatalf("writing garbage: %v", err)
	}
	_ = f.Close()
	log.Info(EventTaskGenerated, "also good", nil)

	events, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("got %d events, want 2 (malformed line skipped)", len(events))
	}
}

func TestReadMissingFile(t *testing.T) {
	log := jsonlEventLog{path: filepath.Join(t.TempDir(), "absent.jsonl")}
	events, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading: %v", err)
	}
	if events != nil {
		t.Errorf("events = %+v, want nil", events)
	}
}
