// Package observability provides the structured JSONL event log used by the
// orchestrator and auto-tuner. Failures are logged as one JSON object per
// line so they stay greppable in long-running sessions.
package observability

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Well-known event types.
const (
	EventWorkflowStarted   = "workflow.started"
	EventWorkflowPhaseDone = "workflow.phase_completed"
	EventWorkflowFailed    = "workflow.failed"
	EventWorkflowCompleted = "workflow.completed"
	EventTaskGenerated     = "task.generated"
	EventTunerApplied      = "tuner.strategy_applied"
	EventTunerAdjusted     = "tuner.knob_adjusted"
	EventTunerError        = "tuner.error"
	EventValidationDone    = "validation.completed"
	EventCollaboratorFail  = "collaborator.failed"
)

// Event represents a single observable event in the system.
type Event struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"` // INFO, WARN, ERROR
	Type    string         `json:"type"`
	Message string         `json:"msg"`
	Data    map[string]any `json:"data,omitempty"`
}

// EventFilter specifies criteria for reading events.
type EventFilter struct {
	Since *time.Time
	Type  string
	Level string
}

// EventLog defines the interface for writing and reading events.
type EventLog interface {
	Write(event Event) error
	Info(eventType, msg string, data map[string]any)
	Error(eventType, msg string, data map[string]any)
	Read(filter EventFilter) ([]Event, error)
	Close() error
}

// jsonlEventLog implements EventLog over an append-only JSONL file.
type jsonlEventLog struct {
	path string
	file *os.File
	mu   sync.Mutex
}

// NewJSONLEventLog creates an EventLog backed by the JSONL file at path.
func NewJSONLEventLog(path string) (EventLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	return &jsonlEventLog{path: path, file: f}, nil
}

func (l *jsonlEventLog) Write(event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}
	data = append(data, '\n')

	if _, err := l.file.Write(data); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	return nil
}

// Info writes an INFO event, swallowing write errors: event logging must
// never fail the operation being logged.
func (l *jsonlEventLog) Info(eventType, msg string, data map[string]any) {
	_ = l.Write(Event{Time: time.Now().UTC(), Level: "INFO", Type: eventType, Message: msg, Data: data})
}

// Error writes an ERROR event, swallowing write errors.
func (l *jsonlEventLog) Error(eventType, msg string, data map[string]any) {
	_ = l.Write(Event{Time: time.Now().UTC(), Level: "ERROR", Type: eventType, Message: msg, Data: data})
}

func (l *jsonlEventLog) Read(filter EventFilter) ([]Event, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening event log for reading: %w", err)
	}
	defer func() { _ = f.Close() }()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue // skip malformed lines
		}

		if matchesEventFilter(event, filter) {
			events = append(events, event)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning event log: %w", err)
	}
	return events, nil
}

func (l *jsonlEventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("closing event log: %w", err)
	}
	return nil
}

func matchesEventFilter(event Event, filter EventFilter) bool {
	if filter.Since != nil && event.Time.Before(*filter.Since) {
		return false
	}
	if filter.Type != "" && event.Type != filter.Type {
		return false
	}
	if filter.Level != "" && event.Level != filter.Level {
		return false
	}
	return true
}

// NopEventLog returns an EventLog that discards writes and reads nothing.
// Useful in tests and when no log path is configured.
func NopEventLog() EventLog { return nopEventLog{} }

type nopEventLog struct{}

func (nopEventLog) Write(Event) error                    { return nil }
func (nopEventLog) Info(string, string, map[string]any)  {}
func (nopEventLog) Error(string, string, map[string]any) {}
func (nopEventLog) Read(EventFilter) ([]Event, error)    { return nil, nil }
func (nopEventLog) Close() error                         { return nil }
