package log

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAppendAndReadAll(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	events := []LogEvent{
		{Event: EventSessionStarted, SessionID: "s1", Domain: "api"},
		{Event: EventAnswerRecorded, SessionID: "s1", SectionID: "overview", QuestionID: "project-name", Answers: 1},
		{Event: EventSectionCompleted, SessionID: "s1", SectionID: "overview"},
	}
	for _, e := range events {
		if err := logger.Append(e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := logger.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(got) != len(events) {
		t.Fatalf("got %d events, want %d", len(got), len(events))
	}
	for i, e := range events {
		if got[i].Event != e.Event || got[i].SessionID != e.SessionID {
			t.Errorf("event %d: got %+v, want %+v", i, got[i], e)
		}
		if got[i].Time.IsZero() {
			t.Errorf("event %d: timestamp not stamped", i)
		}
	}
}

func TestAppendPreservesExistingLog(t *testing.T) {
	dir := t.TempDir()

	first, err := NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	if err := first.Append(LogEvent{Event: EventSessionStarted, SessionID: "s1"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	// Reopening the logger must not truncate what is already on disk.
	second, err := NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	if err := second.Append(LogEvent{Event: EventSessionCompleted, SessionID: "s1"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	got, err := second.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].Event != EventSessionStarted || got[1].Event != EventSessionCompleted {
		t.Errorf("event order: %q, %q", got[0].Event, got[1].Event)
	}
}

func TestReadAllMissingFile(t *testing.T) {
	logger, err := NewLogger(t.TempDir())
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	got, err := logger.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d events from missing file", len(got))
	}
}

func TestEventTimesOrdered(t *testing.T) {
	logger, err := NewLogger(t.TempDir())
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := logger.Append(LogEvent{Time: base, Event: EventSessionStarted}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	got, err := logger.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if !got[0].Time.Equal(base) {
		t.Errorf("explicit timestamp not preserved: %v", got[0].Time)
	}
}

func TestLogFileLocation(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	if err := logger.Append(LogEvent{Event: EventSessionStarted}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, ".llpm", "log.jsonl")); err != nil {
		t.Errorf("log file not at expected path: %v", err)
	}
}
