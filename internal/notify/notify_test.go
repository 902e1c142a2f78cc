package notify

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEventWriterCreatesFile(t *testing.T) {
	dir := t.TempDir()
	w := NewEventWriter(dir)

	if err := w.Notify("task.created", "task:procurement:abc12345"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "events"))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 event file, got %d", len(entries))
	}
	if filepath.Ext(entries[0].Name()) != ".event" {
		t.Errorf("expected .event extension, got %s", entries[0].Name())
	}
}

func TestEventWatcherReceivesEvent(t *testing.T) {
	dir := t.TempDir()

	type eventMsg struct {
		eventType string
		taskID    string
	}
	received := make(chan eventMsg, 1)

	watcher := NewEventWatcher(dir, func(eventType, taskID string) {
		received <- eventMsg{eventType, taskID}
	})
	if err := watcher.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer watcher.Stop()

	// Give fsnotify a moment to register
	time.Sleep(50 * time.Millisecond)

	writer := NewEventWriter(dir)
	if err := writer.Notify("task.status_changed", "task:development:def67890"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	select {
	case msg := <-received:
		if msg.eventType != "task.status_changed" {
			t.Errorf("expected event type task.status_changed, got %s", msg.eventType)
		}
		if msg.taskID != "task:development:def67890" {
			t.Errorf("expected task:development:def67890, got %s", msg.taskID)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestEventWatcherDrainsExisting(t *testing.T) {
	dir := t.TempDir()

	// Write events BEFORE starting watcher
	writer := NewEventWriter(dir)
	_ = writer.Notify("task.created", "task:procurement:drain001")
	_ = writer.Notify("task.closed", "task:procurement:drain002")

	received := make(chan string, 10)
	watcher := NewEventWatcher(dir, func(eventType, taskID string) {
		received <- taskID
	})
	if err := watcher.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer watcher.Stop()

	// Drain should have processed both files synchronously during Start
	time.Sleep(100 * time.Millisecond)

	if len(received) != 2 {
		t.Fatalf("expected 2 drained events, got %d", len(received))
	}
}

func TestEventFileRemovedAfterDispatch(t *testing.T) {
	dir := t.TempDir()

	writer := NewEventWriter(dir)
	_ = writer.Notify("task.created", "task:procurement:gone0001")

	watcher := NewEventWatcher(dir, func(eventType, taskID string) {})
	if err := watcher.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer watcher.Stop()

	time.Sleep(100 * time.Millisecond)

	entries, err := os.ReadDir(filepath.Join(dir, "events"))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected event files to be consumed, %d remain", len(entries))
	}
}

func TestSanitizeID(t *testing.T) {
	got := sanitizeID("task:procurement:abc/def")
	if got != "task_procurement_abc_def" {
		t.Errorf("expected task_procurement_abc_def, got %s", got)
	}
}
