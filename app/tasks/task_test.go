package tasks

import (
	"testing"
	"time"
)

func TestNewTask(t *testing.T) {
	task := NewTask(TaskTypeRefreshFeed, "http://example.com/rss")

	if task.ID == "" {
		t.Error("Expected task to get an ID")
	}
	if task.GetType() != TaskTypeRefreshFeed {
		t.Errorf("Expected type refresh_feed, got %s", task.GetType())
	}
	if task.GetFeedURL() != "http://example.com/rss" {
		t.Errorf("Unexpected feed URL: %s", task.GetFeedURL())
	}
	if task.GetMaxRetries() != DefaultMaxRetries {
		t.Errorf("Expected default max retries, got %d", task.GetMaxRetries())
	}

	other := NewTask(TaskTypeRefreshFeed, "http://example.com/rss")
	if task.ID == other.ID {
		t.Error("Expected unique task IDs")
	}
}

func TestTaskRetry(t *testing.T) {
	task := NewTask(TaskTypeExtractContent, "")

	for i := 0; i < DefaultMaxRetries; i++ {
		if !task.CanRetry() {
			t.Fatalf("Expected retry %d to be allowed", i+1)
		}
		task.IncrementRetryCount()
	}

	if task.CanRetry() {
		t.Error("Expected retries exhausted after maximum attempts")
	}
	if task.GetRetryCount() != DefaultMaxRetries {
		t.Errorf("Expected retry count %d, got %d", DefaultMaxRetries, task.GetRetryCount())
	}
}

func TestTaskDuration(t *testing.T) {
	task := NewTask(TaskTypeRefreshFeed, "http://example.com/rss")

	if task.GetDuration() != 0 {
		t.Error("Expected zero duration before start")
	}

	task.Start()
	time.Sleep(10 * time.Millisecond)

	if task.GetDuration() <= 0 {
		t.Error("Expected positive duration after start")
	}
}
