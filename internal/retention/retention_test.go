package retention

import (
	"context"
	"testing"
	"time"

	"sparkchat/pkg/config"
	"sparkchat/pkg/models"
	"sparkchat/pkg/store"
)

func TestRunOnce(t *testing.T) {
	if err := store.Open(t.TempDir()); err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer store.Close()

	now := time.Now().UTC()
	old := models.Status{ID: "s1", Author: "alice", Text: "old", TS: now.Add(-48 * time.Hour).UnixNano()}
	fresh := models.Status{ID: "s2", Author: "alice", Text: "new", TS: now.UnixNano()}
	if err := store.SaveStatus(old); err != nil {
		t.Fatalf("SaveStatus: %v", err)
	}
	if err := store.SaveStatus(fresh); err != nil {
		t.Fatalf("SaveStatus: %v", err)
	}

	purged, err := RunOnce(24 * time.Hour)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 purged, got %d", purged)
	}

	feed, err := store.ListStatusFeed(0)
	if err != nil {
		t.Fatalf("ListStatusFeed: %v", err)
	}
	if len(feed) != 1 || feed[0].ID != "s2" {
		t.Fatalf("expected only fresh status to remain, got %+v", feed)
	}
}

func TestStartDisabled(t *testing.T) {
	cancel, err := Start(context.Background(), config.RetentionConfig{Enabled: false})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	cancel()
}

func TestStartRejectsBadCron(t *testing.T) {
	_, err := Start(context.Background(), config.RetentionConfig{Enabled: true, Cron: "not a cron"})
	if err == nil {
		t.Fatalf("expected error for invalid cron expression")
	}
}
