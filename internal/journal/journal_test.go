package journal

import (
	"context"
	"testing"

	"scribe/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Journal.Dir = t.TempDir()
	return &cfg
}

func TestOpenCreatesSchemaAndRecords(t *testing.T) {
	cfg := testConfig(t)
	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.RecordTransition(ctx, "wf-1", "m-1", "locate_recording", StatusStarted, ""); err != nil {
		t.Fatalf("RecordTransition: %v", err)
	}
	if err := store.RecordTransition(ctx, "wf-1", "m-1", "locate_recording", StatusCompleted, ""); err != nil {
		t.Fatalf("RecordTransition: %v", err)
	}
	if err := store.RecordTransition(ctx, "wf-2", "m-2", "summary", StatusFailed, "summary not found"); err != nil {
		t.Fatalf("RecordTransition: %v", err)
	}

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].WorkflowID != "wf-2" || entries[0].Detail != "summary not found" {
		t.Fatalf("expected newest entry first, got %+v", entries[0])
	}
	if entries[0].CreatedAt.IsZero() {
		t.Fatal("created_at should round-trip")
	}
}

func TestWorkflowHistoryOrdersOldestFirst(t *testing.T) {
	cfg := testConfig(t)
	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	stages := []string{"locate_recording", "authorize", "summary"}
	for _, stage := range stages {
		if err := store.RecordTransition(ctx, "wf-1", "m-1", stage, StatusCompleted, ""); err != nil {
			t.Fatalf("RecordTransition(%s): %v", stage, err)
		}
	}
	if err := store.RecordTransition(ctx, "wf-other", "m-9", "summary", StatusCompleted, ""); err != nil {
		t.Fatalf("RecordTransition: %v", err)
	}

	history, err := store.WorkflowHistory(ctx, "wf-1")
	if err != nil {
		t.Fatalf("WorkflowHistory: %v", err)
	}
	if len(history) != len(stages) {
		t.Fatalf("expected %d entries, got %d", len(stages), len(history))
	}
	for i, stage := range stages {
		if history[i].Stage != stage {
			t.Fatalf("entry %d: expected stage %q, got %q", i, stage, history[i].Stage)
		}
	}
}

func TestOpenReusesExistingDatabase(t *testing.T) {
	cfg := testConfig(t)
	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.RecordTransition(context.Background(), "wf-1", "m-1", "summary", StatusCompleted, ""); err != nil {
		t.Fatalf("RecordTransition: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	entries, err := reopened.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected persisted entry to survive reopen, got %d", len(entries))
	}
}

func TestOpenDisabledWhenDirEmpty(t *testing.T) {
	cfg := config.Default()
	cfg.Journal.Dir = ""
	store, err := Open(&cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if store != nil {
		t.Fatal("expected nil store when journaling is disabled")
	}
	// Nil stores are safe to use.
	if err := store.RecordTransition(context.Background(), "wf", "m", "s", StatusStarted, ""); err != nil {
		t.Fatalf("nil RecordTransition: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("nil Close: %v", err)
	}
}
