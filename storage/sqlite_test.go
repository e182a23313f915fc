package storage

import (
	"path/filepath"
	"testing"
	"time"

	"land_alert/models"
)

func newTestJournal(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestJournal_RunLifecycle(t *testing.T) {
	store := newTestJournal(t)
	started := time.Now()

	run := &models.RequestRun{
		ID:             "run-1",
		URLFingerprint: "fp-1",
		Source:         "listing_email",
		Status:         "running",
		StartedAt:      started,
	}
	if err := store.CreateRun(run); err != nil {
		t.Fatalf("create run: %v", err)
	}

	land := 500
	finished := started.Add(2 * time.Second)
	run.Status = "posted"
	run.LandM2 = &land
	run.FinishedAt = &finished
	run.DurationMS = 2000
	if err := store.FinishRun(run); err != nil {
		t.Fatalf("finish run: %v", err)
	}

	if err := store.Log(run.ID, models.LogLevelInfo, "notified"); err != nil {
		t.Fatalf("log: %v", err)
	}

	counts, err := store.OutcomeCounts(started.Add(-time.Minute))
	if err != nil {
		t.Fatalf("outcome counts: %v", err)
	}
	if counts["posted"] != 1 {
		t.Fatalf("expected one posted run, got %v", counts)
	}
}

func TestJournal_OutcomeCountsWindow(t *testing.T) {
	store := newTestJournal(t)
	now := time.Now()

	runs := []struct {
		id      string
		status  string
		started time.Time
	}{
		{"recent-1", "posted", now.Add(-time.Hour)},
		{"recent-2", "filtered_out", now.Add(-2 * time.Hour)},
		{"stale", "posted", now.Add(-48 * time.Hour)},
	}
	for _, r := range runs {
		run := &models.RequestRun{
			ID:             r.id,
			URLFingerprint: "fp-" + r.id,
			Status:         "running",
			StartedAt:      r.started,
		}
		if err := store.CreateRun(run); err != nil {
			t.Fatalf("create run %s: %v", r.id, err)
		}
		run.Status = r.status
		finished := r.started.Add(time.Second)
		run.FinishedAt = &finished
		if err := store.FinishRun(run); err != nil {
			t.Fatalf("finish run %s: %v", r.id, err)
		}
	}

	counts, err := store.OutcomeCounts(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("outcome counts: %v", err)
	}
	if counts["posted"] != 1 || counts["filtered_out"] != 1 {
		t.Fatalf("expected only recent runs counted, got %v", counts)
	}
}
