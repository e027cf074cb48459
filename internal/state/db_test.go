package state

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	if err := db.Migrate(); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestRunLifecycle(t *testing.T) {
	db := openTestDB(t)

	started := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	id, err := db.CreateRun("design.yaml", "out", started)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	run, err := db.GetRun(id)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run == nil || run.FinishedAt != nil || run.Passed {
		t.Fatalf("fresh run = %+v", run)
	}
	if !run.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", run.StartedAt, started)
	}

	if err := db.FinishRun(id, started.Add(time.Minute), true, 2); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	run, err = db.GetRun(id)
	if err != nil {
		t.Fatalf("GetRun after finish: %v", err)
	}
	if !run.Passed || run.Attempts != 2 || run.FinishedAt == nil {
		t.Errorf("finished run = %+v", run)
	}
}

func TestGetRunMissing(t *testing.T) {
	db := openTestDB(t)
	run, err := db.GetRun("no-such-run")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run != nil {
		t.Errorf("run = %+v, want nil", run)
	}
}

func TestListRunsMostRecentFirst(t *testing.T) {
	db := openTestDB(t)

	base := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	older, _ := db.CreateRun("a.yaml", "out", base)
	newer, _ := db.CreateRun("b.yaml", "out", base.Add(time.Hour))

	runs, err := db.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != newer || runs[1].ID != older {
		t.Errorf("runs = %+v", runs)
	}

	limited, err := db.ListRuns(1)
	if err != nil {
		t.Fatalf("ListRuns(1): %v", err)
	}
	if len(limited) != 1 || limited[0].ID != newer {
		t.Errorf("limited runs = %+v", limited)
	}
}

func TestFailuresRoundTrip(t *testing.T) {
	db := openTestDB(t)

	id, _ := db.CreateRun("design.yaml", "out", time.Now())
	failures := []RunFailure{
		{RunID: id, Artifact: "Card", ErrorCount: 1, Detail: "3:1 TS2304 Cannot find name 'React'"},
		{RunID: id, Artifact: "Button", ErrorCount: 2},
	}
	if err := db.AddFailures(id, failures); err != nil {
		t.Fatalf("AddFailures: %v", err)
	}

	got, err := db.ListFailures(id)
	if err != nil {
		t.Fatalf("ListFailures: %v", err)
	}
	if len(got) != 2 || got[0].Artifact != "Button" || got[1].Artifact != "Card" {
		t.Errorf("failures = %+v", got)
	}
	if got[1].Detail == "" {
		t.Error("detail not persisted")
	}
}

func TestPurgeOldRuns(t *testing.T) {
	db := openTestDB(t)

	db.CreateRun("old.yaml", "out", time.Now().Add(-48*time.Hour))
	db.CreateRun("new.yaml", "out", time.Now())

	n, err := db.PurgeOldRuns(24 * time.Hour)
	if err != nil {
		t.Fatalf("PurgeOldRuns: %v", err)
	}
	if n != 1 {
		t.Errorf("purged %d runs, want 1", n)
	}

	runs, _ := db.ListRuns(0)
	if len(runs) != 1 || runs[0].DesignPath != "new.yaml" {
		t.Errorf("remaining runs = %+v", runs)
	}
}
