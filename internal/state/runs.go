package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run represents one generate-and-validate run.
type Run struct {
	ID         string     `json:"id"`
	DesignPath string     `json:"design_path"`
	OutputDir  string     `json:"output_dir"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
	Passed     bool       `json:"passed"`
	Attempts   int        `json:"attempts"`
}

// RunFailure records one artifact that was still failing when a run ended.
type RunFailure struct {
	RunID      string `json:"run_id"`
	Artifact   string `json:"artifact"`
	ErrorCount int    `json:"error_count"`
	Detail     string `json:"detail"`
}

// CreateRun inserts a new run and returns its generated ID.
func (db *DB) CreateRun(designPath, outputDir string, startedAt time.Time) (string, error) {
	id := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO runs (id, design_path, output_dir, started_at)
		VALUES (?, ?, ?, ?)
	`, id, designPath, outputDir, formatTime(startedAt))
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	return id, nil
}

// FinishRun records a run's outcome.
func (db *DB) FinishRun(id string, finishedAt time.Time, passed bool, attempts int) error {
	_, err := db.Exec(`
		UPDATE runs SET finished_at = ?, passed = ?, attempts = ?
		WHERE id = ?
	`, formatTime(finishedAt), boolToInt(passed), attempts, id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// AddFailures records the artifacts still failing when a run ended.
func (db *DB) AddFailures(runID string, failures []RunFailure) error {
	if len(failures) == 0 {
		return nil
	}
	return db.Transaction(func(tx *sql.Tx) error {
		for _, f := range failures {
			_, err := tx.Exec(`
				INSERT INTO run_failures (run_id, artifact, error_count, detail)
				VALUES (?, ?, ?, ?)
			`, runID, f.Artifact, f.ErrorCount, f.Detail)
			if err != nil {
				return fmt.Errorf("add failure for %s: %w", f.Artifact, err)
			}
		}
		return nil
	})
}

// GetRun retrieves a run by ID. Returns nil when no run matches.
func (db *DB) GetRun(id string) (*Run, error) {
	row := db.QueryRow(`
		SELECT id, design_path, output_dir, started_at, finished_at, passed, attempts
		FROM runs WHERE id = ?
	`, id)

	r, err := scanRun(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// ListRuns lists runs, most recent first, up to limit (0 for all).
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := `
		SELECT id, design_path, output_dir, started_at, finished_at, passed, attempts
		FROM runs ORDER BY started_at DESC
	`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = db.Query(query+" LIMIT ?", limit)
	} else {
		rows, err = db.Query(query)
	}
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// ListFailures lists the recorded failures for a run.
func (db *DB) ListFailures(runID string) ([]RunFailure, error) {
	rows, err := db.Query(`
		SELECT run_id, artifact, error_count, detail
		FROM run_failures WHERE run_id = ? ORDER BY artifact
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list failures: %w", err)
	}
	defer rows.Close()

	var failures []RunFailure
	for rows.Next() {
		var f RunFailure
		var detail sql.NullString
		if err := rows.Scan(&f.RunID, &f.Artifact, &f.ErrorCount, &detail); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		f.Detail = detail.String
		failures = append(failures, f)
	}
	return failures, rows.Err()
}

func scanRun(scan func(...any) error) (*Run, error) {
	var r Run
	var startedAt string
	var finishedAt sql.NullString
	var passed int
	if err := scan(&r.ID, &r.DesignPath, &r.OutputDir, &startedAt, &finishedAt, &passed, &r.Attempts); err != nil {
		return nil, err
	}
	r.StartedAt, _ = parseTime(startedAt)
	r.FinishedAt = parseNullableTime(finishedAt)
	r.Passed = passed != 0
	return &r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
