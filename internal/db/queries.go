package db

import (
	"database/sql"
	"fmt"
)

// Run represents a row in the runs table.
type Run struct {
	RunID      string
	Design     string
	Status     string
	StartedAt  string
	FinishedAt string
}

// StageEvent represents a row in the stage_events table.
type StageEvent struct {
	ID         int
	RunID      string
	StageIndex int
	StageName  string
	Event      string
	ExitCode   int
	Timestamp  string
}

// CreateRun records the start of a pipeline run.
func (d *DB) CreateRun(runID string, design string) error {
	_, err := d.conn.Exec(
		`INSERT INTO runs (run_id, design, status) VALUES (?, ?, 'in_progress')`,
		runID, design,
	)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// FinishRun moves a run to its terminal status.
func (d *DB) FinishRun(runID string, status string) error {
	_, err := d.conn.Exec(
		`UPDATE runs SET status = ?, finished_at = datetime('now') WHERE run_id = ?`,
		status, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// LogStageEvent inserts a stage event.
func (d *DB) LogStageEvent(runID string, stageIndex int, stageName string, event string, exitCode int) error {
	_, err := d.conn.Exec(
		`INSERT INTO stage_events (run_id, stage_index, stage_name, event, exit_code) VALUES (?, ?, ?, ?, ?)`,
		runID, stageIndex, stageName, event, exitCode,
	)
	if err != nil {
		return fmt.Errorf("log stage event: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (d *DB) RecentRuns(limit int) ([]Run, error) {
	rows, err := d.conn.Query(
		`SELECT run_id, design, status, started_at, COALESCE(finished_at, '')
		 FROM runs ORDER BY started_at DESC, run_id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.Design, &r.Status, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// StageEvents returns all stage events for a run, in insertion order.
func (d *DB) StageEvents(runID string) ([]StageEvent, error) {
	rows, err := d.conn.Query(
		`SELECT id, run_id, stage_index, stage_name, event, COALESCE(exit_code, 0), timestamp
		 FROM stage_events WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("stage events: %w", err)
	}
	defer rows.Close()

	var events []StageEvent
	for rows.Next() {
		var e StageEvent
		var exitCode sql.NullInt64
		if err := rows.Scan(&e.ID, &e.RunID, &e.StageIndex, &e.StageName, &e.Event, &exitCode, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan stage event: %w", err)
		}
		if exitCode.Valid {
			e.ExitCode = int(exitCode.Int64)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
