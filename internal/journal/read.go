package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrRunNotFound is returned by ReadRun for an unknown run ID.
var ErrRunNotFound = errors.New("journal: run not found")

// ReadRun returns one run by ID, schedule included.
func (j *Journal) ReadRun(ctx context.Context, id string) (*Run, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT id, scenario, created_at, outcome, states, transitions, pruned, depth, violation
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("journal: read run: %w", err)
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT process, step, state_hash
		FROM schedule_entries
		WHERE run_id = ?
		ORDER BY idx ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("journal: query schedule: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e ScheduleEntry
		if err := rows.Scan(&e.Process, &e.Step, &e.StateHash); err != nil {
			return nil, fmt.Errorf("journal: scan schedule entry: %w", err)
		}
		run.Schedule = append(run.Schedule, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: iterate schedule: %w", err)
	}

	return run, nil
}

// ListRuns returns the most recent runs, newest first, without schedules.
// A non-positive limit returns all runs.
func (j *Journal) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as no limit
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT id, scenario, created_at, outcome, states, transitions, pruned, depth, violation
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("journal: scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: iterate runs: %w", err)
	}

	return runs, nil
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var (
		run       Run
		createdAt string
		violation sql.NullString
	)
	err := s.Scan(
		&run.ID,
		&run.Scenario,
		&createdAt,
		&run.Outcome,
		&run.States,
		&run.Transitions,
		&run.Pruned,
		&run.Depth,
		&violation,
	)
	if err != nil {
		return nil, err
	}

	run.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if violation.Valid {
		run.Violation = violation.String
	}
	return &run, nil
}
