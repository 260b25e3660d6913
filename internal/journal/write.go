package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one journaled scenario run.
type Run struct {
	// ID is the run's UUID. Assigned by WriteRun when empty.
	ID string

	Scenario  string
	CreatedAt time.Time

	// Outcome is "exhausted", "bound-reached", or "violation".
	Outcome string

	States      int
	Transitions int
	Pruned      int
	Depth       int

	// Violation is the counterexample message, empty unless the outcome is
	// a violation.
	Violation string

	// Schedule is the counterexample interleaving, in execution order.
	Schedule []ScheduleEntry
}

// ScheduleEntry is one step of a counterexample schedule.
type ScheduleEntry struct {
	Process   string
	Step      string
	StateHash string
}

// WriteRun inserts a run and its schedule in one transaction, returning the
// run ID. A zero CreatedAt is stamped with the current time.
func (j *Journal) WriteRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("journal: begin write: %w", err)
	}
	defer tx.Rollback()

	var violation any
	if run.Violation != "" {
		violation = run.Violation
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, scenario, created_at, outcome, states, transitions, pruned, depth, violation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Scenario,
		run.CreatedAt.UTC().Format(time.RFC3339),
		run.Outcome,
		run.States,
		run.Transitions,
		run.Pruned,
		run.Depth,
		violation,
	)
	if err != nil {
		return "", fmt.Errorf("journal: write run: %w", err)
	}

	for i, e := range run.Schedule {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO schedule_entries (run_id, idx, process, step, state_hash)
			VALUES (?, ?, ?, ?, ?)
		`, run.ID, i, e.Process, e.Step, e.StateHash)
		if err != nil {
			return "", fmt.Errorf("journal: write schedule entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("journal: commit write: %w", err)
	}
	return run.ID, nil
}
