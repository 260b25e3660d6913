package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/statewalk/statewalk/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
}

type traceReport struct {
	ID        string               `json:"id"`
	Scenario  string               `json:"scenario"`
	Outcome   string               `json:"outcome"`
	Violation string               `json:"violation,omitempty"`
	Schedule  []traceScheduleEntry `json:"schedule,omitempty"`
}

type traceScheduleEntry struct {
	Process   string `json:"process"`
	Step      string `json:"step"`
	StateHash string `json:"state_hash"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <run-id>",
		Short: "Show a journaled run's counterexample schedule",
		Long: `Show one journaled run, including the interleaving that reached its
violation.

Example:
  statewalk trace --db ./runs.db 0195d2f0-1d0a-7c3e-9f2a-6b1f6f6a8a11`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the run journal (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runTrace(cmd *cobra.Command, opts *TraceOptions, id string) error {
	j, err := journal.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	run, err := j.ReadRun(ctx, id)
	if errors.Is(err, journal.ErrRunNotFound) {
		return WrapExitError(ExitCommandError, fmt.Sprintf("run %s not found", id), nil)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	report := traceReport{
		ID:        run.ID,
		Scenario:  run.Scenario,
		Outcome:   run.Outcome,
		Violation: run.Violation,
	}
	for _, e := range run.Schedule {
		report.Schedule = append(report.Schedule, traceScheduleEntry(e))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "run:      %s\n", run.ID)
	fmt.Fprintf(&b, "scenario: %s\n", run.Scenario)
	fmt.Fprintf(&b, "outcome:  %s\n", run.Outcome)
	if run.Violation != "" {
		fmt.Fprintf(&b, "violation: %s\n", run.Violation)
	}
	if len(run.Schedule) > 0 {
		b.WriteString("schedule:\n")
		for i, e := range run.Schedule {
			fmt.Fprintf(&b, "  %2d. %s/%s -> %s\n", i+1, e.Process, e.Step, e.StateHash)
		}
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Success(b.String(), report)
}
