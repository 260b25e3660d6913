package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/statewalk/statewalk/internal/journal"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Database string
	Limit    int
}

type runSummary struct {
	ID        string `json:"id"`
	Scenario  string `json:"scenario"`
	CreatedAt string `json:"created_at"`
	Outcome   string `json:"outcome"`
	States    int    `json:"states"`
	Violation string `json:"violation,omitempty"`
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List journaled runs",
		Long: `List runs recorded in the journal, newest first.

Example:
  statewalk runs --db ./runs.db --limit 10`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the run journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list (0 for all)")

	return cmd
}

func runRuns(cmd *cobra.Command, opts *RunsOptions) error {
	j, err := journal.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	runs, err := j.ListRuns(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	summaries := make([]runSummary, 0, len(runs))
	var b strings.Builder
	for _, r := range runs {
		summaries = append(summaries, runSummary{
			ID:        r.ID,
			Scenario:  r.Scenario,
			CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
			Outcome:   r.Outcome,
			States:    r.States,
			Violation: r.Violation,
		})
		fmt.Fprintf(&b, "%s  %-20s %-13s states=%d  %s\n",
			r.ID, r.Scenario, r.Outcome, r.States,
			r.CreatedAt.UTC().Format(time.RFC3339))
	}
	if len(runs) == 0 {
		b.WriteString("no runs journaled\n")
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Success(b.String(), summaries)
}
