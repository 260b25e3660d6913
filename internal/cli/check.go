package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/statewalk/statewalk/internal/harness"
	"github.com/statewalk/statewalk/internal/journal"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Database string
	Graph    bool
}

// checkReport is the JSON payload for a check run.
type checkReport struct {
	Scenario    string   `json:"scenario"`
	Outcome     string   `json:"outcome"`
	States      int      `json:"states"`
	Transitions int      `json:"transitions"`
	Pruned      int      `json:"pruned"`
	Depth       int      `json:"depth"`
	Violation   string   `json:"violation,omitempty"`
	Errors      []string `json:"errors,omitempty"`
	RunID       string   `json:"run_id,omitempty"`
	Graph       string   `json:"graph,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <scenario.yaml>",
		Short: "Run a scenario and check its expectations",
		Long: `Run a scenario: explore every interleaving of its processes, check the
declared expectations, and report the outcome.

With --db, the run result (and any counterexample schedule) is appended to
the run journal.

Example:
  statewalk check examples/mutex.yaml
  statewalk check --db ./runs.db --graph examples/mutex.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the run journal (optional)")
	cmd.Flags().BoolVar(&opts.Graph, "graph", false, "record and print the exploration graph")

	return cmd
}

func runCheck(cmd *cobra.Command, opts *CheckOptions, path string) error {
	logger := newLogger(opts.Verbose)

	s, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	if opts.Graph {
		s.Graph = true
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := harness.Run(ctx, s, harness.Options{Logger: logger})
	if err != nil {
		return WrapExitError(ExitCommandError, "scenario run failed", err)
	}

	report := checkReport{
		Scenario:    result.ScenarioName,
		Outcome:     result.Outcome,
		States:      result.Stats.States,
		Transitions: result.Stats.Transitions,
		Pruned:      result.Stats.Pruned,
		Depth:       result.Stats.Depth,
		Errors:      result.Errors,
		Graph:       result.GraphDump,
	}
	if result.Violation != nil {
		report.Violation = result.Violation.Message
	}

	if opts.Database != "" {
		id, err := journalRun(ctx, opts.Database, result)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to journal run", err)
		}
		report.RunID = id
	}

	text := result.FormatText()
	if opts.Graph && result.GraphDump != "" {
		text += "\n" + result.GraphDump
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if !result.Pass() {
		if err := out.Failure(text, report, "expectations not met"); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "scenario expectations not met")
	}
	return out.Success(text, report)
}

// journalRun appends one result to the run journal at path.
func journalRun(ctx context.Context, path string, r *harness.Result) (string, error) {
	j, err := journal.Open(path)
	if err != nil {
		return "", err
	}
	defer j.Close()

	run := journal.Run{
		Scenario:    r.ScenarioName,
		Outcome:     r.Outcome,
		States:      r.Stats.States,
		Transitions: r.Stats.Transitions,
		Pruned:      r.Stats.Pruned,
		Depth:       r.Stats.Depth,
	}
	if r.Violation != nil {
		run.Violation = r.Violation.Message
		for _, e := range r.Violation.Schedule {
			run.Schedule = append(run.Schedule, journal.ScheduleEntry{
				Process:   e.Process,
				Step:      e.Step,
				StateHash: e.StateHash,
			})
		}
	}
	return j.WriteRun(ctx, run)
}
