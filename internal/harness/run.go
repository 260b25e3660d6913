package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/statewalk/statewalk/internal/explore"
	"github.com/statewalk/statewalk/internal/machine"
)

// Result is the outcome of one scenario run.
type Result struct {
	ScenarioName string

	// Outcome is "exhausted", "bound-reached", or "violation".
	Outcome string

	Stats explore.Stats

	// Violation is the propagated counterexample, when the run found one.
	Violation *machine.Violation

	// GraphDump holds the deterministic exploration-graph text when the
	// scenario enabled graph recording.
	GraphDump string

	// Errors lists failed expectations. Empty means the run matched.
	Errors []string
}

// Pass reports whether every expectation held.
func (r *Result) Pass() bool {
	return len(r.Errors) == 0
}

// AddError records a failed expectation.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Options configures a scenario run.
type Options struct {
	// Logger receives the engine's structured logs. Nil discards them.
	Logger *slog.Logger
}

// Run compiles and executes a scenario, checking expectations.
//
// An engine error other than a violation (an encoding failure, a
// miswired scenario) aborts the run and is returned; a violation is a
// finding, recorded on the Result and checked against the scenario's
// expectations.
func Run(ctx context.Context, s *Scenario, opts Options) (*Result, error) {
	compiled, err := Compile(s)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	evOpts := []explore.Option{explore.WithLogger(logger)}
	if s.Graph {
		evOpts = append(evOpts, explore.WithGraph())
	}

	ev, err := explore.New(compiled.Records, compiled.Processes, evOpts...)
	if err != nil {
		return nil, err
	}

	result := &Result{ScenarioName: s.Name}

	outcome, err := ev.Evaluate(ctx, s.Bound)
	switch {
	case err == nil:
		result.Outcome = outcome.String()
	case machine.IsViolation(err):
		result.Outcome = "violation"
		var v *machine.Violation
		errors.As(err, &v)
		result.Violation = v
	default:
		return nil, err
	}

	result.Stats = ev.Stats()
	if s.Graph && ev.Graph() != nil {
		result.GraphDump = ev.Graph().Dump()
	}

	checkExpectations(s, result)
	return result, nil
}

// checkExpectations compares the run against the scenario's expect clause.
func checkExpectations(s *Scenario, r *Result) {
	if s.Expect == nil {
		if r.Violation != nil {
			r.AddError("unexpected violation: %s", r.Violation.Message)
		}
		return
	}

	if s.Expect.Outcome != "" && s.Expect.Outcome != r.Outcome {
		r.AddError("outcome = %s, want %s", r.Outcome, s.Expect.Outcome)
	}
	if s.Expect.Outcome != "violation" && r.Violation != nil {
		r.AddError("unexpected violation: %s", r.Violation.Message)
	}
	if s.Expect.States > 0 && s.Expect.States != r.Stats.States {
		r.AddError("states = %d, want %d", r.Stats.States, s.Expect.States)
	}
	if s.Expect.ViolationContains != "" {
		if r.Violation == nil {
			r.AddError("expected a violation containing %q, got none", s.Expect.ViolationContains)
		} else if !strings.Contains(r.Violation.Message, s.Expect.ViolationContains) {
			r.AddError("violation %q does not contain %q", r.Violation.Message, s.Expect.ViolationContains)
		}
	}
}

// FormatText renders the result as a deterministic plain-text report. No
// timestamps or identifiers, so the output is stable for golden comparison.
func (r *Result) FormatText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario:    %s\n", r.ScenarioName)
	fmt.Fprintf(&b, "outcome:     %s\n", r.Outcome)
	fmt.Fprintf(&b, "states:      %d\n", r.Stats.States)
	fmt.Fprintf(&b, "transitions: %d\n", r.Stats.Transitions)
	fmt.Fprintf(&b, "pruned:      %d\n", r.Stats.Pruned)
	fmt.Fprintf(&b, "depth:       %d\n", r.Stats.Depth)

	if r.Violation != nil {
		fmt.Fprintf(&b, "violation:   %s\n", r.Violation.Error())
		fmt.Fprintf(&b, "schedule:\n")
		for i, e := range r.Violation.Schedule {
			fmt.Fprintf(&b, "  %2d. %s/%s\n", i+1, e.Process, e.Step)
		}
	}

	if r.Pass() {
		fmt.Fprintf(&b, "result:      PASS\n")
	} else {
		fmt.Fprintf(&b, "result:      FAIL\n")
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "  - %s\n", e)
		}
	}
	return b.String()
}
