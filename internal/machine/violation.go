package machine

import (
	"errors"
	"fmt"
	"strings"
)

// ScheduleEntry is one executed transition in an interleaving: which process
// ran which step, and the configuration hash it produced.
type ScheduleEntry struct {
	Process   string
	Step      string
	StateHash string
}

func (e ScheduleEntry) String() string {
	return fmt.Sprintf("%s/%s -> %s", e.Process, e.Step, e.StateHash)
}

// Violation is a failed user invariant. It is the primary useful output of a
// search: the engine aborts immediately and surfaces it to the caller with
// the full interleaving schedule that reached the violating state, so the
// counterexample can be replayed.
type Violation struct {
	// Message describes the failed invariant.
	Message string

	// Process and Step identify the transition that raised the violation.
	// Filled in by the evaluator when the violation propagates.
	Process string
	Step    string

	// Schedule is the interleaving from the initial configuration up to and
	// including the violating transition.
	Schedule []ScheduleEntry
}

// Error implements the error interface.
func (v *Violation) Error() string {
	if v.Process != "" {
		return fmt.Sprintf("assertion violated in %s/%s: %s", v.Process, v.Step, v.Message)
	}
	return fmt.Sprintf("assertion violated: %s", v.Message)
}

// FormatSchedule renders the counterexample interleaving, one transition per
// line.
func (v *Violation) FormatSchedule() string {
	if len(v.Schedule) == 0 {
		return "(no schedule recorded)"
	}
	var b strings.Builder
	for i, e := range v.Schedule {
		fmt.Fprintf(&b, "%3d. %s\n", i+1, e)
	}
	return b.String()
}

// Violatedf builds a Violation with a formatted message. Steps return it to
// abort the whole search.
func Violatedf(format string, args ...any) *Violation {
	return &Violation{Message: fmt.Sprintf(format, args...)}
}

// Assert returns nil when cond holds and a Violation otherwise. The common
// shape of invariant checks inside steps.
func Assert(cond bool, format string, args ...any) error {
	if cond {
		return nil
	}
	return Violatedf(format, args...)
}

// IsViolation reports whether err is, or wraps, a *Violation.
// Uses errors.As to handle wrapped errors.
func IsViolation(err error) bool {
	var v *Violation
	return errors.As(err, &v)
}
