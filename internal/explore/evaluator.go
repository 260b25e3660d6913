package explore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/statewalk/statewalk/internal/machine"
	"github.com/statewalk/statewalk/internal/object"
	"github.com/statewalk/statewalk/internal/statetree"
)

// Outcome is the normal-termination mode of a search.
type Outcome int

const (
	// OutcomeExhausted means the frontier emptied: every reachable
	// configuration was visited.
	OutcomeExhausted Outcome = iota + 1

	// OutcomeBoundReached means the caller's step bound was consumed before
	// the frontier emptied: coverage is partial.
	OutcomeBoundReached
)

func (o Outcome) String() string {
	switch o {
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeBoundReached:
		return "bound-reached"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Stats summarizes the most recent run.
type Stats struct {
	// States counts distinct configurations discovered (visited-set inserts).
	States int

	// Transitions counts step executions, including runs aborted at an
	// unresolved choice.
	Transitions int

	// Pruned counts configurations discarded because their hash was already
	// visited.
	Pruned int

	// Depth is the largest number of completed transitions from the initial
	// configuration to any visited one.
	Depth int
}

// Evaluator drives the interleaving search over a set of tracked records and
// processes. It is single-threaded; Evaluate must not be called concurrently.
type Evaluator struct {
	records []*object.Record
	byName  map[string]*object.Record
	procs   []*machine.Process

	// initial is the snapshot of the records as supplied at construction.
	// Every run starts from it; the records themselves are scratch space
	// during a search.
	initial statetree.Map

	logger *slog.Logger
	graph  *Graph

	stats Stats
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the structured logger. Defaults to a discard handler.
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) { e.logger = l }
}

// WithGraph enables recording of the explored configuration graph for
// diagnostics. Off by default: the graph retains every visited
// configuration's summary for the lifetime of the run.
func WithGraph() Option {
	return func(e *Evaluator) { e.graph = newGraph() }
}

// New builds an Evaluator over the given tracked records and processes.
// Record names and process names must be unique, and every process target
// must be one of the tracked records.
func New(records []*object.Record, procs []*machine.Process, opts ...Option) (*Evaluator, error) {
	e := &Evaluator{
		records: records,
		byName:  make(map[string]*object.Record, len(records)),
		procs:   procs,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, r := range records {
		if _, dup := e.byName[r.Name()]; dup {
			return nil, fmt.Errorf("explore: duplicate record name %q", r.Name())
		}
		e.byName[r.Name()] = r
	}

	seen := make(map[string]bool, len(procs))
	for _, p := range procs {
		if seen[p.Name()] {
			return nil, fmt.Errorf("explore: duplicate process name %q", p.Name())
		}
		seen[p.Name()] = true
		if _, tracked := e.byName[p.Target().Name()]; !tracked {
			return nil, fmt.Errorf("explore: process %q targets untracked record %q", p.Name(), p.Target().Name())
		}
	}

	e.initial = e.snapshot()

	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Stats returns the statistics of the most recent run.
func (e *Evaluator) Stats() Stats {
	return e.stats
}

// Graph returns the explored configuration graph, or nil when recording was
// not enabled.
func (e *Evaluator) Graph() *Graph {
	return e.graph
}

// Evaluate runs the search.
//
// stepBound caps the total number of step executions across the whole run; a
// bound of zero or less means unbounded (the caller then relies on state
// dedup for termination). Returns OutcomeExhausted or OutcomeBoundReached on
// normal termination. A *machine.Violation or *statetree.EncodeError aborts
// the search immediately and propagates unmodified: both are correctness
// findings, never retried.
func (e *Evaluator) Evaluate(ctx context.Context, stepBound int) (Outcome, error) {
	e.stats = Stats{}
	if e.graph != nil {
		e.graph.reset()
	}

	visited := make(map[statetree.Hash]struct{})
	fr := newFrontier()

	fr.push(&Configuration{
		objects: e.initial,
		cursors: make([]int, len(e.procs)),
	})

	for {
		c, ok := fr.pop()
		if !ok {
			e.logger.Info("exploration exhausted",
				"states", e.stats.States,
				"transitions", e.stats.Transitions,
				"depth", e.stats.Depth,
			)
			return OutcomeExhausted, nil
		}

		if err := ctx.Err(); err != nil {
			return 0, err
		}

		h, err := c.Hash()
		if err != nil {
			return 0, err
		}
		if _, seen := visited[h]; seen {
			e.stats.Pruned++
			continue
		}
		visited[h] = struct{}{}
		e.stats.States++
		if c.depth > e.stats.Depth {
			e.stats.Depth = c.depth
			e.logger.Debug("depth advanced",
				"depth", c.depth,
				"states", e.stats.States,
				"frontier", fr.len(),
			)
		}
		if e.graph != nil {
			e.graph.addNode(h, c)
		}

		e.logger.Debug("expanding configuration",
			"hash", h.Short(),
			"depth", c.depth,
			"frontier", fr.len(),
		)

		for i := range e.procs {
			// A pending choice keeps the owning step's atomic boundary open:
			// no other process may interleave until it completes.
			if c.pending != nil && c.pending.process != i {
				continue
			}
			if !e.procs[i].Enabled(c.cursors[i]) {
				continue
			}

			if stepBound > 0 && e.stats.Transitions >= stepBound {
				e.logger.Info("step bound reached",
					"bound", stepBound,
					"states", e.stats.States,
					"frontier", fr.len(),
				)
				return OutcomeBoundReached, nil
			}

			succs, err := e.runStep(c, h, i)
			if err != nil {
				return 0, err
			}
			for _, s := range succs {
				fr.push(s)
			}
		}
	}
}

// snapshot captures all tracked records as a name-keyed tree.
func (e *Evaluator) snapshot() statetree.Map {
	m := make(statetree.Map, len(e.records))
	for _, r := range e.records {
		m[r.Name()] = r.ToTree()
	}
	return m
}

// restore loads every tracked record from a configuration snapshot. Records
// are reused as scratch space across step runs; the restore gives the step a
// private copy of the branch's state (copy-on-fork).
func (e *Evaluator) restore(objects statetree.Map) error {
	for _, r := range e.records {
		tree, ok := objects[r.Name()]
		if !ok {
			return fmt.Errorf("explore: snapshot missing record %q", r.Name())
		}
		if err := r.FromTree(tree); err != nil {
			return err
		}
	}
	return nil
}

// runStep executes process i's next step against configuration c and returns
// the successor configurations. Zero successors means a dead end (an empty
// choice set). An invariant failure propagates as a *machine.Violation
// carrying the full interleaving schedule.
func (e *Evaluator) runStep(c *Configuration, parent statetree.Hash, i int) ([]*Configuration, error) {
	p := e.procs[i]
	step, next, err := p.StepAt(c.cursors[i])
	if err != nil {
		return nil, err
	}

	if err := e.restore(c.objects); err != nil {
		return nil, err
	}

	var resolutions []statetree.Value
	if c.pending != nil {
		resolutions = c.pending.resolutions
	}
	mctx := machine.NewContext(resolutions)

	e.stats.Transitions++
	stepErr := step.Fn(mctx, p.Target())

	switch {
	case errors.Is(stepErr, machine.ErrChoicePending):
		return e.forkChoice(c, parent, i, mctx, step, resolutions)

	case machine.IsViolation(stepErr):
		var v *machine.Violation
		errors.As(stepErr, &v)
		v.Process = p.Name()
		v.Step = step.Name
		v.Schedule = append(c.cloneSchedule(), machine.ScheduleEntry{
			Process:   p.Name(),
			Step:      step.Name,
			StateHash: "(violation)",
		})
		e.logger.Info("invariant violated",
			"process", p.Name(),
			"step", step.Name,
			"depth", c.depth+1,
		)
		return nil, v

	case stepErr != nil:
		return nil, fmt.Errorf("explore: process %s step %s: %w", p.Name(), step.Name, stepErr)
	}

	// The step completed: derive the successor from the post-step snapshot.
	cursors := c.cloneCursors()
	cursors[i] = next

	succ := &Configuration{
		objects: e.snapshot(),
		cursors: cursors,
		depth:   c.depth + 1,
	}
	sh, err := succ.Hash()
	if err != nil {
		return nil, err
	}
	succ.schedule = append(c.cloneSchedule(), machine.ScheduleEntry{
		Process:   p.Name(),
		Step:      step.Name,
		StateHash: sh.Hex(),
	})

	if e.graph != nil {
		e.graph.addEdge(parent, sh, p.Name(), step.Name, -1)
	}
	return []*Configuration{succ}, nil
}

// forkChoice expands a step that stopped at an unresolved choice: one
// successor per member, each identical to the parent except for the appended
// resolution. The partial mutations of the aborted run are discarded; the
// successor re-runs the whole step with the resolution replayed. An empty
// choice set yields zero successors - a dead end, not an error.
func (e *Evaluator) forkChoice(
	c *Configuration,
	parent statetree.Hash,
	i int,
	mctx *machine.Context,
	step machine.Step,
	resolutions []statetree.Value,
) ([]*Configuration, error) {
	set := mctx.Pending()
	if set == nil {
		return nil, fmt.Errorf("explore: process %s step %s: choice pending without a recorded set", e.procs[i].Name(), step.Name)
	}
	if set.Len() == 0 {
		e.logger.Debug("empty choice set: dead end",
			"process", e.procs[i].Name(),
			"step", step.Name,
		)
		return nil, nil
	}

	succs := make([]*Configuration, 0, set.Len())
	for idx, member := range set.Members() {
		rs := make([]statetree.Value, len(resolutions), len(resolutions)+1)
		copy(rs, resolutions)
		rs = append(rs, member)

		succ := &Configuration{
			objects:  c.objects,
			cursors:  c.cursors,
			pending:  &pendingChoice{process: i, resolutions: rs},
			schedule: c.schedule,
			depth:    c.depth,
		}
		if e.graph != nil {
			sh, err := succ.Hash()
			if err != nil {
				return nil, err
			}
			e.graph.addEdge(parent, sh, e.procs[i].Name(), step.Name, idx)
		}
		succs = append(succs, succ)
	}
	return succs, nil
}
