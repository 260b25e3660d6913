// Package machine defines the atomic transition model: Steps, Processes, and
// the violation errors user invariants raise.
//
// A Step is the smallest unit of process execution. It runs to completion as
// a single indivisible transition; any ordinary function it calls executes
// inside the same atomic boundary and produces no externally observable
// intermediate state. A Process is an ordered list of Steps bound to one
// target record, modelling one logical thread of control. Interleaving
// between processes happens only at step boundaries, never inside a step.
//
// Processes are immutable descriptors. The per-process cursor (which step
// runs next) is carried by the search engine's configurations, not by the
// process itself, so exploring one interleaving can never disturb another.
package machine

import (
	"errors"
	"fmt"

	"github.com/statewalk/statewalk/internal/object"
	"github.com/statewalk/statewalk/internal/statetree"
)

// StepFunc is one atomic transition bound to a target record. It may read
// and write the target through the record boundary, consume a
// nondeterministic choice via ctx.Choose, and fail with a *Violation when a
// user invariant does not hold.
type StepFunc func(ctx *Context, self *object.Record) error

// Step pairs a transition function with a stable name for schedules and
// diagnostics.
type Step struct {
	Name string
	Fn   StepFunc
}

// Process is an ordered list of Steps sharing one target record.
type Process struct {
	name   string
	target *object.Record
	steps  []Step
	loop   bool
}

// NewProcess builds a finite process: each step runs once in order, and the
// process reports no more enabled steps once the cursor passes the last one.
func NewProcess(name string, target *object.Record, steps ...Step) *Process {
	return newProcess(name, target, steps, false)
}

// NewLoop builds a generator-style process: the step list repeats forever and
// the process is always enabled. Callers must rely on the evaluator's step
// bound or state dedup for termination.
func NewLoop(name string, target *object.Record, steps ...Step) *Process {
	return newProcess(name, target, steps, true)
}

func newProcess(name string, target *object.Record, steps []Step, loop bool) *Process {
	// Copy to keep the descriptor immutable after construction.
	cp := make([]Step, len(steps))
	copy(cp, steps)
	return &Process{name: name, target: target, steps: cp, loop: loop}
}

// Name returns the process name.
func (p *Process) Name() string { return p.name }

// Target returns the record this process's steps are bound to.
func (p *Process) Target() *object.Record { return p.target }

// Len returns the number of declared steps.
func (p *Process) Len() int { return len(p.steps) }

// Loop reports whether the process is generator-style.
func (p *Process) Loop() bool { return p.loop }

// Enabled reports whether a next step exists at the given cursor. Loop
// processes with at least one step are always enabled.
func (p *Process) Enabled(cursor int) bool {
	if len(p.steps) == 0 {
		return false
	}
	if p.loop {
		return true
	}
	return cursor < len(p.steps)
}

// StepAt returns the step to run at cursor and the successor cursor. Loop
// processes wrap around; finite processes advance past the end and disable.
func (p *Process) StepAt(cursor int) (Step, int, error) {
	if !p.Enabled(cursor) {
		return Step{}, cursor, fmt.Errorf("machine: process %q has no enabled step at cursor %d", p.name, cursor)
	}
	idx := cursor
	if p.loop {
		idx = cursor % len(p.steps)
	}
	next := cursor + 1
	if p.loop {
		next = (cursor + 1) % len(p.steps)
	}
	return p.steps[idx], next, nil
}

// ErrChoicePending signals that a step touched an unresolved nondeterministic
// choice. The step must return it unmodified; the evaluator discards the
// partial transition and forks one successor per choice member.
var ErrChoicePending = errors.New("machine: nondeterministic choice pending")

// Context is the per-execution step context. It replays previously resolved
// choices in call order and records the first unresolved one.
type Context struct {
	resolutions []statetree.Value
	next        int
	pending     *statetree.Choice
}

// NewContext builds a context that replays the given choice resolutions.
func NewContext(resolutions []statetree.Value) *Context {
	return &Context{resolutions: resolutions}
}

// Choose consumes a nondeterministic choice. When a resolution from an
// earlier fork is available it is returned directly; otherwise the set is
// recorded and ErrChoicePending returned, which the step must propagate.
func (c *Context) Choose(set statetree.Choice) (statetree.Value, error) {
	if c.next < len(c.resolutions) {
		v := c.resolutions[c.next]
		c.next++
		return v, nil
	}
	c.pending = &set
	return nil, ErrChoicePending
}

// Pending returns the unresolved choice recorded by Choose, if any.
func (c *Context) Pending() *statetree.Choice {
	return c.pending
}
