package explore

import (
	"github.com/statewalk/statewalk/internal/machine"
	"github.com/statewalk/statewalk/internal/statetree"
)

// pendingChoice marks a configuration whose next transition is the re-run of
// a step that stopped at an unresolved nondeterministic choice. Resolutions
// are replayed to the step in call order; only the owning process may run
// from such a configuration, because the step's atomic boundary is still
// open.
type pendingChoice struct {
	process     int
	resolutions []statetree.Value
}

// Configuration is one point in the explored state space: a snapshot of all
// tracked records as state trees, each process's cursor, and any pending
// choice resolutions. Configurations are immutable once created; successors
// are always new values derived by applying exactly one enabled transition.
type Configuration struct {
	// objects maps record name to its snapshot tree.
	objects statetree.Map

	// cursors holds the next-step cursor per process, parallel to the
	// evaluator's process list.
	cursors []int

	pending *pendingChoice

	// schedule records the interleaving that produced this configuration.
	// Excluded from the hash: two paths reaching identical state are the
	// same configuration.
	schedule []machine.ScheduleEntry

	// depth is the number of completed transitions from the initial
	// configuration.
	depth int

	// hash memoizes the configuration's content hash.
	hash   statetree.Hash
	hashed bool
}

// Hash returns the configuration's content hash, computing and memoizing it
// on first use. The hash covers the object snapshots, the cursors, and any
// pending choice resolutions; it never depends on the schedule or on object
// identity.
func (c *Configuration) Hash() (statetree.Hash, error) {
	if c.hashed {
		return c.hash, nil
	}

	cursors := make(statetree.Seq, len(c.cursors))
	for i, cur := range c.cursors {
		cursors[i] = statetree.Int(cur)
	}

	var pending statetree.Value = statetree.Absent{}
	if c.pending != nil {
		pending = statetree.Map{
			"process":     statetree.Int(c.pending.process),
			"resolutions": statetree.Seq(c.pending.resolutions),
		}
	}

	tree := statetree.Map{
		"objects": c.objects,
		"cursors": cursors,
		"pending": pending,
	}

	h, err := statetree.HashTree(tree)
	if err != nil {
		return statetree.Hash{}, err
	}
	c.hash = h
	c.hashed = true
	return h, nil
}

// Depth returns the number of transitions from the initial configuration.
func (c *Configuration) Depth() int {
	return c.depth
}

// Schedule returns the interleaving that produced this configuration.
// The returned slice is shared; callers must not mutate it.
func (c *Configuration) Schedule() []machine.ScheduleEntry {
	return c.schedule
}

// Objects returns the snapshot of all tracked records.
// The returned map is shared; callers must not mutate it.
func (c *Configuration) Objects() statetree.Map {
	return c.objects
}

// cloneSchedule copies the schedule with room for one appended entry.
// Successors never share a backing array with their predecessor, so a fork
// appending its own entry cannot clobber a sibling's.
func (c *Configuration) cloneSchedule() []machine.ScheduleEntry {
	out := make([]machine.ScheduleEntry, len(c.schedule), len(c.schedule)+1)
	copy(out, c.schedule)
	return out
}

func (c *Configuration) cloneCursors() []int {
	out := make([]int, len(c.cursors))
	copy(out, c.cursors)
	return out
}
