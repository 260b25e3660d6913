package explore

// frontier is the FIFO queue of configurations awaiting expansion. FIFO
// order makes the search breadth-first: all configurations at depth d expand
// before any at depth d+1. The engine is single-threaded, so no locking.
type frontier struct {
	configs []*Configuration
}

func newFrontier() *frontier {
	return &frontier{configs: make([]*Configuration, 0, 64)}
}

// push appends a configuration to the back of the queue.
func (f *frontier) push(c *Configuration) {
	f.configs = append(f.configs, c)
}

// pop removes and returns the front configuration.
func (f *frontier) pop() (*Configuration, bool) {
	if len(f.configs) == 0 {
		return nil, false
	}
	c := f.configs[0]

	// Nil out the slot so the backing array does not retain the popped
	// configuration's snapshot until reallocation.
	f.configs[0] = nil
	if len(f.configs) == 1 {
		f.configs = f.configs[:0]
	} else {
		f.configs = f.configs[1:]
	}
	return c, true
}

func (f *frontier) len() int {
	return len(f.configs)
}
