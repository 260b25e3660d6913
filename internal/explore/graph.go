package explore

import (
	"fmt"
	"sort"
	"strings"

	"github.com/statewalk/statewalk/internal/statetree"
)

// Graph records the explored configuration graph for diagnostics. It is
// informational only: the search itself never reads it, and it is discarded
// with the evaluator. Nodes are visited configurations, edges are the
// transitions (or choice forks) between them.
type Graph struct {
	nodes map[statetree.Hash]*graphNode
	edges []graphEdge
}

type graphNode struct {
	depth   int
	pending bool
	summary string
}

type graphEdge struct {
	from    statetree.Hash
	to      statetree.Hash
	process string
	step    string
	// branch is the choice-member index for fork edges, -1 for completed
	// transitions.
	branch int
}

func newGraph() *Graph {
	return &Graph{nodes: make(map[statetree.Hash]*graphNode)}
}

func (g *Graph) reset() {
	g.nodes = make(map[statetree.Hash]*graphNode)
	g.edges = nil
}

func (g *Graph) addNode(h statetree.Hash, c *Configuration) {
	if _, ok := g.nodes[h]; ok {
		return
	}
	g.nodes[h] = &graphNode{
		depth:   c.depth,
		pending: c.pending != nil,
		summary: summarize(c.objects),
	}
}

func (g *Graph) addEdge(from, to statetree.Hash, process, step string, branch int) {
	g.edges = append(g.edges, graphEdge{
		from:    from,
		to:      to,
		process: process,
		step:    step,
		branch:  branch,
	})
}

// Len returns the number of recorded nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Dump renders the graph as deterministic text: nodes sorted by hash, then
// edges sorted by (from, to, process, step, branch). Suitable for golden
// comparison.
func (g *Graph) Dump() string {
	hashes := make([]statetree.Hash, 0, len(g.nodes))
	for h := range g.nodes {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool {
		return hashes[i].Compare(hashes[j]) < 0
	})

	var b strings.Builder
	fmt.Fprintf(&b, "nodes: %d\n", len(g.nodes))
	for _, h := range hashes {
		n := g.nodes[h]
		marker := ""
		if n.pending {
			marker = " (pending-choice)"
		}
		fmt.Fprintf(&b, "  %s depth=%d%s %s\n", h.Short(), n.depth, marker, n.summary)
	}

	edges := make([]graphEdge, len(g.edges))
	copy(edges, g.edges)
	sort.Slice(edges, func(i, j int) bool {
		a, z := edges[i], edges[j]
		if c := a.from.Compare(z.from); c != 0 {
			return c < 0
		}
		if c := a.to.Compare(z.to); c != 0 {
			return c < 0
		}
		if a.process != z.process {
			return a.process < z.process
		}
		if a.step != z.step {
			return a.step < z.step
		}
		return a.branch < z.branch
	})

	fmt.Fprintf(&b, "edges: %d\n", len(edges))
	for _, e := range edges {
		label := fmt.Sprintf("%s/%s", e.process, e.step)
		if e.branch >= 0 {
			label = fmt.Sprintf("%s?choice=%d", label, e.branch)
		}
		fmt.Fprintf(&b, "  %s -> %s [%s]\n", e.from.Short(), e.to.Short(), label)
	}
	return b.String()
}

// summarize renders an object snapshot as a compact single line, fields in
// sorted order.
func summarize(objects statetree.Map) string {
	var b strings.Builder
	for i, name := range objects.SortedKeys() {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%s%s", name, summarizeValue(objects[name]))
	}
	return b.String()
}

func summarizeValue(v statetree.Value) string {
	switch val := v.(type) {
	case statetree.String:
		return fmt.Sprintf("%q", string(val))
	case statetree.Int:
		return fmt.Sprintf("%d", int64(val))
	case statetree.Bool:
		return fmt.Sprintf("%t", bool(val))
	case statetree.Bytes:
		return fmt.Sprintf("0x%x", []byte(val))
	case statetree.Absent:
		return "_"
	case statetree.HashRef:
		return "#" + statetree.Hash(val).Short()
	case statetree.Seq:
		parts := make([]string, len(val))
		for i, e := range val {
			parts[i] = summarizeValue(e)
		}
		return "[" + strings.Join(parts, " ") + "]"
	case statetree.Map:
		parts := make([]string, 0, len(val))
		for _, k := range val.SortedKeys() {
			parts = append(parts, fmt.Sprintf("%s=%s", k, summarizeValue(val[k])))
		}
		return "{" + strings.Join(parts, " ") + "}"
	case statetree.Choice:
		parts := make([]string, 0, val.Len())
		for _, m := range val.Members() {
			parts = append(parts, summarizeValue(m))
		}
		return "choice{" + strings.Join(parts, " ") + "}"
	default:
		return fmt.Sprintf("<%T>", v)
	}
}
