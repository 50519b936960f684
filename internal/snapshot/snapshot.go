// Package snapshot captures a recorded computation graph as plain data.
//
// A Graph numbers the nodes reachable from a set of terminals in evaluation
// order, roots first, so it can be compared against golden files or
// rendered for a human. Capture never mutates the graph it walks.
package snapshot

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/roach88/autotrace/internal/trace"
)

// Describer is implemented by nodes that can name their operation and
// value. Nodes without it are captured as op "node" with no value.
type Describer interface {
	Describe() (op string, value any)
}

// Node is one captured graph vertex.
type Node struct {
	ID      int    `json:"id"`
	Op      string `json:"op"`
	Value   string `json:"value"`
	Parents []int  `json:"parents"`
}

// Graph is a captured computation graph.
//
// Outputs holds, per terminal passed to Capture, the ID of its node, or -1
// for a nil terminal (an output that did not depend on the input).
type Graph struct {
	Nodes   []Node `json:"nodes"`
	Outputs []int  `json:"outputs"`
}

// Capture snapshots every node reachable from ends.
func Capture(ends ...trace.Node) Graph {
	order := slices.Collect(trace.Toposort(ends...))
	slices.Reverse(order)

	ids := make(map[trace.Node]int, len(order))
	for i, n := range order {
		ids[n] = i
	}

	g := Graph{
		Nodes:   make([]Node, len(order)),
		Outputs: make([]int, len(ends)),
	}
	for i, n := range order {
		parents := make([]int, len(n.Parents()))
		for j, p := range n.Parents() {
			parents[j] = ids[p]
		}
		op, value := describe(n)
		g.Nodes[i] = Node{ID: i, Op: op, Value: value, Parents: parents}
	}
	for i, end := range ends {
		id, ok := ids[end]
		if end == nil || !ok {
			id = -1
		}
		g.Outputs[i] = id
	}
	return g
}

func describe(n trace.Node) (string, string) {
	d, ok := n.(Describer)
	if !ok {
		return "node", ""
	}
	op, value := d.Describe()
	return op, FormatValue(value)
}

// FormatValue renders a node value as a string. Floats use the shortest
// representation that round-trips; nil renders empty.
func FormatValue(v any) string {
	switch x := trace.Unwrap(v).(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// Roots returns the IDs of nodes with no parents.
func (g Graph) Roots() []int {
	var roots []int
	for _, n := range g.Nodes {
		if len(n.Parents) == 0 {
			roots = append(roots, n.ID)
		}
	}
	return roots
}

// CountOps returns the number of nodes per op name.
func (g Graph) CountOps() map[string]int {
	counts := make(map[string]int)
	for _, n := range g.Nodes {
		counts[n.Op]++
	}
	return counts
}
