package trace

import "iter"

// Toposort returns the nodes reachable from ends in backward order: a node is
// yielded only after every reachable child that lists it as a parent.
//
// Each distinct terminal starts with one reference held from outside the
// graph and every parent edge adds one. Terminals release their outside
// reference first; a node becomes ready once its count reaches zero, and
// yielding it releases one reference on each of its parents. Shared
// ancestors are therefore yielded once without visited marks.
//
// Nil terminals are skipped. The sequence is lazy and single-pass.
func Toposort(ends ...Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		var terminals []Node
		counts := make(map[Node]int)
		for _, n := range ends {
			if n == nil {
				continue
			}
			if _, dup := counts[n]; !dup {
				terminals = append(terminals, n)
				counts[n] = 0
			}
		}

		// Count references: one per terminal, one per parent edge.
		seen := make(map[Node]bool, len(terminals))
		stack := make([]Node, 0, len(terminals))
		for _, n := range terminals {
			counts[n]++
			stack = append(stack, n)
		}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if seen[n] {
				continue
			}
			seen[n] = true
			for _, p := range n.Parents() {
				counts[p]++
				if !seen[p] {
					stack = append(stack, p)
				}
			}
		}

		var ready []Node
		for i := len(terminals) - 1; i >= 0; i-- {
			n := terminals[i]
			counts[n]--
			if counts[n] == 0 {
				ready = append(ready, n)
			}
		}

		for len(ready) > 0 {
			n := ready[len(ready)-1]
			ready = ready[:len(ready)-1]
			if !yield(n) {
				return
			}
			for _, p := range n.Parents() {
				counts[p]--
				if counts[p] == 0 {
					ready = append(ready, p)
				}
			}
		}
	}
}
