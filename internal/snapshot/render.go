package snapshot

import (
	"fmt"
	"io"
	"strings"
)

// WriteText writes one line per node in evaluation order, followed by the
// outputs:
//
//	n0 = root [3]
//	n1 = mul(n0, n0) [9]
//	outputs: n1
func (g Graph) WriteText(w io.Writer) error {
	for _, n := range g.Nodes {
		line := fmt.Sprintf("n%d = %s", n.ID, n.Op)
		if len(n.Parents) > 0 {
			line += "(" + strings.Join(nodeNames(n.Parents), ", ") + ")"
		}
		if n.Value != "" {
			line += " [" + n.Value + "]"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "outputs: %s\n", strings.Join(nodeNames(g.Outputs), ", "))
	return err
}

// WriteDOT writes the graph in Graphviz DOT format. Edges point from parent
// to child, in evaluation direction; output nodes get a double border.
func (g Graph) WriteDOT(w io.Writer) error {
	outputs := make(map[int]bool, len(g.Outputs))
	for _, o := range g.Outputs {
		outputs[o] = true
	}

	var b strings.Builder
	b.WriteString("digraph autotrace {\n")
	b.WriteString("  rankdir=LR;\n")
	for _, n := range g.Nodes {
		label := n.Op
		if n.Value != "" {
			label += `\n` + n.Value
		}
		attrs := `label="` + label + `"`
		if len(n.Parents) == 0 {
			attrs += ", shape=box"
		}
		if outputs[n.ID] {
			attrs += ", peripheries=2"
		}
		fmt.Fprintf(&b, "  n%d [%s];\n", n.ID, attrs)
	}
	for _, n := range g.Nodes {
		for _, p := range n.Parents {
			fmt.Fprintf(&b, "  n%d -> n%d;\n", p, n.ID)
		}
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func nodeNames(ids []int) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		if id < 0 {
			names[i] = "-"
			continue
		}
		names[i] = fmt.Sprintf("n%d", id)
	}
	return names
}
