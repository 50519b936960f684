package scalar

import (
	"github.com/roach88/autotrace/internal/trace"
)

// Box is the box variant for float64 values.
type Box struct {
	trace.BaseBox
}

// NewBox wraps value at level with node.
//
// A root node learns its value here, since root factories are called before
// the input is known.
func NewBox(value any, level trace.Level, node trace.Node) *Box {
	if n, ok := node.(*Node); ok && n.root && n.value == nil {
		n.value = value
	}
	return &Box{BaseBox: trace.NewBaseBox(value, level, node)}
}

// VJP maps the gradient of a node's output to the gradient of one parent.
type VJP func(g any) (any, error)

// Node is a graph node carrying one VJP per parent.
type Node struct {
	trace.BaseNode
	rules *Rules
	root  bool
	op    string
	value any
	vjps  []VJP
}

func newRoot(rules *Rules) *Node {
	return &Node{rules: rules, root: true, op: "root"}
}

// Interior builds the successor node, looking up one VJP per boxed operand
// in the rule table. An operand with no rule gets a VJP that fails with
// NO_GRADIENT_RULE when the backward pass reaches it.
func (n *Node) Interior(value any, op trace.Op, args []any, kwargs trace.Kwargs, argnums []int, parents []trace.Node) trace.Node {
	vjps := make([]VJP, len(argnums))
	for i, argnum := range argnums {
		vjps[i] = n.rules.vjp(op.Name(), argnum, value, args, kwargs)
	}
	return &Node{
		BaseNode: trace.NewBaseNode(parents),
		rules:    n.rules,
		op:       op.Name(),
		value:    value,
		vjps:     vjps,
	}
}

// NewRoot returns a fresh root sharing n's rule table.
func (n *Node) NewRoot() trace.Node {
	return newRoot(n.rules)
}

// OpName returns the name of the operation that produced the node, or
// "root" for a traced input.
func (n *Node) OpName() string { return n.op }

// IsRoot reports whether n is a traced input.
func (n *Node) IsRoot() bool { return n.root }

// Describe reports the op name and the unboxed value for graph snapshots.
func (n *Node) Describe() (string, any) {
	return n.op, trace.Unwrap(n.value)
}
