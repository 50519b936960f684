package trace

// Kwargs holds the named operands of an operation call. Named operands are
// never scanned for boxes.
type Kwargs map[string]any

// Op identifies an intercepted operation. *Primitive implements it; ops are
// compared by identity.
type Op interface {
	Name() string
}

// Node is a vertex of the computation graph.
//
// Gradient-rule providers implement Node for each differentiable value type.
// Implementations must be comparable (in practice, pointer types) because
// Toposort keys its bookkeeping by node.
type Node interface {
	// Parents returns the nodes of the boxed operands, in argument order.
	Parents() []Node

	// Interior constructs the node recording one intercepted call: its
	// result value, the operation, the operands passed to it, the named
	// operands, the indices of the operands that were boxed at the active
	// level and their nodes. The interceptor calls Interior on the node of
	// the first such operand, so a node kind builds its own successors.
	Interior(value any, op Op, args []any, kwargs Kwargs, argnums []int, parents []Node) Node
}

// RootFactory constructs graph sources for traced inputs.
type RootFactory interface {
	NewRoot() Node
}

// RootFunc adapts a function to RootFactory.
type RootFunc func() Node

// NewRoot calls f.
func (f RootFunc) NewRoot() Node { return f() }

// BaseNode holds a parent list. Embed it in provider node types.
//
// BaseNode's construction paths panic with a NOT_IMPLEMENTED TraceError; a
// provider that registers a value type must override both.
type BaseNode struct {
	parents []Node
}

// NewBaseNode creates the embeddable part of a node.
func NewBaseNode(parents []Node) BaseNode {
	return BaseNode{parents: parents}
}

// Parents returns the parent list.
func (n *BaseNode) Parents() []Node { return n.parents }

// Interior panics: the provider did not override it.
func (n *BaseNode) Interior(value any, op Op, args []any, kwargs Kwargs, argnums []int, parents []Node) Node {
	panic(NewNotImplementedError("Interior"))
}

// NewRoot panics: the provider did not override it.
func (n *BaseNode) NewRoot() Node {
	panic(NewNotImplementedError("NewRoot"))
}
