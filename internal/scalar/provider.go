// Package scalar is a reference gradient-rule provider over float64.
//
// It registers a Box variant for float64, implements trace.Node with a
// vector-Jacobian product (VJP) per parent, and defines a small set of
// primitives with their rules. Every VJP is itself written with primitives,
// so a gradient computed inside a trace is traced too and gradients of
// gradients come out of nested Trace calls.
package scalar

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/roach88/autotrace/internal/trace"
	"github.com/roach88/autotrace/internal/tree"
)

// Operation is any callable operation exposed by the provider.
// Implemented by *trace.Primitive and *trace.NotracePrimitive.
type Operation interface {
	Name() string
	Call(args []any, kwargs trace.Kwargs) (any, error)
}

// Provider owns a registry, a tracer and the rule table.
type Provider struct {
	tracer *trace.Tracer
	rules  *Rules
	ops    map[string]Operation

	Add  *trace.Primitive
	Sub  *trace.Primitive
	Mul  *trace.Primitive
	Div  *trace.Primitive
	Neg  *trace.Primitive
	Sin  *trace.Primitive
	Cos  *trace.Primitive
	Tanh *trace.Primitive
	Exp  *trace.Primitive
	Log  *trace.Primitive
	Pow  *trace.Primitive

	// Greater compares two values without recording anything.
	Greater *trace.NotracePrimitive
}

// New creates a provider. Options are passed to the underlying tracer.
func New(opts ...trace.Option) *Provider {
	reg := trace.NewRegistry()
	trace.RegisterBox[*Box, float64](reg, NewBox)

	p := &Provider{
		tracer: trace.New(reg, opts...),
		rules:  NewRules(),
		ops:    make(map[string]Operation),
	}
	p.defineOps()
	return p
}

// Tracer returns the provider's tracer.
func (p *Provider) Tracer() *trace.Tracer { return p.tracer }

// Rules returns the provider's rule table.
func (p *Provider) Rules() *Rules { return p.rules }

// Root returns the root factory for traced float64 inputs.
func (p *Provider) Root() trace.RootFactory {
	return trace.RootFunc(func() trace.Node {
		return newRoot(p.rules)
	})
}

// Op looks an operation up by name.
func (p *Provider) Op(name string) (Operation, bool) {
	op, ok := p.ops[name]
	return op, ok
}

// OpNames returns the names of all operations, sorted.
func (p *Provider) OpNames() []string {
	names := make([]string, 0, len(p.ops))
	for name := range p.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p *Provider) register(op Operation) {
	p.ops[op.Name()] = op
}

// Grad returns a function computing the derivative of fn at x.
//
// fn must return a float64 (boxed or not). If its output does not depend on
// x, the gradient is 0.
func (p *Provider) Grad(fn func(x any) (any, error)) func(x any) (any, error) {
	return func(x any) (any, error) {
		_, g, err := p.ValueAndGrad(fn)(x)
		return g, err
	}
}

// ValueAndGrad returns a function computing fn(x) and its derivative.
func (p *Provider) ValueAndGrad(fn func(x any) (any, error)) func(x any) (any, any, error) {
	return func(x any) (any, any, error) {
		if !trace.IsBox(x) {
			if f, err := toFloat(x); err == nil {
				x = f
			}
		}

		var root trace.Node
		values, nodes, err := p.tracer.Trace(tree.Leaf(p.Root()), func(in tree.Tree) (tree.Tree, error) {
			if b, ok := in.Value().(trace.Box); ok {
				root = b.Node()
			}
			out, err := fn(in.Value())
			return tree.Leaf(out), err
		}, tree.Leaf(x))
		if err != nil {
			return nil, nil, err
		}

		end, _ := nodes.Value().(trace.Node)
		if end == nil {
			return values.Value(), 0.0, nil
		}

		grads, err := p.Backward(end, 1.0)
		if err != nil {
			return nil, nil, err
		}
		g, ok := grads[root]
		if !ok {
			return values.Value(), 0.0, nil
		}
		return values.Value(), g, nil
	}
}

// Backward seeds end with seed and accumulates gradients for every node
// reachable from it, in trace.Toposort order.
func (p *Provider) Backward(end trace.Node, seed any) (map[trace.Node]any, error) {
	grads := map[trace.Node]any{end: seed}

	for n := range trace.Toposort(end) {
		node, ok := n.(*Node)
		if !ok {
			return nil, fmt.Errorf("backward: unexpected node type %T", n)
		}
		g, ok := grads[n]
		if !ok {
			continue
		}
		for i, parent := range node.Parents() {
			pg, err := node.vjps[i](g)
			if err != nil {
				return nil, fmt.Errorf("backward through %s: %w", node.OpName(), err)
			}
			if prev, seen := grads[parent]; seen {
				pg, err = p.Add.Apply(prev, pg)
				if err != nil {
					return nil, err
				}
			}
			grads[parent] = pg
		}
	}

	slog.Debug("backward complete", "nodes", len(grads))
	return grads, nil
}
