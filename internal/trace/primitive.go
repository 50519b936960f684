package trace

import "slices"

// Func is a raw operation. It receives values with no boxes left in its
// positional arguments.
type Func func(args []any, kwargs Kwargs) (any, error)

// Primitive wraps a raw operation so calls on boxed operands are recorded.
//
// Only positional arguments are inspected. A box passed as a named operand
// is handed to the raw operation as-is and never becomes a graph edge.
type Primitive struct {
	name   string
	raw    Func
	tracer *Tracer
}

// Primitive wraps f for interception under t.
func (t *Tracer) Primitive(name string, f Func) *Primitive {
	return &Primitive{name: name, raw: f, tracer: t}
}

// Name returns the operation name.
func (p *Primitive) Name() string { return p.name }

// Raw returns the unwrapped operation.
func (p *Primitive) Raw() Func { return p.raw }

// Apply calls p with positional arguments only.
func (p *Primitive) Apply(args ...any) (any, error) {
	return p.Call(args, nil)
}

// Call invokes the operation.
//
// With no boxed positional argument, the raw operation runs directly and no
// node is created. Otherwise the boxes at the highest level L are replaced
// by their values, p is called again on the adjusted arguments (peeling the
// lower levels one at a time), and the result is boxed at L holding a new
// interior node whose parents are the nodes of the level-L boxes.
func (p *Primitive) Call(args []any, kwargs Kwargs) (any, error) {
	level, boxed := findTopBoxed(args)
	if len(boxed) == 0 {
		return p.raw(args, kwargs)
	}

	argvals := slices.Clone(args)
	argnums := make([]int, len(boxed))
	parents := make([]Node, len(boxed))
	for i, b := range boxed {
		argvals[b.argnum] = b.box.Value()
		argnums[i] = b.argnum
		parents[i] = b.box.Node()
	}

	ans, err := p.Call(argvals, kwargs)
	if err != nil {
		return nil, err
	}

	node := boxed[0].box.Node().Interior(ans, p, argvals, kwargs, argnums, parents)
	seq := p.tracer.clock.Next()
	p.tracer.logger.Debug("node recorded",
		"op", p.name,
		"level", level,
		"seq", seq,
		"argnums", argnums,
	)
	return p.tracer.registry.Wrap(ans, level, node)
}

type boxedArg struct {
	argnum int
	box    Box
}

// findTopBoxed returns the highest level among boxed positional arguments
// and every box at that level, in argument order.
func findTopBoxed(args []any) (Level, []boxedArg) {
	top := NoLevel
	var boxed []boxedArg
	for i, arg := range args {
		b, ok := arg.(Box)
		if !ok {
			continue
		}
		switch l := b.Level(); {
		case l > top:
			top = l
			boxed = []boxedArg{{argnum: i, box: b}}
		case l == top:
			boxed = append(boxed, boxedArg{argnum: i, box: b})
		}
	}
	return top, boxed
}

// NotracePrimitive wraps a raw operation whose calls are never recorded,
// such as a predicate used for control flow.
type NotracePrimitive struct {
	name string
	raw  Func
}

// NotracePrimitive wraps f so boxes are stripped from every argument,
// positional and named, and no node is created.
func (t *Tracer) NotracePrimitive(name string, f Func) *NotracePrimitive {
	return &NotracePrimitive{name: name, raw: f}
}

// Name returns the operation name.
func (p *NotracePrimitive) Name() string { return p.name }

// Apply calls p with positional arguments only.
func (p *NotracePrimitive) Apply(args ...any) (any, error) {
	return p.Call(args, nil)
}

// Call strips all boxes and invokes the raw operation.
func (p *NotracePrimitive) Call(args []any, kwargs Kwargs) (any, error) {
	argvals := make([]any, len(args))
	for i, a := range args {
		argvals[i] = Unwrap(a)
	}
	var kwvals Kwargs
	if kwargs != nil {
		kwvals = make(Kwargs, len(kwargs))
		for k, v := range kwargs {
			kwvals[k] = Unwrap(v)
		}
	}
	return p.raw(argvals, kwvals)
}
