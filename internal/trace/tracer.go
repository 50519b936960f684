package trace

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/roach88/autotrace/internal/tree"
)

// Tracer opens traces and intercepts operations.
//
// A Tracer owns the nesting Stack and the node Clock, and reads the box
// Registry supplied by the gradient-rule provider. Boxes are only meaningful
// to the Tracer (or Tracers sharing a Stack, see WithStack) that created
// them.
//
// Thread-safety model: a Tracer must be driven by one call chain at a time.
// Concurrent Trace calls from several goroutines are undefined.
type Tracer struct {
	registry *Registry
	stack    *Stack
	clock    *Clock
	ids      IDGenerator
	logger   *slog.Logger
}

// Option configures a Tracer.
type Option func(*Tracer)

// WithLogger sets the logger for scope and node diagnostics.
// Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracer) {
		t.logger = logger
	}
}

// WithIDGenerator sets the trace ID generator.
// Default: UUIDv7Generator. Use NewFixedGenerator in tests.
func WithIDGenerator(ids IDGenerator) Option {
	return func(t *Tracer) {
		t.ids = ids
	}
}

// WithStack shares a nesting Stack between Tracers, so traces opened by
// different providers nest against one counter.
func WithStack(s *Stack) Option {
	return func(t *Tracer) {
		t.stack = s
	}
}

// New creates a Tracer over registry.
func New(registry *Registry, opts ...Option) *Tracer {
	t := &Tracer{
		registry: registry,
		stack:    NewStack(),
		clock:    NewClock(),
		ids:      UUIDv7Generator{},
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Registry returns the box registry.
func (t *Tracer) Registry() *Registry { return t.registry }

// Level returns the innermost open trace level, or NoLevel.
func (t *Tracer) Level() Level { return t.stack.Top() }

// NodeCount returns the number of nodes constructed so far.
func (t *Tracer) NodeCount() int64 { return t.clock.Current() }

// Trace runs fn on x with every leaf of x boxed at a new trace level.
//
// roots must have the shape of x; each of its leaves is a RootFactory whose
// root node becomes the source for the matching input leaf. For each leaf
// of fn's result, values holds the unboxed value and nodes holds its graph
// node. A leaf that is not a box at this trace's level did not depend on the
// input: a warning is logged and the leaf is returned as-is with a nil node.
//
// The level is released on every path. An error from fn is returned after
// the scope closes; a panic in fn propagates after the scope closes.
//
// Trace is reentrant: calling it from inside fn opens a strictly higher
// level whose boxes do not interfere with the outer trace.
func (t *Tracer) Trace(roots tree.Tree, fn func(tree.Tree) (tree.Tree, error), x tree.Tree) (values, nodes tree.Tree, err error) {
	if !tree.SameShape(roots, x) {
		return tree.Tree{}, tree.Tree{}, &TraceError{
			Code:    ErrCodeShapeMismatch,
			Message: fmt.Sprintf("roots %s do not match input %s", roots, x),
		}
	}
	t.registry.seal()

	traceID := t.ids.Generate()
	err = t.stack.Scope(func(level Level) error {
		logger := t.logger.With("trace_id", traceID, "level", level)
		logger.Debug("trace opened")
		defer logger.Debug("trace closed", "nodes", t.clock.Current())

		start, err := tree.TryMap(func(leaves ...any) (any, error) {
			return t.boxRoot(leaves[0], leaves[1], level)
		}, x, roots)
		if err != nil {
			return fmt.Errorf("boxing trace inputs: %w", err)
		}

		end, err := fn(start)
		if err != nil {
			return err
		}

		values, nodes = tree.Unzip(tree.Map(func(leaves ...any) any {
			out := leaves[0]
			if b, ok := out.(Box); ok && b.Level() == level {
				return tree.Pair{First: b.Value(), Second: b.Node()}
			}
			logger.Warn("output seems independent of input", "type", fmt.Sprintf("%T", out))
			return tree.Pair{First: out}
		}, end))
		return nil
	})
	if err != nil {
		return tree.Tree{}, tree.Tree{}, err
	}
	return values, nodes, nil
}

func (t *Tracer) boxRoot(value, factory any, level Level) (Box, error) {
	rf, ok := factory.(RootFactory)
	if !ok {
		return nil, &TraceError{
			Code:    ErrCodeNotARootFactory,
			Message: "roots leaf must implement RootFactory",
			Type:    reflect.TypeOf(factory),
		}
	}
	root := rf.NewRoot()
	seq := t.clock.Next()
	t.logger.Debug("root recorded", "level", level, "seq", seq)
	return t.registry.Wrap(value, level, root)
}
