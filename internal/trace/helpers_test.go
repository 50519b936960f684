package trace

import (
	"log/slog"
	"testing"

	"github.com/roach88/autotrace/internal/testutil"
	"github.com/roach88/autotrace/internal/tree"
)

// testNode records everything the interceptor hands it.
type testNode struct {
	BaseNode
	root    bool
	value   any
	op      Op
	args    []any
	kwargs  Kwargs
	argnums []int
}

func (n *testNode) Interior(value any, op Op, args []any, kwargs Kwargs, argnums []int, parents []Node) Node {
	return &testNode{
		BaseNode: NewBaseNode(parents),
		value:    value,
		op:       op,
		args:     args,
		kwargs:   kwargs,
		argnums:  argnums,
	}
}

func (n *testNode) NewRoot() Node {
	return &testNode{root: true}
}

type testBox struct {
	BaseBox
}

func newTestBox(value any, level Level, node Node) *testBox {
	return &testBox{BaseBox: NewBaseBox(value, level, node)}
}

// plainNode builds a node with parents for toposort tests.
func plainNode(parents ...Node) *testNode {
	return &testNode{BaseNode: NewBaseNode(parents)}
}

type fixture struct {
	tracer *Tracer
	logs   *testutil.RecordingHandler
	add    *Primitive
	mul    *Primitive
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	reg := NewRegistry()
	RegisterBox[*testBox, float64](reg, newTestBox)

	logger, logs := testutil.NewRecordingLogger()
	opts = append([]Option{
		WithLogger(logger),
		WithIDGenerator(NewFixedGenerator("trace-1", "trace-2", "trace-3")),
	}, opts...)
	tr := New(reg, opts...)

	return &fixture{
		tracer: tr,
		logs:   logs,
		add: tr.Primitive("add", func(args []any, _ Kwargs) (any, error) {
			return args[0].(float64) + args[1].(float64), nil
		}),
		mul: tr.Primitive("mul", func(args []any, _ Kwargs) (any, error) {
			return args[0].(float64) * args[1].(float64), nil
		}),
	}
}

func (f *fixture) warnings() []string {
	return f.logs.Messages(slog.LevelWarn)
}

// box builds a box by hand at the given level around a fresh root.
func box(v any, level Level) *testBox {
	return newTestBox(v, level, &testNode{root: true})
}

func leafOf(v any) tree.Tree { return tree.Leaf(v) }

// rootLeaf is a roots tree for a single traced leaf.
func rootLeaf() tree.Tree { return tree.Leaf(&testNode{root: true}) }

func identity(in tree.Tree) (tree.Tree, error) { return in, nil }
