package snapshot

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/autotrace/internal/scalar"
	"github.com/roach88/autotrace/internal/trace"
	"github.com/roach88/autotrace/internal/tree"
)

// traceOne traces fn at x with the scalar provider and returns the output node.
func traceOne(t *testing.T, x float64, fn func(p *scalar.Provider, x any) (any, error)) trace.Node {
	t.Helper()
	p := scalar.New(trace.WithIDGenerator(trace.NewFixedGenerator("snapshot")))

	_, nodes, err := p.Tracer().Trace(tree.Leaf(p.Root()), func(in tree.Tree) (tree.Tree, error) {
		out, err := fn(p, in.Value())
		return tree.Leaf(out), err
	}, tree.Leaf(x))
	require.NoError(t, err)

	n, _ := nodes.Value().(trace.Node)
	require.NotNil(t, n)
	return n
}

func square(p *scalar.Provider, x any) (any, error) {
	return p.Mul.Apply(x, x)
}

func squarePlusX(p *scalar.Provider, x any) (any, error) {
	sq, err := p.Mul.Apply(x, x)
	if err != nil {
		return nil, err
	}
	return p.Add.Apply(sq, x)
}

func goldenDir(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestCapture_Square(t *testing.T) {
	end := traceOne(t, 3.0, square)

	g := Capture(end)

	require.Len(t, g.Nodes, 2)
	assert.Equal(t, Node{ID: 0, Op: "root", Value: "3", Parents: []int{}}, g.Nodes[0])
	assert.Equal(t, Node{ID: 1, Op: "mul", Value: "9", Parents: []int{0, 0}}, g.Nodes[1])
	assert.Equal(t, []int{1}, g.Outputs)
	assert.Equal(t, []int{0}, g.Roots())
}

func TestCapture_CanonicalJSON(t *testing.T) {
	end := traceOne(t, 3.0, square)

	data, err := Capture(end).MarshalCanonical()

	require.NoError(t, err)
	assert.Equal(t,
		`{"nodes":[{"id":0,"op":"root","parents":[],"value":"3"},{"id":1,"op":"mul","parents":[0,0],"value":"9"}],"outputs":[1]}`,
		string(data))
}

func TestCapture_RootsFirstParentsBeforeChildren(t *testing.T) {
	end := traceOne(t, 2.0, squarePlusX)

	g := Capture(end)

	require.Len(t, g.Nodes, 3)
	for _, n := range g.Nodes {
		for _, p := range n.Parents {
			assert.Less(t, p, n.ID)
		}
	}
	assert.Equal(t, map[string]int{"root": 1, "mul": 1, "add": 1}, g.CountOps())
}

func TestCapture_NilAndUnknownTerminals(t *testing.T) {
	end := traceOne(t, 2.0, square)

	g := Capture(nil, end)

	assert.Equal(t, []int{-1, 1}, g.Outputs)
	assert.Empty(t, Capture().Nodes)
}

type bareNode struct {
	trace.BaseNode
}

func TestCapture_NodeWithoutDescriber(t *testing.T) {
	root := &bareNode{}
	child := &bareNode{BaseNode: trace.NewBaseNode([]trace.Node{root})}

	g := Capture(child)

	assert.Equal(t, []Node{
		{ID: 0, Op: "node", Parents: []int{}},
		{ID: 1, Op: "node", Parents: []int{0}},
	}, g.Nodes)
}

func TestCapture_Deterministic(t *testing.T) {
	a, err := Capture(traceOne(t, 2.0, squarePlusX)).MarshalCanonical()
	require.NoError(t, err)
	b, err := Capture(traceOne(t, 2.0, squarePlusX)).MarshalCanonical()
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestWriteText_Golden(t *testing.T) {
	end := traceOne(t, 2.0, squarePlusX)

	var buf bytes.Buffer
	require.NoError(t, Capture(end, nil).WriteText(&buf))

	goldenDir(t).Assert(t, "fanout_text", buf.Bytes())
}

func TestWriteDOT_Golden(t *testing.T) {
	end := traceOne(t, 2.0, squarePlusX)

	var buf bytes.Buffer
	require.NoError(t, Capture(end).WriteDOT(&buf))

	goldenDir(t).Assert(t, "fanout_dot", buf.Bytes())
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{3.0, "3"},
		{0.1, "0.1"},
		{-2.5e-10, "-2.5e-10"},
		{float32(0.5), "0.5"},
		{"x", "x"},
		{true, "true"},
		{7, "7"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.in), "%v", tt.in)
	}
}

func TestMarshalCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"sorted keys", map[string]any{"b": 1, "a": true}, `{"a":true,"b":1}`},
		{"no html escaping", "<a&b>", `"<a&b>"`},
		{"nfc", "e\u0301", "\"\u00e9\""},
		{"nested", []any{map[string]any{"z": []any{}}, int64(-4)}, `[{"z":[]},-4]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := MarshalCanonical(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

func TestMarshalCanonical_Rejects(t *testing.T) {
	for _, in := range []any{nil, 1.5, struct{}{}, []any{nil}} {
		_, err := MarshalCanonical(in)
		assert.Error(t, err, "%#v", in)
	}
}
