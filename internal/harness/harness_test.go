package harness

import (
	"log/slog"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/autotrace/internal/testutil"
)

func loadFixture(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func intPtr(n int) *int { return &n }

func TestRun_FixturesPass(t *testing.T) {
	for _, name := range []string{"square_plus_x", "multi_input", "trig"} {
		t.Run(name, func(t *testing.T) {
			result, err := Run(loadFixture(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRun_SquarePlusX(t *testing.T) {
	result, err := Run(loadFixture(t, "square_plus_x"))
	require.NoError(t, err)

	assert.Equal(t, []any{6.0, 5.0}, result.Values)
	assert.Equal(t, map[string]float64{"x": 5}, result.Grads)
	assert.Equal(t, 1, result.Independent)
	assert.Equal(t, []int{2, -1}, result.Graph.Outputs)
	assert.Equal(t, map[string]int{"root": 1, "mul": 1, "add": 1}, result.Graph.CountOps())
}

func TestRun_NamedOperandIsNotAnEdge(t *testing.T) {
	result, err := Run(loadFixture(t, "multi_input"))
	require.NoError(t, err)

	for _, n := range result.Graph.Nodes {
		if n.Op == "pow" {
			assert.Len(t, n.Parents, 1)
		}
	}
}

func TestRun_ExpectationFailures(t *testing.T) {
	s := loadFixture(t, "square_plus_x")
	s.Expect.Values = []any{7, 5}
	s.Expect.Grads = map[string]float64{"x": 4}
	s.Expect.Nodes = intPtr(2)
	s.Expect.Independent = intPtr(0)

	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "Expectation failed: values")
	assert.Contains(t, result.Errors[1], "d/dx = 4")
	assert.Contains(t, result.Errors[2], "2 nodes")
	assert.Contains(t, result.Errors[3], "0 independent outputs")
}

func TestRun_GradOfIndependentValueIsZero(t *testing.T) {
	s := &Scenario{
		Name:        "constant",
		Description: "grad of a value that ignores the input",
		Input:       []any{"x"},
		Values:      map[string]float64{"x": 4},
		Steps: []Step{
			{Let: "k", Op: "mul", Args: []any{2, 3}},
		},
		Output: "k",
		Grad:   "k",
		Expect: Expect{
			Values:      6,
			Grads:       map[string]float64{"x": 0},
			Nodes:       intPtr(0),
			Independent: intPtr(1),
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_UnusedInputHasZeroGrad(t *testing.T) {
	s := &Scenario{
		Name:        "unused",
		Description: "one input is never read",
		Input:       []any{"x", "w"},
		Values:      map[string]float64{"x": 3, "w": 10},
		Steps: []Step{
			{Let: "y", Op: "exp", Args: []any{"x"}},
		},
		Output: "y",
		Grad:   "y",
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(3), result.Grads["x"], 1e-12)
	assert.Equal(t, 0.0, result.Grads["w"])
}

func TestRun_GreaterIsNotRecorded(t *testing.T) {
	s := &Scenario{
		Name:        "predicate",
		Description: "comparison output is independent",
		Input:       "x",
		Values:      map[string]float64{"x": 3},
		Steps: []Step{
			{Let: "pos", Op: "greater", Args: []any{"x", 0}},
		},
		Output: []any{"pos", "x"},
		Expect: Expect{
			Values:      []any{true, 3},
			Independent: intPtr(1),
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []int{-1, 0}, result.Graph.Outputs)
}

func TestRun_UnknownOp(t *testing.T) {
	s := &Scenario{
		Name:        "bad_op",
		Description: "op does not exist",
		Input:       "x",
		Values:      map[string]float64{"x": 1},
		Steps:       []Step{{Let: "y", Op: "matmul", Args: []any{"x"}}},
		Output:      "y",
	}

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown op "matmul"`)
}

func TestRun_OperationErrorIsWrapped(t *testing.T) {
	s := &Scenario{
		Name:        "arity",
		Description: "wrong number of operands",
		Input:       "x",
		Values:      map[string]float64{"x": 1},
		Steps:       []Step{{Let: "y", Op: "add", Args: []any{"x"}}},
		Output:      "y",
	}

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to trace scenario")
	assert.Contains(t, err.Error(), "steps[0] (add)")
}

func TestRun_LogsCarryScenarioTraceID(t *testing.T) {
	logger, logs := testutil.NewRecordingLogger()
	s := loadFixture(t, "square_plus_x")
	s.TraceID = "fixed-id"

	_, err := Run(s, WithLogger(logger))
	require.NoError(t, err)

	var opened bool
	for _, r := range logs.Records() {
		if r.Message == "trace opened" {
			opened = true
			assert.Equal(t, "fixed-id", r.Attrs["trace_id"])
		}
	}
	assert.True(t, opened)
	assert.Equal(t, []string{"output seems independent of input"}, logs.Messages(slog.LevelWarn))
}

func TestRun_Deterministic(t *testing.T) {
	a, err := Run(loadFixture(t, "multi_input"))
	require.NoError(t, err)
	b, err := Run(loadFixture(t, "multi_input"))
	require.NoError(t, err)

	assert.Equal(t, a, b)
}
