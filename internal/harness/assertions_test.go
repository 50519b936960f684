package harness

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValuesMatch(t *testing.T) {
	tests := []struct {
		name     string
		expected any
		actual   any
		want     bool
	}{
		{"int vs float", 6, 6.0, true},
		{"within tolerance", 1.0, 1.0 + 1e-12, true},
		{"outside tolerance", 1.0, 1.1, false},
		{"nested", []any{1, []any{2.5}}, []any{1.0, []any{2.5}}, true},
		{"length mismatch", []any{1, 2}, []any{1.0}, false},
		{"list vs leaf", []any{1}, 1.0, false},
		{"bool", true, true, true},
		{"bool mismatch", true, false, false},
		{"nan", math.NaN(), math.NaN(), true},
		{"inf", math.Inf(1), math.Inf(1), true},
		{"inf mismatch", math.Inf(1), math.Inf(-1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, valuesMatch(tt.expected, tt.actual, 1e-9))
		})
	}
}

func TestExpectGrads_ReportsMissing(t *testing.T) {
	err := expectGrads(map[string]float64{"x": 1, "y": 2}, map[string]float64{"x": 1}, 1e-9)
	require.Error(t, err)

	var ee *ExpectationError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "grads", ee.Field)
	assert.Equal(t, "d/dy = 2", ee.Expected)
	assert.Equal(t, "d/dy missing", ee.Actual)
}

func TestExpectationError_Format(t *testing.T) {
	err := &ExpectationError{Field: "nodes", Expected: "3 nodes", Actual: "2 nodes"}
	assert.Equal(t, "Expectation failed: nodes\n  Expected: 3 nodes\n  Actual: 2 nodes", err.Error())
}

func TestEvaluateExpectations_EmptyExpectAlwaysPasses(t *testing.T) {
	s := &Scenario{}
	r := NewResult()
	r.Values = 42.0

	assert.Empty(t, EvaluateExpectations(r, s))
}
