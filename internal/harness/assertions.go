package harness

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// ExpectationError is returned when an expectation fails.
// It includes the expected and actual outcome to help debug the failure.
type ExpectationError struct {
	Field    string // Expectation field: values, grads, nodes or independent
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *ExpectationError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Expectation failed: %s\n", e.Field)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateExpectations checks a result against a scenario's expect block
// and returns one message per failed expectation.
func EvaluateExpectations(result *Result, scenario *Scenario) []string {
	var errors []string
	tol := scenario.EffectiveTolerance()
	exp := scenario.Expect

	if exp.Values != nil {
		if err := expectValues(exp.Values, result.Values, tol); err != nil {
			errors = append(errors, err.Error())
		}
	}

	if len(exp.Grads) > 0 {
		if err := expectGrads(exp.Grads, result.Grads, tol); err != nil {
			errors = append(errors, err.Error())
		}
	}

	if exp.Nodes != nil && *exp.Nodes != len(result.Graph.Nodes) {
		errors = append(errors, (&ExpectationError{
			Field:    "nodes",
			Expected: fmt.Sprintf("%d nodes", *exp.Nodes),
			Actual:   fmt.Sprintf("%d nodes", len(result.Graph.Nodes)),
		}).Error())
	}

	if exp.Independent != nil && *exp.Independent != result.Independent {
		errors = append(errors, (&ExpectationError{
			Field:    "independent",
			Expected: fmt.Sprintf("%d independent outputs", *exp.Independent),
			Actual:   fmt.Sprintf("%d independent outputs", result.Independent),
		}).Error())
	}

	return errors
}

func expectValues(expected, actual any, tol float64) error {
	if valuesMatch(expected, actual, tol) {
		return nil
	}
	return &ExpectationError{
		Field:    "values",
		Expected: fmt.Sprint(expected),
		Actual:   fmt.Sprint(actual),
	}
}

func expectGrads(expected, actual map[string]float64, tol float64) error {
	names := make([]string, 0, len(expected))
	for name := range expected {
		names = append(names, name)
	}
	sort.Strings(names)

	var mismatched []string
	for _, name := range names {
		got, ok := actual[name]
		if !ok || !closeEnough(expected[name], got, tol) {
			mismatched = append(mismatched, name)
		}
	}
	if len(mismatched) == 0 {
		return nil
	}

	var want, got []string
	for _, name := range mismatched {
		want = append(want, fmt.Sprintf("d/d%s = %v", name, expected[name]))
		if v, ok := actual[name]; ok {
			got = append(got, fmt.Sprintf("d/d%s = %v", name, v))
		} else {
			got = append(got, fmt.Sprintf("d/d%s missing", name))
		}
	}
	return &ExpectationError{
		Field:    "grads",
		Expected: strings.Join(want, ", "),
		Actual:   strings.Join(got, ", "),
	}
}

// valuesMatch compares nested values. Numbers match within tol regardless
// of their Go type; lists must have the same length.
func valuesMatch(expected, actual any, tol float64) bool {
	if el, ok := expected.([]any); ok {
		al, ok := actual.([]any)
		if !ok || len(el) != len(al) {
			return false
		}
		for i := range el {
			if !valuesMatch(el[i], al[i], tol) {
				return false
			}
		}
		return true
	}

	ef, eok := asFloat(expected)
	af, aok := asFloat(actual)
	if eok && aok {
		return closeEnough(ef, af, tol)
	}
	return expected == actual
}

func closeEnough(a, b, tol float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return a == b
	}
	return math.Abs(a-b) <= tol
}
