// Package harness runs scenario files against the tracer.
//
// A scenario describes a small traced program: named inputs, a list of
// operation steps, the outputs, and what the run should produce. The
// harness traces the program through the scalar provider, captures the
// recorded graph, optionally runs the backward pass, and checks the
// results against the scenario's expectations.
//
// # Scenario Format
//
// Scenarios are YAML files (the cli package also accepts CUE):
//
//	name: square_plus_x
//	description: "x*x + x shares the root between two consumers"
//	input: [x]
//	values: { x: 2 }
//	steps:
//	  - let: sq
//	    op: mul
//	    args: [x, x]
//	  - let: y
//	    op: add
//	    args: [sq, x]
//	  - let: c
//	    op: pow
//	    args: [x]
//	    kwargs: { exponent: 3 }
//	output: [y, 5]
//	grad: y
//	expect:
//	  values: [6, 5]
//	  grads: { x: 5 }
//	  nodes: 3
//	  independent: 1
//	tolerance: 1e-9
//
// input and output are nested lists. In args, kwargs and output a string
// refers to an input or an earlier step and a number is a constant. Named
// operands (kwargs) are passed through to the operation and never become
// graph edges.
//
// # Expectations
//
//   - values: the unboxed outputs, same shape as output, compared within
//     tolerance
//   - grads: d(grad)/d(input) per input name
//   - nodes: number of nodes reachable from the outputs
//   - independent: number of output leaves that did not depend on the input
//
// # Golden Files
//
// RunWithGolden stores the canonical JSON snapshot of a run in
// testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
