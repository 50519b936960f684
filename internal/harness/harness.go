package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/autotrace/internal/scalar"
	"github.com/roach88/autotrace/internal/snapshot"
	"github.com/roach88/autotrace/internal/testutil"
	"github.com/roach88/autotrace/internal/trace"
	"github.com/roach88/autotrace/internal/tree"
)

// Harness executes one scenario against a fresh scalar provider.
type Harness struct {
	provider *scalar.Provider
	logger   *slog.Logger
	env      map[string]any
}

// Option configures Run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
}

// WithLogger routes tracer and harness diagnostics to logger.
// Default: logs are discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs on a fresh provider with a fixed trace ID, so repeated
// runs record identical graphs.
//
// Execution flow:
//  1. Box every input and trace the steps in order
//  2. Capture the graph reachable from the outputs
//  3. If grad is set, run the backward pass from it
//  4. Check the results against expect
//
// Returns an error if the program cannot run (unknown op, bad operand, a
// tracer error). A run that completes but misses an expectation returns a
// failing Result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	p := scalar.New(
		trace.WithLogger(cfg.logger),
		trace.WithIDGenerator(testutil.NewFixedTraceIDGenerator(scenario.TraceID)),
	)
	h := &Harness{
		provider: p,
		logger:   cfg.logger.With("scenario", scenario.Name),
		env:      make(map[string]any),
	}

	inputs := scenario.InputTree()
	x, err := tree.TryMap(func(leaves ...any) (any, error) {
		name, _ := leaves[0].(string)
		v, ok := scenario.Values[name]
		if !ok {
			return nil, fmt.Errorf("no value for input %q", name)
		}
		return v, nil
	}, inputs)
	if err != nil {
		return nil, err
	}
	roots := tree.Map(func(...any) any { return p.Root() }, inputs)

	values, nodes, err := p.Tracer().Trace(roots, func(in tree.Tree) (tree.Tree, error) {
		names := tree.Flatten(inputs)
		for i, boxed := range tree.Flatten(in) {
			h.env[names[i].(string)] = boxed
		}
		for i, step := range scenario.Steps {
			if err := h.executeStep(i, step); err != nil {
				return tree.Tree{}, err
			}
		}
		return tree.TryMap(func(leaves ...any) (any, error) {
			return h.resolve(leaves[0])
		}, scenario.OutputTree())
	}, x)
	if err != nil {
		return nil, fmt.Errorf("failed to trace scenario: %w", err)
	}

	result := NewResult()
	result.Values = values.Nested()

	var ends []trace.Node
	for _, leaf := range tree.Flatten(nodes) {
		n, _ := leaf.(trace.Node)
		if n == nil {
			result.Independent++
		}
		ends = append(ends, n)
	}
	result.Graph = snapshot.Capture(ends...)
	h.logger.Debug("scenario traced",
		"nodes", len(result.Graph.Nodes),
		"independent", result.Independent,
	)

	if scenario.Grad != "" {
		grads, err := h.gradients(scenario)
		if err != nil {
			return nil, fmt.Errorf("failed to compute gradients: %w", err)
		}
		result.Grads = grads
	}

	for _, msg := range EvaluateExpectations(result, scenario) {
		result.AddError(msg)
	}

	return result, nil
}

// executeStep applies one operation and binds its result.
func (h *Harness) executeStep(i int, step Step) error {
	op, ok := h.provider.Op(step.Op)
	if !ok {
		return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
	}

	args := make([]any, len(step.Args))
	for j, ref := range step.Args {
		v, err := h.resolve(ref)
		if err != nil {
			return fmt.Errorf("steps[%d].args[%d]: %w", i, j, err)
		}
		args[j] = v
	}

	var kwargs trace.Kwargs
	if len(step.Kwargs) > 0 {
		kwargs = make(trace.Kwargs, len(step.Kwargs))
		for k, ref := range step.Kwargs {
			v, err := h.resolve(ref)
			if err != nil {
				return fmt.Errorf("steps[%d].kwargs[%s]: %w", i, k, err)
			}
			kwargs[k] = v
		}
	}

	out, err := op.Call(args, kwargs)
	if err != nil {
		return fmt.Errorf("steps[%d] (%s): %w", i, step.Op, err)
	}
	h.env[step.Let] = out
	h.logger.Debug("step executed", "let", step.Let, "op", step.Op, "boxed", trace.IsBox(out))
	return nil
}

// resolve turns a reference into a value: names are looked up and numbers
// become float64 constants.
func (h *Harness) resolve(ref any) (any, error) {
	switch v := ref.(type) {
	case string:
		val, ok := h.env[v]
		if !ok {
			return nil, fmt.Errorf("%q is not defined", v)
		}
		return val, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float64, bool:
		return v, nil
	default:
		return nil, fmt.Errorf("expected a name or a number, got %T", ref)
	}
}

// gradients differentiates the value named by scenario.Grad with respect
// to every input. Inputs it does not depend on get 0.
func (h *Harness) gradients(scenario *Scenario) (map[string]float64, error) {
	grads := make(map[string]float64, len(scenario.Values))
	names := tree.Flatten(scenario.InputTree())
	for _, name := range names {
		grads[name.(string)] = 0
	}

	out, ok := h.env[scenario.Grad].(trace.Box)
	if !ok {
		return grads, nil
	}

	byNode, err := h.provider.Backward(out.Node(), 1.0)
	if err != nil {
		return nil, err
	}

	for _, name := range names {
		b, ok := h.env[name.(string)].(trace.Box)
		if !ok {
			continue
		}
		g, ok := byNode[b.Node()]
		if !ok {
			continue
		}
		f, ok := asFloat(trace.Unwrap(g))
		if !ok {
			return nil, fmt.Errorf("gradient for %q is %T, not a number", name, g)
		}
		grads[name.(string)] = f
	}
	return grads, nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
