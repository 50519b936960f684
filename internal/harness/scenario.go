package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/autotrace/internal/tree"
)

// DefaultTolerance is used when a scenario does not set one.
const DefaultTolerance = 1e-9

// Scenario defines a traced program and its expected outcome.
//
// Tags carry both yaml and json names: YAML files are decoded with
// gopkg.in/yaml.v3 and CUE files are decoded through their JSON form.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name" json:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description" json:"description"`

	// Input is a nested list of input names, or a single name.
	Input any `yaml:"input" json:"input"`

	// Values binds every input name to a number.
	Values map[string]float64 `yaml:"values" json:"values"`

	// Steps run in order; each binds its result to Let.
	Steps []Step `yaml:"steps" json:"steps"`

	// Output is a nested list of names or constants, or a single one.
	Output any `yaml:"output" json:"output"`

	// Grad names the value to differentiate with respect to every input.
	Grad string `yaml:"grad,omitempty" json:"grad,omitempty"`

	// Expect lists what the run must produce.
	Expect Expect `yaml:"expect,omitempty" json:"expect,omitempty"`

	// Tolerance bounds numeric comparisons. Zero means DefaultTolerance.
	Tolerance float64 `yaml:"tolerance,omitempty" json:"tolerance,omitempty"`

	// TraceID is the fixed correlation ID logged by every trace of the run.
	// If empty, defaults to "test-trace-default".
	TraceID string `yaml:"trace_id,omitempty" json:"trace_id,omitempty"`
}

// Step applies one operation.
type Step struct {
	// Let names the result.
	Let string `yaml:"let" json:"let"`

	// Op is the operation name, e.g. "mul".
	Op string `yaml:"op" json:"op"`

	// Args are positional operands: names or numbers.
	Args []any `yaml:"args" json:"args"`

	// Kwargs are named operands: names or numbers.
	Kwargs map[string]any `yaml:"kwargs,omitempty" json:"kwargs,omitempty"`
}

// Expect specifies expected results. Unset fields are not checked.
type Expect struct {
	// Values are the expected unboxed outputs, shaped like Output.
	Values any `yaml:"values,omitempty" json:"values,omitempty"`

	// Grads maps input names to expected derivatives of Grad.
	Grads map[string]float64 `yaml:"grads,omitempty" json:"grads,omitempty"`

	// Nodes is the expected number of recorded nodes reachable from the outputs.
	Nodes *int `yaml:"nodes,omitempty" json:"nodes,omitempty"`

	// Independent is the expected number of outputs with no node.
	Independent *int `yaml:"independent,omitempty" json:"independent,omitempty"`
}

// InputTree returns the input names as a tree.
func (s *Scenario) InputTree() tree.Tree { return tree.FromNested(s.Input) }

// OutputTree returns the output references as a tree.
func (s *Scenario) OutputTree() tree.Tree { return tree.FromNested(s.Output) }

// EffectiveTolerance returns Tolerance or DefaultTolerance.
func (s *Scenario) EffectiveTolerance() float64 {
	if s.Tolerance == 0 {
		return DefaultTolerance
	}
	return s.Tolerance
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or fails validation.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ValidateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// ValidateScenario checks that required fields are present and that every
// name used is defined before it is referenced. Operation names are checked
// by Run, which knows the provider.
func ValidateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Input == nil {
		return fmt.Errorf("input is required")
	}

	if s.Output == nil {
		return fmt.Errorf("output is required")
	}

	if s.Tolerance < 0 {
		return fmt.Errorf("tolerance must be non-negative")
	}

	defined := make(map[string]bool)
	for i, leaf := range tree.Flatten(s.InputTree()) {
		name, ok := leaf.(string)
		if !ok || name == "" {
			return fmt.Errorf("input[%d]: must be a name, got %v", i, leaf)
		}
		if defined[name] {
			return fmt.Errorf("input[%d]: duplicate name %q", i, name)
		}
		if _, ok := s.Values[name]; !ok {
			return fmt.Errorf("input[%d]: no value for %q", i, name)
		}
		defined[name] = true
	}

	for i, step := range s.Steps {
		if step.Let == "" {
			return fmt.Errorf("steps[%d]: let is required", i)
		}
		if step.Op == "" {
			return fmt.Errorf("steps[%d]: op is required", i)
		}
		if defined[step.Let] {
			return fmt.Errorf("steps[%d]: %q is already defined", i, step.Let)
		}
		for j, arg := range step.Args {
			if err := checkRef(arg, defined); err != nil {
				return fmt.Errorf("steps[%d].args[%d]: %w", i, j, err)
			}
		}
		for k, arg := range step.Kwargs {
			if err := checkRef(arg, defined); err != nil {
				return fmt.Errorf("steps[%d].kwargs[%s]: %w", i, k, err)
			}
		}
		defined[step.Let] = true
	}

	for i, leaf := range tree.Flatten(s.OutputTree()) {
		if err := checkRef(leaf, defined); err != nil {
			return fmt.Errorf("output[%d]: %w", i, err)
		}
	}

	if s.Grad != "" && !defined[s.Grad] {
		return fmt.Errorf("grad: %q is not defined", s.Grad)
	}

	if len(s.Expect.Grads) > 0 && s.Grad == "" {
		return fmt.Errorf("expect.grads requires grad")
	}

	for name := range s.Expect.Grads {
		if _, ok := s.Values[name]; !ok {
			return fmt.Errorf("expect.grads: %q is not an input", name)
		}
	}

	return nil
}

// checkRef accepts a defined name or a numeric constant.
func checkRef(v any, defined map[string]bool) error {
	switch x := v.(type) {
	case string:
		if !defined[x] {
			return fmt.Errorf("%q is not defined", x)
		}
		return nil
	case int, int64, float64, bool:
		return nil
	default:
		return fmt.Errorf("expected a name or a number, got %T", v)
	}
}
