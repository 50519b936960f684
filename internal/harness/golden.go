package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/autotrace/internal/snapshot"
	"github.com/roach88/autotrace/internal/tree"
)

// RunSnapshot captures a scenario run for golden comparison.
// All fields use canonical JSON serialization for deterministic comparison.
type RunSnapshot struct {
	ScenarioName string
	Result       *Result
}

// toCanonicalMap converts a RunSnapshot to a map[string]any for canonical
// JSON serialization. Numbers are formatted as strings.
func (s *RunSnapshot) toCanonicalMap() map[string]any {
	values := tree.Map(func(leaves ...any) any {
		return snapshot.FormatValue(leaves[0])
	}, tree.FromNested(s.Result.Values)).Nested()

	m := map[string]any{
		"scenario_name": s.ScenarioName,
		"graph":         s.Result.Graph.ToCanonicalMap(),
		"values":        values,
		"independent":   s.Result.Independent,
	}
	if s.Result.Grads != nil {
		grads := make(map[string]any, len(s.Result.Grads))
		for name, g := range s.Result.Grads {
			grads[name] = snapshot.FormatValue(g)
		}
		m["grads"] = grads
	}
	return m
}

// MarshalCanonical renders the snapshot as canonical JSON.
func (s *RunSnapshot) MarshalCanonical() ([]byte, error) {
	return snapshot.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check Pass. Returns error if the
// scenario cannot run. Test failure (via goldie) occurs if the snapshot
// doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snap := RunSnapshot{ScenarioName: scenarioName, Result: result}
	data, err := snap.MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
