package harness

import (
	"github.com/roach88/autotrace/internal/snapshot"
)

// Result is the outcome of a scenario run.
type Result struct {
	// Pass indicates every expectation held.
	Pass bool `json:"pass"`

	// Values holds the unboxed outputs, shaped like the scenario output.
	Values any `json:"values"`

	// Grads maps input names to derivatives of the grad value.
	// Nil when the scenario sets no grad.
	Grads map[string]float64 `json:"grads,omitempty"`

	// Graph is the snapshot of the nodes reachable from the outputs.
	Graph snapshot.Graph `json:"graph"`

	// Independent counts output leaves with no node.
	Independent int `json:"independent"`

	// Errors contains expectation failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds an expectation failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
