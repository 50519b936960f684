// Package testutil provides deterministic helpers for tests and the
// scenario harness.
package testutil

// FixedTraceIDGenerator generates the same trace ID every time.
//
// Unlike trace.FixedGenerator, which walks a list, this generator always
// returns one ID, so every trace opened while running a scenario (nested
// ones included) logs the same correlation ID.
//
// Thread-safety: FixedTraceIDGenerator is stateless and safe for concurrent use.
type FixedTraceIDGenerator struct {
	id string
}

// NewFixedTraceIDGenerator creates a new fixed trace ID generator.
//
// If id is empty, Generate() returns "test-trace-default".
func NewFixedTraceIDGenerator(id string) *FixedTraceIDGenerator {
	if id == "" {
		id = "test-trace-default"
	}
	return &FixedTraceIDGenerator{id: id}
}

// Generate returns the fixed trace ID.
//
// Implements trace.IDGenerator.
func (g *FixedTraceIDGenerator) Generate() string {
	return g.id
}
