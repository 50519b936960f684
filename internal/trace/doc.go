// Package trace implements the tracing engine of a reverse-mode automatic
// differentiation library.
//
// The tracer records every intercepted operation performed on a traced input
// as a node in a directed acyclic graph. A differentiation layer then walks
// the graph backward with Toposort and accumulates gradients. Backward rules
// and concrete value types are supplied by gradient-rule providers; this
// package never depends on them.
//
// ARCHITECTURE:
//
// Trace flow:
//  1. Tracer.Trace opens a scope on the Stack and gets a new Level
//  2. Every input leaf is boxed at that level around a fresh root node
//  3. The user function runs; each Primitive call inspects its positional
//     arguments, unboxes the ones at the highest level, recurses, and boxes
//     the result around a new interior node
//  4. Output leaves boxed at the trace's level are split into (value, node);
//     others are logged as independent of the input
//  5. The scope closes on every exit path
//
// Nesting:
// Calling Trace from inside a traced function opens a strictly higher level.
// Boxes of the outer level pass through the inner trace untouched and are
// only peeled once the inner level has been handled, which is what makes
// gradients of gradients compose.
//
// Acyclicity:
// Nodes are only ever appended, and a node's parents exist before it is
// constructed. The graph is acyclic by construction; Toposort does not check
// for cycles.
//
// Providers:
//   - Register one Box variant per differentiable value type with RegisterBox
//   - Implement Node (embedding BaseNode) with Interior overridden
//   - Supply a RootFactory per traced input leaf
package trace
