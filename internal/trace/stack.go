package trace

// Level identifies one active tracing scope. Levels strictly increase while
// scopes are nested; a higher level is more active for dispatch.
type Level int

// NoLevel is the level of a stack with no open scope.
const NoLevel Level = 0

// Stack is the trace-nesting counter.
//
// Scopes close in exactly the reverse order they were opened. The counter is
// not synchronized: at most one call chain may open and close scopes on a
// Stack at a time.
type Stack struct {
	top Level
}

// NewStack creates a stack with no open scope.
func NewStack() *Stack {
	return &Stack{}
}

// Top returns the innermost open level, or NoLevel.
func (s *Stack) Top() Level {
	return s.top
}

// Enter opens a new scope and returns its level.
func (s *Stack) Enter() Level {
	s.top++
	return s.top
}

// Exit closes the scope at level l.
//
// Panics with a SCOPE_MISMATCH TraceError if l is not the innermost level.
func (s *Stack) Exit(l Level) {
	if l != s.top {
		panic(NewScopeMismatchError(l, s.top))
	}
	s.top--
}

// Scope runs fn inside a new scope. The scope is closed on every exit path,
// including when fn returns an error or panics.
func (s *Stack) Scope(fn func(Level) error) error {
	l := s.Enter()
	defer s.Exit(l)
	return fn(l)
}
