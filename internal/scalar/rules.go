package scalar

import (
	"errors"
	"fmt"
	"sync"

	"github.com/roach88/autotrace/internal/trace"
)

// ErrCodeNoGradientRule indicates an operation has no VJP for an operand.
const ErrCodeNoGradientRule trace.TraceErrorCode = "NO_GRADIENT_RULE"

// IsNoGradientRule returns true if the error is a missing-rule error.
func IsNoGradientRule(err error) bool {
	var te *trace.TraceError
	if errors.As(err, &te) {
		return te.Code == ErrCodeNoGradientRule
	}
	return false
}

// Rule builds the VJP of an operation with respect to one operand, given
// the result and the operands of the recorded call.
type Rule func(ans any, args []any, kwargs trace.Kwargs) VJP

// Rules is the table of gradient rules, keyed by op name and operand index.
type Rules struct {
	mu    sync.RWMutex
	rules map[string]map[int]Rule
}

// NewRules creates an empty rule table.
func NewRules() *Rules {
	return &Rules{rules: make(map[string]map[int]Rule)}
}

// Define sets the rules of op, one per operand index in order.
func (r *Rules) Define(op string, rules ...Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := make(map[int]Rule, len(rules))
	for i, rule := range rules {
		if rule != nil {
			m[i] = rule
		}
	}
	r.rules[op] = m
}

// Has reports whether op has a rule for argnum.
func (r *Rules) Has(op string, argnum int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rules[op][argnum]
	return ok
}

func (r *Rules) vjp(op string, argnum int, ans any, args []any, kwargs trace.Kwargs) VJP {
	r.mu.RLock()
	rule, ok := r.rules[op][argnum]
	r.mu.RUnlock()

	if !ok {
		return func(any) (any, error) {
			return nil, &trace.TraceError{
				Code:    ErrCodeNoGradientRule,
				Message: fmt.Sprintf("no gradient rule for %s with respect to argument %d", op, argnum),
			}
		}
	}
	return rule(ans, args, kwargs)
}
