// Package tree provides structure-preserving traversal over nested values.
//
// A Tree is an explicit tagged union: either a Leaf holding one value, or a
// Composite holding an ordered, fixed-arity list of child trees. The shape of
// a tree is never described separately; Map and Unzip mirror it while they
// walk, so composite structure survives every operation without a schema.
//
// Recursion in Map and Unzip is bounded by the explicit depth of the tree.
// Flatten is iterative.
package tree

import "fmt"

// Tree is a leaf or an ordered composite of child trees.
// The zero value is a leaf holding nil.
type Tree struct {
	value     any
	children  []Tree
	composite bool
}

// Pair is the leaf type consumed by Unzip.
type Pair struct {
	First  any
	Second any
}

// Leaf returns a tree holding a single value.
func Leaf(v any) Tree {
	return Tree{value: v}
}

// Tuple returns a composite tree. A Tuple with no children is still a
// composite, distinct from a nil leaf.
func Tuple(children ...Tree) Tree {
	cs := make([]Tree, len(children))
	copy(cs, children)
	return Tree{children: cs, composite: true}
}

// FromNested builds a tree from nested []any slices. A []any becomes a
// composite; anything else (including a Tree) becomes a leaf or is kept.
func FromNested(v any) Tree {
	switch val := v.(type) {
	case Tree:
		return val
	case []any:
		cs := make([]Tree, len(val))
		for i, elem := range val {
			cs[i] = FromNested(elem)
		}
		return Tree{children: cs, composite: true}
	default:
		return Leaf(v)
	}
}

// IsLeaf reports whether t is a leaf.
func (t Tree) IsLeaf() bool {
	return !t.composite
}

// Value returns the leaf value, or nil for a composite.
func (t Tree) Value() any {
	return t.value
}

// Len returns the number of children of a composite, or 0 for a leaf.
func (t Tree) Len() int {
	return len(t.children)
}

// Child returns the i-th child. Out-of-range indices and leaves yield a
// nil leaf.
func (t Tree) Child(i int) Tree {
	if !t.composite || i < 0 || i >= len(t.children) {
		return Tree{}
	}
	return t.children[i]
}

// Children returns a copy of the children of a composite.
func (t Tree) Children() []Tree {
	if !t.composite {
		return nil
	}
	cs := make([]Tree, len(t.children))
	copy(cs, t.children)
	return cs
}

// Nested converts t back to nested []any slices, the inverse of FromNested.
func (t Tree) Nested() any {
	if !t.composite {
		return t.value
	}
	out := make([]any, len(t.children))
	for i, c := range t.children {
		out[i] = c.Nested()
	}
	return out
}

// String renders leaves with %v and composites as parenthesized lists.
func (t Tree) String() string {
	if !t.composite {
		return fmt.Sprintf("%v", t.value)
	}
	s := "("
	for i, c := range t.children {
		if i > 0 {
			s += ", "
		}
		s += c.String()
	}
	return s + ")"
}

// SameShape reports whether a and b have identical composite structure.
// Leaf values are not compared.
func SameShape(a, b Tree) bool {
	if a.composite != b.composite {
		return false
	}
	if !a.composite {
		return true
	}
	if len(a.children) != len(b.children) {
		return false
	}
	for i := range a.children {
		if !SameShape(a.children[i], b.children[i]) {
			return false
		}
	}
	return true
}
