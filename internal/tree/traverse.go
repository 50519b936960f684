package tree

// Map applies f elementwise to the leaves of one or more trees and returns
// a tree with the shape of the first. The trees are expected to share a
// shape; where they do not, missing children are read as nil leaves.
// With no trees, Map returns a nil leaf.
func Map(f func(leaves ...any) any, trees ...Tree) Tree {
	out, _ := TryMap(func(leaves ...any) (any, error) {
		return f(leaves...), nil
	}, trees...)
	return out
}

// TryMap is Map for leaf functions that can fail. It stops at the first
// error, visiting leaves depth-first left-to-right.
func TryMap(f func(leaves ...any) (any, error), trees ...Tree) (Tree, error) {
	if len(trees) == 0 {
		return Tree{}, nil
	}
	return tryMap(f, trees)
}

func tryMap(f func(leaves ...any) (any, error), trees []Tree) (Tree, error) {
	first := trees[0]
	if !first.composite {
		leaves := make([]any, len(trees))
		for i, t := range trees {
			leaves[i] = t.value
		}
		v, err := f(leaves...)
		if err != nil {
			return Tree{}, err
		}
		return Leaf(v), nil
	}

	children := make([]Tree, len(first.children))
	column := make([]Tree, len(trees))
	for i := range first.children {
		for j, t := range trees {
			column[j] = t.Child(i)
		}
		c, err := tryMap(f, column)
		if err != nil {
			return Tree{}, err
		}
		children[i] = c
	}
	return Tree{children: children, composite: true}, nil
}

// Unzip inverts a zip: given a tree whose leaves are Pairs, it returns a
// tree of the first components and a tree of the second components, both
// shaped like t. A leaf that is not a Pair unzips to (value, nil).
func Unzip(t Tree) (Tree, Tree) {
	if !t.composite {
		if p, ok := t.value.(Pair); ok {
			return Leaf(p.First), Leaf(p.Second)
		}
		return Leaf(t.value), Leaf(nil)
	}

	firsts := make([]Tree, len(t.children))
	seconds := make([]Tree, len(t.children))
	for i, c := range t.children {
		firsts[i], seconds[i] = Unzip(c)
	}
	return Tree{children: firsts, composite: true}, Tree{children: seconds, composite: true}
}

// Flatten returns the leaves of t in depth-first, left-to-right order.
func Flatten(t Tree) []any {
	var leaves []any
	stack := []Tree{t}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !n.composite {
			leaves = append(leaves, n.value)
			continue
		}
		// Push in reverse so the leftmost child is popped first.
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, n.children[i])
		}
	}
	return leaves
}
