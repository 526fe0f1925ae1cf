package widget

import (
	"slices"

	"github.com/zeusync/thinui/internal/core/ids"
	"github.com/zeusync/thinui/pkg/sequence"
)

// PreOrder yields root, then each child subtree in order.
func PreOrder(root *Widget) *sequence.Iterator[*Widget] {
	return sequence.FromSeq(func(yield func(*Widget) bool) {
		preOrder(root, yield)
	})
}

func preOrder(w *Widget, yield func(*Widget) bool) bool {
	if !yield(w) {
		return false
	}
	for _, c := range w.children {
		if !preOrder(c, yield) {
			return false
		}
	}
	return true
}

// PostOrder yields every child subtree before its parent.
func PostOrder(root *Widget) *sequence.Iterator[*Widget] {
	return sequence.FromSeq(func(yield func(*Widget) bool) {
		postOrder(root, yield)
	})
}

func postOrder(w *Widget, yield func(*Widget) bool) bool {
	for _, c := range w.children {
		if !postOrder(c, yield) {
			return false
		}
	}
	return yield(w)
}

// OfKind is a filter predicate for the traversals.
func OfKind(kinds ...Kind) func(*Widget) bool {
	return func(w *Widget) bool {
		return slices.Contains(kinds, w.kind)
	}
}

type WalkAction uint8

const (
	Continue WalkAction = iota
	SkipChildren
	Stop
)

// Walk visits the tree depth-first, letting visit prune subtrees or stop.
// It reports false if the walk was stopped.
func Walk(root *Widget, visit func(*Widget) WalkAction) bool {
	switch visit(root) {
	case Stop:
		return false
	case SkipChildren:
		return true
	}
	for _, c := range root.children {
		if !Walk(c, visit) {
			return false
		}
	}
	return true
}

// Find returns the widget with the given id in root's subtree.
func Find(root *Widget, id ids.ID) (*Widget, bool) {
	return PreOrder(root).Find(func(w *Widget) bool { return w.id == id })
}
