package widget

import "errors"

// Structural misuse of the tree. These are raised with panic.
var (
	ErrRootParent   = errors.New("widget: the root widget cannot have a parent")
	ErrCycle        = errors.New("widget: a widget cannot be its own ancestor")
	ErrForeignOwner = errors.New("widget: parent and child belong to different sessions")
	ErrNotContainer = errors.New("widget: kind does not hold children")
	ErrNotDecorator = errors.New("widget: kind has no single child slot")
	ErrNoOwner      = errors.New("widget: owner is required")
)
