package widget

import "fmt"

// Kind is the closed set of widget kinds known to the core. Its String form
// is the type tag the renderer uses to instantiate a view.
type Kind uint8

const (
	KindRoot Kind = iota + 1
	KindPanel
	KindDecorator
	KindPlaceholder
	KindText
	KindButton
	KindEntry
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindPanel:
		return "panel"
	case KindDecorator:
		return "decorator"
	case KindPlaceholder:
		return "placeholder"
	case KindText:
		return "text"
	case KindButton:
		return "button"
	case KindEntry:
		return "entry"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Container reports whether widgets of this kind hold children.
func (k Kind) Container() bool {
	switch k {
	case KindRoot, KindPanel, KindDecorator:
		return true
	default:
		return false
	}
}

// Mandatory reports whether the kind has exactly one child slot that must
// never be empty.
func (k Kind) Mandatory() bool {
	return k == KindDecorator
}
