package client

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/zeusync/thinui/internal/core/ids"
	"github.com/zeusync/thinui/internal/core/instruction"
)

// Node is the client-side mirror of one server widget.
type Node struct {
	ID       ids.ID
	Type     string
	Parent   ids.ID
	Children []ids.ID
	Props    map[string]any
	Events   map[string]bool
}

// Prop returns a property value, or nil.
func (n *Node) Prop(name string) any {
	return n.Props[name]
}

// Text returns the "text" property as a string.
func (n *Node) Text() string {
	s, _ := n.Props["text"].(string)
	return s
}

func (n *Node) clone() *Node {
	c := *n
	c.Children = slices.Clone(n.Children)
	c.Props = maps.Clone(n.Props)
	c.Events = maps.Clone(n.Events)
	return &c
}

// View applies instructions to a local widget tree, the way a renderer
// would. It is safe for concurrent use.
type View struct {
	mu    sync.RWMutex
	nodes map[ids.ID]*Node
	root  ids.ID
}

func NewView() *View {
	return &View{nodes: make(map[ids.ID]*Node)}
}

// Reset drops every node.
func (v *View) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nodes = make(map[ids.ID]*Node)
	v.root = ids.Invalid
}

// Len returns the number of known nodes, including removed subtrees that may
// still be re-attached.
func (v *View) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.nodes)
}

// Root returns the id of the root node, or ids.Invalid before the first sync.
func (v *View) Root() ids.ID {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.root
}

// Node returns a copy of the node.
func (v *View) Node(id ids.ID) (*Node, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	n, ok := v.nodes[id]
	if !ok {
		return nil, false
	}
	return n.clone(), true
}

// Find returns the first node in tree order with the given type and text.
// An empty text matches any.
func (v *View) Find(typ, text string) (*Node, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.find(v.root, typ, text)
}

func (v *View) find(id ids.ID, typ, text string) (*Node, bool) {
	n, ok := v.nodes[id]
	if !ok {
		return nil, false
	}
	if n.Type == typ && (text == "" || n.Text() == text) {
		return n.clone(), true
	}
	for _, c := range n.Children {
		if found, ok := v.find(c, typ, text); ok {
			return found, true
		}
	}
	return nil, false
}

// Dump renders the tree as indented "type #id text" lines.
func (v *View) Dump() string {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var b strings.Builder
	var walk func(id ids.ID, depth int)
	walk = func(id ids.ID, depth int) {
		n, ok := v.nodes[id]
		if !ok {
			return
		}
		fmt.Fprintf(&b, "%s%s %s", strings.Repeat("  ", depth), n.Type, n.ID)
		if t := n.Text(); t != "" {
			fmt.Fprintf(&b, " %q", t)
		}
		b.WriteByte('\n')
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(v.root, 0)
	return b.String()
}

// Apply executes one instruction. Reset is not handled here; the client
// answers it by reconnecting.
func (v *View) Apply(in instruction.Instruction) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if in.Action == instruction.ActionCreate {
		typ, _ := in.Field("type")
		s, _ := typ.(string)
		v.nodes[in.Widget] = &Node{
			ID:     in.Widget,
			Type:   s,
			Props:  make(map[string]any),
			Events: make(map[string]bool),
		}
		if s == "root" {
			v.root = in.Widget
		}
		return nil
	}

	n, ok := v.nodes[in.Widget]
	if !ok {
		return fmt.Errorf("%w: %s (%s)", ErrUnknownWidget, in.Widget, in.Action)
	}

	switch in.Action {
	case instruction.ActionSubscribe:
		event, _ := in.Field("event")
		if s, ok := event.(string); ok {
			n.Events[s] = true
		}
	case instruction.ActionAppendChild:
		child, err := v.child(in)
		if err != nil {
			return err
		}
		v.detach(child)
		child.Parent = n.ID
		n.Children = append(n.Children, child.ID)
	case instruction.ActionSetChild:
		child, err := v.child(in)
		if err != nil {
			return err
		}
		v.detach(child)
		for _, old := range n.Children {
			v.drop(old)
		}
		child.Parent = n.ID
		n.Children = []ids.ID{child.ID}
	case instruction.ActionRemoveChild:
		child, err := v.child(in)
		if err != nil {
			return err
		}
		if child.Parent == n.ID {
			v.detach(child)
		}
	default:
		if !in.IsSet() {
			return fmt.Errorf("unsupported action %q", in.Action)
		}
		property := strings.TrimPrefix(in.Action, "set ")
		value, _ := in.Field(property)
		n.Props[property] = value
	}
	return nil
}

func (v *View) child(in instruction.Instruction) (*Node, error) {
	raw, _ := in.Field("child")
	id, _ := raw.(ids.ID)
	child, ok := v.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: child %s of %s", ErrUnknownWidget, id, in.Widget)
	}
	return child, nil
}

// detach unlinks a node from its current parent without dropping it.
func (v *View) detach(n *Node) {
	if p, ok := v.nodes[n.Parent]; ok {
		p.Children = slices.DeleteFunc(p.Children, func(id ids.ID) bool { return id == n.ID })
	}
	n.Parent = ids.Invalid
}

// drop deletes a subtree.
func (v *View) drop(id ids.ID) {
	n, ok := v.nodes[id]
	if !ok {
		return
	}
	for _, c := range n.Children {
		v.drop(c)
	}
	delete(v.nodes, id)
}
