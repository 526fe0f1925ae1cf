// Package widget models the server-side widget tree. Each widget owns a queue
// of instructions not yet delivered to the renderer.
//
// Tree structure (parent, children, handlers) is guarded by the owning
// session's lock; callers must hold it. The instruction queues of one session
// share a separate queue lock because model listeners may push from any
// goroutine.
package widget

import (
	"slices"
	"sync"

	"github.com/zeusync/thinui/internal/core/ids"
	"github.com/zeusync/thinui/internal/core/instruction"
	"github.com/zeusync/thinui/internal/core/model"
)

// Owner is the session that keeps the id -> widget registry.
type Owner interface {
	Register(w *Widget)
	Unregister(id ids.ID)
	// QueueLock guards the pending queues of every widget the owner holds.
	QueueLock() *sync.Mutex
}

// EventHandler receives an event forwarded by the renderer.
type EventHandler func(w *Widget, payload string)

type Widget struct {
	id    ids.ID
	kind  Kind
	owner Owner

	parent   *Widget
	children []*Widget

	handlers  map[string]EventHandler
	releasers []func()

	queue   *sync.Mutex
	pending []instruction.Instruction
}

// New creates a detached widget, registers it with owner and queues its
// Create instruction. Kinds with a mandatory slot start with a placeholder.
func New(owner Owner, kind Kind) *Widget {
	if owner == nil {
		panic(ErrNoOwner)
	}
	w := &Widget{
		id:    ids.Next(),
		kind:  kind,
		owner: owner,
		queue: owner.QueueLock(),
	}
	owner.Register(w)
	w.Push(instruction.Create(w.id, kind.String()))

	if kind.Mandatory() {
		w.fillSlot()
	}
	return w
}

// NewRoot creates the root of a session's tree.
func NewRoot(owner Owner) *Widget {
	return New(owner, KindRoot)
}

func (w *Widget) ID() ids.ID      { return w.id }
func (w *Widget) Kind() Kind      { return w.kind }
func (w *Widget) Owner() Owner    { return w.owner }
func (w *Widget) Parent() *Widget { return w.parent }
func (w *Widget) IsRoot() bool    { return w.kind == KindRoot }

// Children returns a snapshot of the child list.
func (w *Widget) Children() []*Widget {
	return slices.Clone(w.children)
}

// Push appends an instruction to the widget's queue. Nothing is merged.
func (w *Widget) Push(in instruction.Instruction) {
	w.queue.Lock()
	w.pending = append(w.pending, in)
	w.queue.Unlock()
}

// Emit builds an instruction under the queue lock and queues it. Listeners
// fired from another session's goroutine use it so the instruction id is
// allocated either before or after a drain of this queue, never across one.
func (w *Widget) Emit(build func() instruction.Instruction) {
	w.queue.Lock()
	w.pending = append(w.pending, build())
	w.queue.Unlock()
}

// Pending returns the number of queued instructions on this widget alone.
func (w *Widget) Pending() int {
	w.queue.Lock()
	defer w.queue.Unlock()
	return len(w.pending)
}

// Flush drains this widget's queue and those of all descendants into c.
func (w *Widget) Flush(c *instruction.Collector) {
	w.queue.Lock()
	defer w.queue.Unlock()
	w.flushLocked(c)
}

func (w *Widget) flushLocked(c *instruction.Collector) {
	c.Add(w.pending...)
	w.pending = nil
	for _, child := range w.children {
		child.flushLocked(c)
	}
}

// Append attaches child as the last child of w. A child that already has a
// parent is moved. On a decorator Append replaces the slot.
func (w *Widget) Append(child *Widget) {
	if w.kind.Mandatory() {
		w.SetChild(child)
		return
	}
	w.checkAdoptable(child)

	if child.parent != nil {
		child.parent.unlink(child)
	}
	child.parent = w
	w.children = append(w.children, child)
	w.Push(instruction.AppendChild(w.id, child.id))
}

// Child returns the occupant of a decorator's slot.
func (w *Widget) Child() *Widget {
	if !w.kind.Mandatory() {
		panic(ErrNotDecorator)
	}
	return w.children[0]
}

// SetChild puts child into a decorator's slot. The previous occupant is
// removed from the session.
func (w *Widget) SetChild(child *Widget) {
	if !w.kind.Mandatory() {
		panic(ErrNotDecorator)
	}
	w.checkAdoptable(child)

	old := w.children[0]
	if old == child {
		return
	}
	if child.parent != nil {
		child.parent.unlink(child)
	}

	old.parent = nil
	w.adoptPending(old)
	old.discard()

	child.parent = w
	w.children = []*Widget{child}
	w.Push(instruction.SetChild(w.id, child.id))
}

// Remove detaches child from w and drops the whole subtree from the session.
// Instructions still queued in the subtree are handed to w so they are
// delivered in order. It reports false if child is not a child of w.
func (w *Widget) Remove(child *Widget) bool {
	if child == nil || child.parent != w {
		return false
	}
	w.unlink(child)
	w.adoptPending(child)
	child.discard()
	return true
}

// On installs the handler for an event type and asks the renderer to start
// forwarding that event.
func (w *Widget) On(event string, h EventHandler) {
	if w.handlers == nil {
		w.handlers = make(map[string]EventHandler)
	}
	_, subscribed := w.handlers[event]
	w.handlers[event] = h
	if !subscribed {
		w.Push(instruction.Subscribe(w.id, event))
	}
}

// HandleEvent runs the handler for event. It reports whether one existed.
func (w *Widget) HandleEvent(event, payload string) bool {
	h, ok := w.handlers[event]
	if !ok {
		return false
	}
	h(w, payload)
	return true
}

// Track registers a teardown function run when the widget leaves the session.
func (w *Widget) Track(release func()) {
	w.releasers = append(w.releasers, release)
}

// Release runs the teardown functions of the whole subtree.
func (w *Widget) Release() {
	for d := range PostOrder(w).Seq() {
		for _, release := range d.releasers {
			release()
		}
		d.releasers = nil
	}
}

// BindProperty binds m to a property of w: every change of m queues a
// "set <property>" instruction, starting with the current value.
func BindProperty[T comparable](w *Widget, property string, m *model.Model[T]) *model.Binding[T] {
	b := model.Bind[T](m, model.ListenerFunc[T](func(v T) {
		w.Emit(func() instruction.Instruction { return instruction.Set(w.id, property, v) })
	}))
	w.Track(b.Release)
	return b
}

func (w *Widget) checkAdoptable(child *Widget) {
	if !w.kind.Container() {
		panic(ErrNotContainer)
	}
	if child.kind == KindRoot {
		panic(ErrRootParent)
	}
	if child.owner != w.owner {
		panic(ErrForeignOwner)
	}
	for a := w; a != nil; a = a.parent {
		if a == child {
			panic(ErrCycle)
		}
	}
}

// unlink removes child from the child list and tells the renderer. A
// mandatory slot is refilled with a placeholder.
func (w *Widget) unlink(child *Widget) {
	w.children = slices.DeleteFunc(w.children, func(c *Widget) bool { return c == child })
	child.parent = nil

	if w.kind.Mandatory() {
		w.fillSlot()
		return
	}
	w.Push(instruction.RemoveChild(w.id, child.id))
}

func (w *Widget) fillSlot() {
	p := New(w.owner, KindPlaceholder)
	p.parent = w
	w.children = []*Widget{p}
	w.Push(instruction.SetChild(w.id, p.id))
}

func (w *Widget) adoptPending(subtree *Widget) {
	c := instruction.NewCollector()
	w.queue.Lock()
	defer w.queue.Unlock()
	subtree.flushLocked(c)
	w.pending = append(w.pending, c.Result()...)
}

// discard releases the subtree and removes it from the owner's registry.
func (w *Widget) discard() {
	w.Release()
	for d := range PreOrder(w).Seq() {
		d.owner.Unregister(d.id)
	}
}
