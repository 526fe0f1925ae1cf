// Package model implements typed observable values with prototype fallback.
//
// A Model resolves its value in three tiers: its own value if it has one,
// otherwise its prototype's resolved value, otherwise the kind's default. A
// fork is a new model whose prototype is the forked one; it forwards every
// change of its prototype to its own listeners until its first accepted
// write, at which point it detaches for good.
package model

import (
	"runtime"
	"slices"
	"sync"
	"weak"
)

type protoLink[T comparable] struct {
	parent *Model[T]
	sub    *Subscription
}

// Model is safe for concurrent use. Changes are delivered one at a time in
// the order they were applied, so the last value a listener received is the
// resolved value. Listeners run in registration order under the delivery
// lock; a listener must not write the model it listens to or any of that
// model's prototypes.
type Model[T comparable] struct {
	// deliver serializes a change with its notification. Forks take it after
	// their prototypes.
	deliver sync.Mutex

	mu        sync.RWMutex
	valid     bool
	value     T
	proto     *protoLink[T]
	listeners []*entry[T]

	kind *kind[T]
}

// kind holds what every fork of a model shares.
type kind[T comparable] struct {
	def    func() T
	accept func(T) bool
	parse  func(string) (T, bool)
}

type Option[T comparable] func(*kind[T])

// WithValidator installs the write hook: values it rejects are ignored by
// SetData without notification.
func WithValidator[T comparable](accept func(T) bool) Option[T] {
	return func(k *kind[T]) { k.accept = accept }
}

// WithParser enables SetText.
func WithParser[T comparable](parse func(string) (T, bool)) Option[T] {
	return func(k *kind[T]) { k.parse = parse }
}

// New creates an invalid model: it owns no value and resolves to def().
func New[T comparable](def func() T, opts ...Option[T]) *Model[T] {
	k := &kind[T]{def: def}
	for _, opt := range opts {
		opt(k)
	}
	return &Model[T]{kind: k}
}

// Data returns the resolved value. It never fails.
func (m *Model[T]) Data() T {
	m.mu.RLock()
	if m.valid {
		v := m.value
		m.mu.RUnlock()
		return v
	}
	link := m.proto
	m.mu.RUnlock()

	if link != nil {
		return link.parent.Data()
	}
	return m.kind.def()
}

// Valid reports whether the model owns a value.
func (m *Model[T]) Valid() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.valid
}

// Prototype returns the model this one was forked from, or nil once detached
// or when it was never forked.
func (m *Model[T]) Prototype() *Model[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.proto == nil {
		return nil
	}
	return m.proto.parent
}

// SetData writes v. Values rejected by the validator and values equal to the
// currently resolved one are ignored. An accepted write detaches a fork from
// its prototype and notifies listeners with v. It reports whether the write
// took effect.
func (m *Model[T]) SetData(v T) bool {
	if m.kind.accept != nil && !m.kind.accept(v) {
		return false
	}

	m.deliver.Lock()
	defer m.deliver.Unlock()

	m.mu.Lock()
	if m.resolveLocked() == v {
		m.mu.Unlock()
		return false
	}
	link := m.proto
	m.proto = nil
	m.valid = true
	m.value = v
	listeners := m.snapshotLocked()
	m.mu.Unlock()

	if link != nil {
		link.sub.Release()
	}
	m.notify(listeners, v)
	return true
}

// SetText parses s with the kind's parser and writes the result. Unparsable
// input is ignored like a rejected write.
func (m *Model[T]) SetText(s string) bool {
	if m.kind.parse == nil {
		return false
	}
	v, ok := m.kind.parse(s)
	if !ok {
		return false
	}
	return m.SetData(v)
}

// Detach severs the prototype link while keeping the visible value: the
// currently resolved value becomes the model's own. Listeners are not
// notified. Detaching an independent model does nothing.
func (m *Model[T]) Detach() {
	unlock := m.lockDelivery()
	defer unlock()

	m.mu.Lock()
	link := m.proto
	if link == nil {
		m.mu.Unlock()
		return
	}
	m.value = link.parent.Data()
	m.valid = true
	m.proto = nil
	m.mu.Unlock()

	link.sub.Release()
}

// Fork returns a new invalid model of the same kind whose prototype is m.
// The prototype holds the fork only weakly; a fork nobody references is
// collected and its slot on m pruned.
func (m *Model[T]) Fork() *Model[T] {
	child := &Model[T]{kind: m.kind}
	ref := weak.Make(child)

	sub := m.addEntry(func(v T) bool {
		c := ref.Value()
		if c == nil {
			return false
		}
		c.forward(v)
		return true
	})
	child.proto = &protoLink[T]{parent: m, sub: sub}

	runtime.AddCleanup(child, func(s *Subscription) { s.Release() }, sub)
	return child
}

// AddListener registers l. The returned subscription must be released when
// the listener's owner goes away.
func (m *Model[T]) AddListener(l Listener[T]) *Subscription {
	return m.addEntry(func(v T) bool {
		l.Changed(v)
		return true
	})
}

// RemoveListener is shorthand for sub.Release.
func (m *Model[T]) RemoveListener(sub *Subscription) {
	sub.Release()
}

// Listeners reports the number of live listener slots, forks included.
func (m *Model[T]) Listeners() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, e := range m.listeners {
		if e.live() {
			n++
		}
	}
	return n
}

func (m *Model[T]) addEntry(fire func(T) bool) *Subscription {
	e := &entry[T]{fire: fire}

	m.mu.Lock()
	m.listeners = append(m.listeners, e)
	m.mu.Unlock()

	return &Subscription{release: func() {
		e.released.Store(true)
		m.prune()
	}}
}

// forward re-emits a prototype change while the fork is still attached.
func (m *Model[T]) forward(v T) {
	m.deliver.Lock()
	defer m.deliver.Unlock()

	m.mu.RLock()
	attached := m.proto != nil && !m.valid
	var listeners []*entry[T]
	if attached {
		listeners = m.snapshotLocked()
	}
	m.mu.RUnlock()

	if attached {
		m.notify(listeners, v)
	}
}

// lockDelivery holds back every change that could alter what m resolves to:
// it takes the delivery lock of the outermost prototype first and of m last.
func (m *Model[T]) lockDelivery() (unlock func()) {
	var chain []*Model[T]
	for p := m; p != nil; p = p.Prototype() {
		chain = append(chain, p)
	}
	for _, p := range slices.Backward(chain) {
		p.deliver.Lock()
	}
	return func() {
		for _, p := range chain {
			p.deliver.Unlock()
		}
	}
}

// fire calls l with the resolved value while no change can slip in between.
func (m *Model[T]) fire(l Listener[T]) {
	unlock := m.lockDelivery()
	defer unlock()
	l.Changed(m.Data())
}

func (m *Model[T]) notify(listeners []*entry[T], v T) {
	stale := false
	for _, e := range listeners {
		if !e.live() {
			stale = true
			continue
		}
		if !e.fire(v) {
			e.released.Store(true)
			stale = true
		}
	}
	if stale {
		m.prune()
	}
}

func (m *Model[T]) prune() {
	m.mu.Lock()
	m.listeners = slices.DeleteFunc(m.listeners, func(e *entry[T]) bool { return !e.live() })
	m.mu.Unlock()
}

func (m *Model[T]) resolveLocked() T {
	if m.valid {
		return m.value
	}
	if m.proto != nil {
		return m.proto.parent.Data()
	}
	return m.kind.def()
}

func (m *Model[T]) snapshotLocked() []*entry[T] {
	return slices.Clone(m.listeners)
}
