package model

import "sync"

// Binding pairs one fixed listener with a swappable model.
type Binding[T comparable] struct {
	mu       sync.Mutex
	model    *Model[T]
	listener Listener[T]
	sub      *Subscription
}

// Bind registers l on m and fires it once with m's current value.
func Bind[T comparable](m *Model[T], l Listener[T]) *Binding[T] {
	unlock := m.lockDelivery()
	defer unlock()

	b := &Binding[T]{
		model:    m,
		listener: l,
		sub:      m.AddListener(l),
	}
	l.Changed(m.Data())
	return b
}

func (b *Binding[T]) Model() *Model[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.model
}

// SetModel moves the listener to m without firing it. Passing the current
// model does nothing.
func (b *Binding[T]) SetModel(m *Model[T]) {
	b.mu.Lock()
	if m == b.model {
		b.mu.Unlock()
		return
	}
	old := b.sub
	b.model = m
	b.sub = m.AddListener(b.listener)
	b.mu.Unlock()

	old.Release()
}

// Refresh fires the listener with the current model's value.
func (b *Binding[T]) Refresh() {
	b.Model().fire(b.listener)
}

// Release unregisters the listener from the current model.
func (b *Binding[T]) Release() {
	b.mu.Lock()
	sub := b.sub
	b.mu.Unlock()
	sub.Release()
}
