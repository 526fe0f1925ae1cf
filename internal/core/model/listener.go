package model

import (
	"sync"
	"sync/atomic"
)

// Listener is notified with the resolved value whenever a model's effective
// value changes.
type Listener[T any] interface {
	Changed(value T)
}

// ListenerFunc adapts a plain function to Listener.
type ListenerFunc[T any] func(value T)

func (f ListenerFunc[T]) Changed(value T) { f(value) }

// Subscription is the handle returned by AddListener. The owner of the
// listener must Release it on teardown; the model does not keep listeners
// alive on its own terms beyond that.
type Subscription struct {
	once    sync.Once
	release func()
}

// Release unregisters the listener. Calling it more than once, or on a nil
// subscription, does nothing.
func (s *Subscription) Release() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.release != nil {
			s.release()
		}
	})
}

// entry is one listener slot. fire reports false once the slot has gone
// stale, which lets notify prune it.
type entry[T any] struct {
	fire     func(T) bool
	released atomic.Bool
}

func (e *entry[T]) live() bool {
	return !e.released.Load()
}
