package instruction

import (
	"cmp"
	"slices"

	"github.com/zeusync/thinui/internal/core/ids"
)

// Collector gathers instructions drained from many widget queues and hands
// them back in creation order. It is not safe for concurrent use; one drain
// owns one collector.
type Collector struct {
	items    []Instruction
	coalesce bool
}

type CollectorOption func(*Collector)

// WithCoalescing keeps only the last property setter per (widget, action)
// pair. Structural instructions are always kept.
func WithCoalescing(enabled bool) CollectorOption {
	return func(c *Collector) { c.coalesce = enabled }
}

func NewCollector(opts ...CollectorOption) *Collector {
	c := &Collector{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Collector) Add(items ...Instruction) {
	c.items = append(c.items, items...)
}

func (c *Collector) Len() int {
	return len(c.items)
}

// Result returns the collected instructions sorted by ID. It is never nil.
func (c *Collector) Result() []Instruction {
	out := make([]Instruction, len(c.items))
	copy(out, c.items)
	slices.SortFunc(out, func(a, b Instruction) int { return cmp.Compare(a.ID, b.ID) })
	if c.coalesce {
		out = coalesce(out)
	}
	return out
}

type setterKey struct {
	widget ids.ID
	action string
}

// coalesce drops every setter that is followed by another setter for the same
// widget and property. Input must be sorted.
func coalesce(sorted []Instruction) []Instruction {
	last := make(map[setterKey]ids.ID)
	for _, in := range sorted {
		if in.IsSet() {
			last[setterKey{in.Widget, in.Action}] = in.ID
		}
	}
	return slices.DeleteFunc(sorted, func(in Instruction) bool {
		return in.IsSet() && last[setterKey{in.Widget, in.Action}] != in.ID
	})
}
