package instruction

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zeusync/thinui/internal/core/ids"
)

func idsOf(items []Instruction) []ids.ID {
	out := make([]ids.ID, len(items))
	for i, in := range items {
		out[i] = in.ID
	}
	return out
}

func TestResultIsSortedByCreation(t *testing.T) {
	a, b := ids.Next(), ids.Next()
	first := Create(a, "text")
	second := Create(b, "text")
	third := Set(a, "text", "x")

	c := NewCollector()
	c.Add(third)
	c.Add(second, first)

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []ids.ID{first.ID, second.ID, third.ID}, idsOf(c.Result()))
}

func TestDuplicatesAreKeptByDefault(t *testing.T) {
	w := ids.Next()
	c := NewCollector()
	c.Add(Set(w, "text", "a"), Set(w, "text", "b"), Set(w, "text", "c"))

	out := c.Result()
	assert.Len(t, out, 3)
	last, _ := out[2].Field("text")
	assert.Equal(t, "c", last)
}

func TestCoalescingKeepsLastSetterOnly(t *testing.T) {
	w, other := ids.Next(), ids.Next()
	create := Create(w, "text")
	s1 := Set(w, "text", "a")
	color := Set(w, "color", "#ff0000")
	s2 := Set(w, "text", "b")
	sub := Subscribe(w, "change")
	s3 := Set(other, "text", "z")
	appendC := AppendChild(other, w)
	appendD := AppendChild(other, w)

	c := NewCollector(WithCoalescing(true))
	c.Add(appendD, s3, sub, s2, color, s1, create, appendC)

	assert.Equal(t,
		[]ids.ID{create.ID, color.ID, s2.ID, sub.ID, s3.ID, appendC.ID, appendD.ID},
		idsOf(c.Result()))
}
