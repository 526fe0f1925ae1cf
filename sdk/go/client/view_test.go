package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/thinui/internal/core/ids"
	"github.com/zeusync/thinui/internal/core/instruction"
)

func apply(t *testing.T, v *View, items ...instruction.Instruction) {
	t.Helper()
	for _, in := range items {
		require.NoError(t, v.Apply(in))
	}
}

func TestViewBuildsTree(t *testing.T) {
	v := NewView()
	root, panel, text := ids.Next(), ids.Next(), ids.Next()

	apply(t, v,
		instruction.Create(root, "root"),
		instruction.Create(panel, "panel"),
		instruction.Create(text, "text"),
		instruction.Set(text, "text", "hi"),
		instruction.Subscribe(text, "click"),
		instruction.AppendChild(panel, text),
		instruction.AppendChild(root, panel),
	)

	assert.Equal(t, root, v.Root())
	n, ok := v.Node(text)
	require.True(t, ok)
	assert.Equal(t, panel, n.Parent)
	assert.Equal(t, "hi", n.Text())
	assert.True(t, n.Events["click"])

	found, ok := v.Find("text", "hi")
	require.True(t, ok)
	assert.Equal(t, text, found.ID)
	assert.Equal(t, "root "+root.String()+"\n  panel "+panel.String()+"\n    text "+text.String()+" \"hi\"\n", v.Dump())
}

func TestViewSetChildDropsOldOccupant(t *testing.T) {
	v := NewView()
	deco, placeholder, child := ids.Next(), ids.Next(), ids.Next()

	apply(t, v,
		instruction.Create(deco, "decorator"),
		instruction.Create(placeholder, "placeholder"),
		instruction.SetChild(deco, placeholder),
		instruction.Create(child, "text"),
		instruction.SetChild(deco, child),
	)

	_, ok := v.Node(placeholder)
	assert.False(t, ok)
	n, _ := v.Node(deco)
	assert.Equal(t, []ids.ID{child}, n.Children)
}

func TestViewMoveAndRemove(t *testing.T) {
	v := NewView()
	a, b, c := ids.Next(), ids.Next(), ids.Next()

	apply(t, v,
		instruction.Create(a, "panel"),
		instruction.Create(b, "panel"),
		instruction.Create(c, "text"),
		instruction.AppendChild(a, c),
		instruction.RemoveChild(a, c),
		instruction.AppendChild(b, c),
	)

	na, _ := v.Node(a)
	nb, _ := v.Node(b)
	assert.Empty(t, na.Children)
	assert.Equal(t, []ids.ID{c}, nb.Children)
}

func TestViewErrors(t *testing.T) {
	v := NewView()
	known := ids.Next()
	apply(t, v, instruction.Create(known, "panel"))

	assert.ErrorIs(t, v.Apply(instruction.Set(ids.Next(), "text", "x")), ErrUnknownWidget)
	assert.ErrorIs(t, v.Apply(instruction.AppendChild(known, ids.Next())), ErrUnknownWidget)

	v.Reset()
	assert.Equal(t, 0, v.Len())
	assert.Equal(t, ids.Invalid, v.Root())
}
