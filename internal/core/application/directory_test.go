package application

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zeusync/thinui/internal/core/ids"
	"github.com/zeusync/thinui/internal/core/session"
	"github.com/zeusync/thinui/internal/core/widget"
)

func TestDirectory(t *testing.T) {
	d := NewDirectory(4)
	empty := session.PageFunc(func(*widget.Widget) {})

	clients := make([]*session.Client, 10)
	for i := range clients {
		clients[i] = session.New(empty)
		d.Store(clients[i])
	}
	assert.Equal(t, 10, d.Len())

	c, ok := d.Load(clients[3].ID())
	assert.True(t, ok)
	assert.Same(t, clients[3], c)

	_, ok = d.Load(ids.Next())
	assert.False(t, ok)

	c, ok = d.LoadAndDelete(clients[3].ID())
	assert.True(t, ok)
	assert.Same(t, clients[3], c)
	_, ok = d.LoadAndDelete(clients[3].ID())
	assert.False(t, ok)

	seen := 0
	d.Range(func(c *session.Client) bool {
		d.LoadAndDelete(c.ID())
		seen++
		return true
	})
	assert.Equal(t, 9, seen)
	assert.Equal(t, 0, d.Len())
}

func TestDirectoryRangeStops(t *testing.T) {
	d := NewDirectory(0)
	empty := session.PageFunc(func(*widget.Widget) {})
	for i := 0; i < 5; i++ {
		d.Store(session.New(empty))
	}

	seen := 0
	d.Range(func(*session.Client) bool {
		seen++
		return false
	})
	assert.Equal(t, 1, seen)
}
