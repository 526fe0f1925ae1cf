package application

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/thinui/internal/core/events/bus"
	"github.com/zeusync/thinui/internal/core/ids"
	"github.com/zeusync/thinui/internal/core/instruction"
	"github.com/zeusync/thinui/internal/core/session"
	"github.com/zeusync/thinui/internal/core/widget"
)

type counterPage struct {
	mu     sync.Mutex
	clicks int
}

func (p *counterPage) Create(root *widget.Widget) {
	label := widget.NewText(root.Owner(), "0")
	btn := widget.NewButton(root.Owner(), "+", func() {
		p.mu.Lock()
		p.clicks++
		p.mu.Unlock()
		label.SetText("clicked")
	})
	root.Append(label.Widget)
	root.Append(btn.Widget)
}

func newApp(t *testing.T, opts ...Option) (*Application, *counterPage) {
	t.Helper()
	page := &counterPage{}
	app := New(opts...)
	require.NoError(t, app.Register(DefaultPage, page))
	return app, page
}

func findKind(items []instruction.Instruction, kind string) ids.ID {
	for _, in := range items {
		if in.Action == "create" {
			if v, _ := in.Field("type"); v == kind {
				return in.Widget
			}
		}
	}
	return ids.Invalid
}

func TestRegisterTwice(t *testing.T) {
	app, _ := newApp(t)
	err := app.Register(DefaultPage, session.PageFunc(func(*widget.Widget) {}))
	assert.ErrorIs(t, err, ErrPageRegistered)
	assert.Equal(t, []string{DefaultPage}, app.Pages())
}

func TestCreateClient(t *testing.T) {
	app, _ := newApp(t)

	id, err := app.CreateClient("")
	require.NoError(t, err)
	assert.True(t, id.Valid())

	c, ok := app.Client(id)
	require.True(t, ok)
	assert.Equal(t, session.DefaultLifetime, c.Remaining())
	assert.Equal(t, 1, app.Stats().Sessions)
}

func TestCreateClientUnknownPage(t *testing.T) {
	app, _ := newApp(t)
	id, err := app.CreateClient("/missing")
	assert.ErrorIs(t, err, ErrPageNotFound)
	assert.Equal(t, ids.Invalid, id)
}

func TestKillIsIdempotent(t *testing.T) {
	app, _ := newApp(t)
	id, _ := app.CreateClient("")

	assert.True(t, app.KillClient(id))
	assert.False(t, app.KillClient(id))
	assert.Equal(t, 0, app.Stats().Sessions)
}

func TestSynchronizeUnknownSession(t *testing.T) {
	app, _ := newApp(t)

	for _, id := range []ids.ID{ids.Invalid, ids.Next()} {
		out := app.Synchronize(id)
		require.Len(t, out, 1)
		assert.Equal(t, "reset", out[0].Action)
		assert.Equal(t, ids.Invalid, out[0].Widget)
	}

	id, _ := app.CreateClient("")
	app.KillClient(id)
	out := app.Synchronize(id)
	require.Len(t, out, 1)
	assert.Equal(t, "reset", out[0].Action)
}

func TestSynchronizeAndProcessEvent(t *testing.T) {
	app, page := newApp(t)
	id, _ := app.CreateClient("")

	initial := app.Synchronize(id)
	btn := findKind(initial, "button")
	require.True(t, btn.Valid())
	assert.Empty(t, app.Synchronize(id))

	assert.True(t, app.ProcessEvent(id, btn, widget.EventClick, ""))
	assert.Equal(t, 1, page.clicks)

	out := app.Synchronize(id)
	require.Len(t, out, 1)
	assert.Equal(t, "set text", out[0].Action)
}

func TestProcessEventUnknownIsNoop(t *testing.T) {
	app, page := newApp(t)
	id, _ := app.CreateClient("")

	assert.False(t, app.ProcessEvent(ids.Next(), ids.Next(), widget.EventClick, ""))
	assert.False(t, app.ProcessEvent(id, ids.Next(), widget.EventClick, ""))
	assert.Equal(t, 0, page.clicks)
}

func TestLifecycleEvents(t *testing.T) {
	events := bus.New()
	var mu sync.Mutex
	var got []string
	for _, typ := range []string{bus.SessionCreated, bus.SessionKilled, bus.SessionExpired} {
		_, err := events.Subscribe(typ, func(e bus.Event) error {
			mu.Lock()
			got = append(got, e.Type)
			mu.Unlock()
			return nil
		})
		require.NoError(t, err)
	}

	app, _ := newApp(t, WithEventBus(events), WithLifetime(50*time.Millisecond))
	a, _ := app.CreateClient("")
	_, _ = app.CreateClient("")
	app.KillClient(a)

	w := NewWatchdog(app, WithPeriod(50*time.Millisecond))
	w.Tick()

	assert.Equal(t, []string{
		bus.SessionCreated, bus.SessionCreated, bus.SessionKilled, bus.SessionExpired,
	}, got)
}

func TestShutdown(t *testing.T) {
	app, _ := newApp(t)
	a, _ := app.CreateClient("")
	b, _ := app.CreateClient("")
	ca, _ := app.Client(a)

	app.Shutdown()
	assert.Equal(t, 0, app.Stats().Sessions)
	assert.True(t, ca.Destroyed())
	assert.False(t, app.KillClient(b))
}

func TestConcurrentClients(t *testing.T) {
	app, _ := newApp(t)

	var wg sync.WaitGroup
	created := make(chan ids.ID, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := app.CreateClient("")
			if err == nil {
				app.Synchronize(id)
				created <- id
			}
		}()
	}
	wg.Wait()
	close(created)

	assert.Equal(t, 64, app.Stats().Sessions)
	killed := 0
	for id := range created {
		if app.KillClient(id) {
			killed++
		}
	}
	assert.Equal(t, 64, killed)
}
