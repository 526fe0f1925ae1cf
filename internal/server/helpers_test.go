package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/thinui/internal/core/application"
	"github.com/zeusync/thinui/internal/core/events/bus"
	"github.com/zeusync/thinui/internal/core/observability/log"
	"github.com/zeusync/thinui/internal/core/session"
	"github.com/zeusync/thinui/internal/core/widget"
)

type fixture struct {
	app        *application.Application
	dispatcher *Dispatcher
	server     *Server
	clicks     chan struct{}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{clicks: make(chan struct{}, 16)}
	events := bus.New()
	f.app = application.New(
		application.WithLifetime(time.Minute),
		application.WithEventBus(events),
	)
	require.NoError(t, f.app.Register(application.DefaultPage, session.PageFunc(func(root *widget.Widget) {
		label := widget.NewText(root.Owner(), "idle")
		btn := widget.NewButton(root.Owner(), "go", func() {
			label.SetText("clicked")
			f.clicks <- struct{}{}
		})
		root.Append(label.Widget)
		root.Append(btn.Widget)
	})))

	f.dispatcher = NewDispatcher(f.app, log.NewNop())
	cfg := DefaultConfig()
	cfg.Server.Listen = "127.0.0.1:0"
	watchdog := application.NewWatchdog(f.app, application.WithPeriod(10*time.Millisecond))
	f.server = New(cfg, f.app, watchdog, f.dispatcher, events, log.NewNop())
	return f
}
