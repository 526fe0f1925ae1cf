package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/thinui/internal/core/ids"
)

func TestWatchdogExpiresIdleSessions(t *testing.T) {
	app, _ := newApp(t, WithLifetime(300*time.Millisecond))
	w := NewWatchdog(app, WithPeriod(100*time.Millisecond))

	id, _ := app.CreateClient("")

	assert.Empty(t, w.Tick())
	assert.Empty(t, w.Tick())
	expired := w.Tick()
	require.Len(t, expired, 1)
	assert.Equal(t, id, expired[0])

	_, ok := app.Client(id)
	assert.False(t, ok)
	out := app.Synchronize(id)
	require.Len(t, out, 1)
	assert.Equal(t, "reset", out[0].Action)
	assert.False(t, app.KillClient(id))
}

func TestSynchronizeRefreshesTimer(t *testing.T) {
	app, _ := newApp(t, WithLifetime(200*time.Millisecond))
	w := NewWatchdog(app, WithPeriod(100*time.Millisecond))
	id, _ := app.CreateClient("")

	for i := 0; i < 5; i++ {
		assert.Empty(t, w.Tick())
		app.Synchronize(id)
	}
	_, ok := app.Client(id)
	assert.True(t, ok)
}

func TestExpireSparesSessionTouchedAfterSweep(t *testing.T) {
	app, _ := newApp(t, WithLifetime(100*time.Millisecond))
	id, _ := app.CreateClient("")
	c, ok := app.Client(id)
	require.True(t, ok)

	require.True(t, c.Tick(100*time.Millisecond))
	app.Synchronize(id)

	assert.Empty(t, app.expire([]ids.ID{id}))
	_, ok = app.Client(id)
	assert.True(t, ok)
	assert.False(t, c.Destroyed())
}

func TestThroughputResetsCounter(t *testing.T) {
	app, _ := newApp(t)
	w := NewWatchdog(app,
		WithPeriod(100*time.Millisecond),
		WithReportInterval(300*time.Millisecond))

	for i := 0; i < 10; i++ {
		app.CountRequest()
	}
	w.Tick()
	w.Tick()
	assert.Equal(t, int64(10), app.Stats().Requests)

	w.Tick()
	assert.Equal(t, int64(0), app.Stats().Requests)
}

func TestWatchdogRun(t *testing.T) {
	app, _ := newApp(t, WithLifetime(20*time.Millisecond))
	w := NewWatchdog(app, WithPeriod(5*time.Millisecond))
	id, _ := app.CreateClient("")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	assert.Eventually(t, func() bool {
		_, ok := app.Client(id)
		return !ok
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestWatchdogRunRejectsBadPeriod(t *testing.T) {
	app, _ := newApp(t)
	w := NewWatchdog(app, WithPeriod(0))
	assert.ErrorIs(t, w.Run(context.Background()), ErrInvalidPeriod)
}
