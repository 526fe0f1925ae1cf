package server

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerRun(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.server.Run(ctx) }()

	require.Eventually(t, func() bool { return f.server.Addr() != "" }, 2*time.Second, 5*time.Millisecond)

	resp, err := http.Post("http://"+f.server.Addr()+"/api", "application/json",
		strings.NewReader(`{"action":"new instance"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, f.app.Stats().Sessions)

	assert.ErrorIs(t, f.server.Run(ctx), ErrServerAlreadyRunning)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Equal(t, 0, f.app.Stats().Sessions)
}

func TestServerRunListenFailure(t *testing.T) {
	f := newFixture(t)
	f.server.config.Server.Listen = "256.0.0.1:bad"
	assert.ErrorIs(t, f.server.Run(context.Background()), ErrListenerFailed)
}
