package server

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsReply struct {
	Ref    string `json:"ref"`
	Result any    `json:"result"`
	Error  string `json:"error"`
}

func TestWebSocketActions(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.server.Handler())
	defer srv.Close()

	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	call := func(req map[string]any) wsReply {
		t.Helper()
		require.NoError(t, conn.WriteJSON(req))
		var reply wsReply
		require.NoError(t, conn.ReadJSON(&reply))
		return reply
	}

	reply := call(map[string]any{"action": "new instance", "ref": "1"})
	assert.Equal(t, "1", reply.Ref)
	client := reply.Result.(map[string]any)["id"].(string)

	reply = call(map[string]any{"action": "synchronize", "client": client, "ref": "2"})
	assert.Equal(t, "2", reply.Ref)
	assert.NotEmpty(t, reply.Result)

	reply = call(map[string]any{"action": "kill", "client": client})
	assert.Equal(t, true, reply.Result)

	reply = call(map[string]any{"action": "kill", "client": client})
	assert.Equal(t, false, reply.Result)

	reply = call(map[string]any{"action": "dance"})
	assert.Contains(t, reply.Error, "unknown action")
	assert.Nil(t, reply.Result)
}

func TestWebSocketMalformedFrame(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.server.Handler())
	defer srv.Close()

	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{oops")))
	var reply wsReply
	require.NoError(t, conn.ReadJSON(&reply))
	assert.NotEmpty(t, reply.Error)

	require.NoError(t, conn.WriteJSON(map[string]any{"action": "kill", "client": "#0"}))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, false, reply.Result)
}
