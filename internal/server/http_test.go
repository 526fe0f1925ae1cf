package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wireInstruction map[string]any

func postJSON(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHTTPSession(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.server.Handler())
	defer srv.Close()

	resp := postJSON(t, srv, `{"action":"new instance"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	client := decode[map[string]string](t, resp)["id"]
	require.True(t, strings.HasPrefix(client, "#"))

	resp = postJSON(t, srv, `{"action":"synchronize","client":"`+client+`"}`)
	initial := decode[[]wireInstruction](t, resp)
	require.NotEmpty(t, initial)
	var button string
	for _, in := range initial {
		if in["action"] == "create" && in["type"] == "button" {
			button = in["widget"].(string)
		}
		assert.IsType(t, "", in["id"])
	}
	require.NotEmpty(t, button)

	form := url.Values{
		"action": {"process event"},
		"client": {client},
		"widget": {button},
		"type":   {"click"},
	}
	resp, err := http.PostForm(srv.URL+"/api", form)
	require.NoError(t, err)
	assert.True(t, decode[bool](t, resp))

	resp, err = http.Get(srv.URL + "/api?" + url.Values{"action": {"synchronize"}, "client": {client}}.Encode())
	require.NoError(t, err)
	updates := decode[[]wireInstruction](t, resp)
	require.Len(t, updates, 1)
	assert.Equal(t, "set text", updates[0]["action"])
	assert.Equal(t, "clicked", updates[0]["text"])

	resp = postJSON(t, srv, `{"action":"synchronize","client":"`+client+`"}`)
	assert.Equal(t, []wireInstruction{}, decode[[]wireInstruction](t, resp))

	resp = postJSON(t, srv, `{"action":"kill","client":"`+client+`"}`)
	assert.True(t, decode[bool](t, resp))

	resp = postJSON(t, srv, `{"action":"synchronize","client":"`+client+`"}`)
	reset := decode[[]wireInstruction](t, resp)
	require.Len(t, reset, 1)
	assert.Equal(t, "reset", reset[0]["action"])
	assert.Equal(t, "#0", reset[0]["widget"])
}

func TestHTTPErrors(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.server.Handler())
	defer srv.Close()

	resp := postJSON(t, srv, `{"action":"launch"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[errorResponse](t, resp).Error, "unknown action")

	resp = postJSON(t, srv, `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestHTTPUnknownSessionEventIsFalse(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.server.Handler())
	defer srv.Close()

	resp := postJSON(t, srv, `{"action":"process event","client":"#999999","widget":"#1","type":"click","data":5}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[bool](t, resp))
}

func TestFlatten(t *testing.T) {
	req := flatten(map[string]any{
		"action": "process event",
		"data":   5.0,
		"flag":   true,
		"none":   nil,
	})
	assert.Equal(t, Request{"action": "process event", "data": "5", "flag": "true"}, req)
}

func TestStatsEndpoint(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.server.Handler())
	defer srv.Close()

	_ = decode[map[string]string](t, postJSON(t, srv, `{"action":"new instance"}`))

	resp, err := http.Get(srv.URL + "/stats")
	require.NoError(t, err)
	stats := decode[map[string]any](t, resp)
	assert.Equal(t, 1.0, stats["sessions"])
	assert.Equal(t, 1.0, stats["requests"])
}
