package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/zeusync/thinui/internal/core/observability/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Frame is the reply to one WebSocket request frame. Ref echoes the
// request's "ref" field so the peer can match replies.
type Frame struct {
	Ref    string `json:"ref,omitempty"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// WebSocketHandler carries the action protocol over a WebSocket: each text
// frame is a JSON request object, answered by one Frame in order.
type WebSocketHandler struct {
	dispatcher *Dispatcher
	logger     log.Log
}

func NewWebSocketHandler(d *Dispatcher, logger log.Log) *WebSocketHandler {
	return &WebSocketHandler{
		dispatcher: d,
		logger:     logger.With(log.String("component", "websocket")),
	}
}

func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("Upgrade failed", log.String("remote", r.RemoteAddr), log.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()
	conn.SetReadLimit(maxRequestBody)

	logger := h.logger.With(log.String("remote", conn.RemoteAddr().String()))
	logger.Debug("Connection opened")

	for {
		var raw map[string]any
		if err = conn.ReadJSON(&raw); err != nil {
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				_ = conn.WriteJSON(Frame{Error: ErrInvalidRequest.Error()})
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("Connection lost", log.Error(err))
			}
			return
		}

		req := flatten(raw)
		frame := Frame{Ref: req.Get("ref")}
		result, err := h.dispatcher.Dispatch(r.Context(), req)
		if err != nil {
			frame.Error = err.Error()
		} else {
			frame.Result = result
		}

		if err = conn.WriteJSON(frame); err != nil {
			logger.Debug("Write failed", log.Error(err))
			return
		}
	}
}
