package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/zeusync/thinui/internal/core/observability/log"
)

const maxRequestBody = 64 << 10

type errorResponse struct {
	Error string `json:"error"`
}

// HTTPHandler serves the action endpoint. POST bodies may be JSON objects or
// form-encoded; GET requests carry the fields in the query string.
type HTTPHandler struct {
	dispatcher *Dispatcher
	logger     log.Log
}

func NewHTTPHandler(d *Dispatcher, logger log.Log) *HTTPHandler {
	return &HTTPHandler{
		dispatcher: d,
		logger:     logger.With(log.String("component", "http")),
	}
}

func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(w, r)
	if err != nil {
		if errors.Is(err, errMethod) {
			w.Header().Set("Allow", "GET, POST")
			writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := h.dispatcher.Dispatch(r.Context(), req)
	if err != nil {
		h.logger.Debug("Rejected request",
			log.String("action", req.Action()),
			log.String("remote", r.RemoteAddr),
			log.Error(err))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

var errMethod = errors.New("method not allowed")

func decodeRequest(w http.ResponseWriter, r *http.Request) (Request, error) {
	switch r.Method {
	case http.MethodGet:
		return valuesRequest(r.URL.Query()), nil
	case http.MethodPost:
	default:
		return nil, errMethod
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		return flatten(raw), nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return valuesRequest(r.Form), nil
}

func valuesRequest(values map[string][]string) Request {
	req := make(Request, len(values))
	for k, v := range values {
		if len(v) > 0 {
			req[k] = v[0]
		}
	}
	return req
}

// flatten turns decoded JSON fields into strings. Non-string scalars keep
// their JSON text, so {"data": 5} reads as "5".
func flatten(raw map[string]any) Request {
	req := make(Request, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case nil:
		case string:
			req[k] = v
		default:
			b, err := json.Marshal(v)
			if err == nil {
				req[k] = string(b)
			}
		}
	}
	return req
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
