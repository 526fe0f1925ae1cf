// Package client is a Go SDK for thinui servers. It creates a session, polls
// for instructions, mirrors the widget tree in a View and sends events back.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/thinui/internal/core/ids"
	"github.com/zeusync/thinui/internal/core/instruction"
	"github.com/zeusync/thinui/internal/core/observability/log"
)

// Config holds configuration for the client
type Config struct {
	// Full URL of the action endpoint, e.g. http://localhost:8080/api
	ServerURL string
	// Page requested on every new session; empty means the default page.
	Page string

	PollInterval   time.Duration
	RequestTimeout time.Duration

	LogLevel log.Level
}

// DefaultClientConfig returns default client configuration
func DefaultClientConfig() Config {
	return Config{
		ServerURL:      "http://localhost:8080/api",
		PollInterval:   250 * time.Millisecond,
		RequestTimeout: 10 * time.Second,
		LogLevel:       log.LevelInfo,
	}
}

func (c Config) Validate() error {
	switch {
	case !strings.HasPrefix(c.ServerURL, "http://") && !strings.HasPrefix(c.ServerURL, "https://"):
		return fmt.Errorf("%w: server url %q", ErrInvalidConfig, c.ServerURL)
	case c.PollInterval <= 0:
		return fmt.Errorf("%w: poll interval must be positive", ErrInvalidConfig)
	case c.RequestTimeout <= 0:
		return fmt.Errorf("%w: request timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// ResetHandler is told when the server dropped the session. The view is
// already empty and a new session is being requested.
type ResetHandler func(previous ids.ID)

// Client represents one thinui session seen from the renderer side.
type Client struct {
	config Config
	http   *http.Client
	view   *View

	mu      sync.Mutex
	session ids.ID
	onReset []ResetHandler

	closed atomic.Bool
	resets atomic.Int64
	logger log.Log
}

type Option func(*Client)

func WithLogger(l log.Log) Option {
	return func(c *Client) { c.logger = l }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a new thinui client
func NewClient(config Config, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config: config,
		http:   &http.Client{Timeout: config.RequestTimeout},
		view:   NewView(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.New(config.LogLevel)
	}
	c.logger = c.logger.With(log.String("component", "client"))
	return c, nil
}

func (c *Client) View() *View {
	return c.view
}

// Session returns the current session id, or ids.Invalid.
func (c *Client) Session() ids.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Resets returns how many times the server reset this client.
func (c *Client) Resets() int64 {
	return c.resets.Load()
}

// OnReset registers a handler called after every server reset.
func (c *Client) OnReset(h ResetHandler) {
	c.mu.Lock()
	c.onReset = append(c.onReset, h)
	c.mu.Unlock()
}

// Connect requests a new session.
func (c *Client) Connect(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	if c.Session().Valid() {
		return ErrAlreadyConnected
	}
	return c.connect(ctx)
}

func (c *Client) connect(ctx context.Context) error {
	var res struct {
		ID ids.ID `json:"id"`
	}
	fields := map[string]string{}
	if c.config.Page != "" {
		fields["page"] = c.config.Page
	}
	if err := c.call(ctx, "new instance", fields, &res); err != nil {
		return err
	}
	if !res.ID.Valid() {
		return ErrSessionRefused
	}

	c.mu.Lock()
	c.session = res.ID
	c.mu.Unlock()

	c.logger.Info("Session started", log.Stringer("session", res.ID))
	return nil
}

// Sync pulls pending instructions and applies them to the view. It returns
// the number applied. A reset from the server empties the view and starts a
// new session; the next Sync receives the fresh tree.
func (c *Client) Sync(ctx context.Context) (int, error) {
	session, err := c.current()
	if err != nil {
		return 0, err
	}

	var batch []instruction.Instruction
	if err = c.call(ctx, "synchronize", map[string]string{"client": session.String()}, &batch); err != nil {
		return 0, err
	}

	if len(batch) == 1 && batch[0].Action == instruction.ActionReset {
		return 0, c.reset(ctx, session)
	}

	applied := 0
	for _, in := range batch {
		if err = c.view.Apply(in); err != nil {
			c.logger.Warn("Cannot apply instruction",
				log.Stringer("instruction", in.ID),
				log.Error(err))
			continue
		}
		applied++
	}
	return applied, nil
}

func (c *Client) reset(ctx context.Context, previous ids.ID) error {
	c.resets.Add(1)
	c.view.Reset()

	c.mu.Lock()
	if c.session == previous {
		c.session = ids.Invalid
	}
	handlers := append([]ResetHandler(nil), c.onReset...)
	c.mu.Unlock()

	c.logger.Info("Session reset by server", log.Stringer("session", previous))
	for _, h := range handlers {
		h(previous)
	}
	return c.connect(ctx)
}

// SendEvent forwards an event of a widget the server subscribed to. It
// reports whether the server ran a handler.
func (c *Client) SendEvent(ctx context.Context, widget ids.ID, event, data string) (bool, error) {
	session, err := c.current()
	if err != nil {
		return false, err
	}

	n, ok := c.view.Node(widget)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownWidget, widget)
	}
	if !n.Events[event] {
		return false, fmt.Errorf("%w: %s %q", ErrNotSubscribed, widget, event)
	}

	var handled bool
	err = c.call(ctx, "process event", map[string]string{
		"client": session.String(),
		"widget": widget.String(),
		"type":   event,
		"data":   data,
	}, &handled)
	return handled, err
}

// Kill ends the session on the server.
func (c *Client) Kill(ctx context.Context) (bool, error) {
	session, err := c.current()
	if err != nil {
		return false, err
	}

	var existed bool
	if err = c.call(ctx, "kill", map[string]string{"client": session.String()}, &existed); err != nil {
		return false, err
	}

	c.mu.Lock()
	if c.session == session {
		c.session = ids.Invalid
	}
	c.mu.Unlock()
	c.view.Reset()
	return existed, nil
}

// Run connects if needed and polls until ctx is done. Failed polls are
// logged and retried on the next tick.
func (c *Client) Run(ctx context.Context) error {
	if !c.Session().Valid() {
		if err := c.Connect(ctx); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(c.config.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := c.Sync(ctx); err != nil {
			if errors.Is(err, ErrClientClosed) {
				return err
			}
			if ctx.Err() == nil {
				c.logger.Warn("Poll failed", log.Error(err))
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close kills the session if one is open. Further calls fail with
// ErrClientClosed.
func (c *Client) Close(ctx context.Context) error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.mu.Lock()
	open := c.session.Valid()
	c.mu.Unlock()
	if !open {
		return nil
	}

	var existed bool
	err := c.call(ctx, "kill", map[string]string{"client": c.Session().String()}, &existed)
	c.view.Reset()
	return err
}

func (c *Client) current() (ids.ID, error) {
	if c.closed.Load() {
		return ids.Invalid, ErrClientClosed
	}
	session := c.Session()
	if !session.Valid() {
		return ids.Invalid, ErrNotConnected
	}
	return session, nil
}

func (c *Client) call(ctx context.Context, action string, fields map[string]string, out any) error {
	body := map[string]string{"action": action}
	for k, v := range fields {
		body[k] = v
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.ServerURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRequestFailed, action, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: %s: %s: %s", ErrRequestFailed, action, resp.Status, bytes.TrimSpace(msg))
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: decode: %w", ErrRequestFailed, action, err)
	}
	return nil
}
