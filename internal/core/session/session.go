// Package session holds the server-side state of one connected renderer: the
// widget registry, the root of the tree and the idle expiry timer. Every
// method takes the session lock; widget code running inside a session
// callback already holds it.
package session

import (
	"sync"
	"time"

	"github.com/zeusync/thinui/internal/core/ids"
	"github.com/zeusync/thinui/internal/core/instruction"
	"github.com/zeusync/thinui/internal/core/observability/log"
	"github.com/zeusync/thinui/internal/core/widget"
)

const DefaultLifetime = 30 * time.Second

// Page builds the initial widget tree of a new session.
type Page interface {
	Create(root *widget.Widget)
}

// PageFunc adapts a function to Page.
type PageFunc func(root *widget.Widget)

func (f PageFunc) Create(root *widget.Widget) { f(root) }

var _ widget.Owner = (*Client)(nil)

type Client struct {
	mu        sync.Mutex
	queue     sync.Mutex
	id        ids.ID
	widgets   map[ids.ID]*widget.Widget
	root      *widget.Widget
	lifetime  time.Duration
	timer     time.Duration
	coalesce  bool
	destroyed bool
	logger    log.Log
}

type Option func(*Client)

// WithLifetime sets how long the session survives without sync or events.
func WithLifetime(d time.Duration) Option {
	return func(c *Client) { c.lifetime = d }
}

// WithCoalescing drops superseded property setters from each drain.
func WithCoalescing(enabled bool) Option {
	return func(c *Client) { c.coalesce = enabled }
}

func WithLogger(l log.Log) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a session and runs page.Create on its root, so the whole
// initial instruction set is queued when New returns.
func New(page Page, opts ...Option) *Client {
	c := &Client{
		id:       ids.Next(),
		widgets:  make(map[ids.ID]*widget.Widget),
		lifetime: DefaultLifetime,
		logger:   log.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.timer = c.lifetime
	c.logger = c.logger.With(log.Stringer("client", c.id))

	c.mu.Lock()
	defer c.mu.Unlock()
	c.root = widget.NewRoot(c)
	page.Create(c.root)

	c.logger.Debug("Session created", log.Int("widgets", len(c.widgets)))
	return c
}

func (c *Client) ID() ids.ID {
	return c.id
}

// Register implements widget.Owner. The session lock must be held.
func (c *Client) Register(w *widget.Widget) {
	c.widgets[w.ID()] = w
}

// Unregister implements widget.Owner. The session lock must be held.
func (c *Client) Unregister(id ids.ID) {
	delete(c.widgets, id)
}

// QueueLock implements widget.Owner.
func (c *Client) QueueLock() *sync.Mutex {
	return &c.queue
}

// CollectUpdates refreshes the expiry timer and drains every queued
// instruction in creation order. A destroyed session answers with a single
// Reset.
func (c *Client) CollectUpdates() []instruction.Instruction {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return []instruction.Instruction{instruction.Reset()}
	}
	c.timer = c.lifetime

	collector := instruction.NewCollector(instruction.WithCoalescing(c.coalesce))
	c.root.Flush(collector)
	return collector.Result()
}

// HandleEvent refreshes the expiry timer and forwards the event to the
// widget. Unknown widgets are ignored: the renderer may not have seen their
// removal yet. It reports whether a handler ran.
func (c *Client) HandleEvent(widgetID ids.ID, event, payload string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return false
	}
	c.timer = c.lifetime

	w, ok := c.widgets[widgetID]
	if !ok {
		c.logger.Debug("Event for unknown widget",
			log.Stringer("widget", widgetID),
			log.String("event", event))
		return false
	}
	return w.HandleEvent(event, payload)
}

// Update runs fn on the tree under the session lock, for changes that do not
// originate from the renderer. It reports false once the session is gone.
func (c *Client) Update(fn func(root *widget.Widget)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return false
	}
	fn(c.root)
	return true
}

// Lookup finds a registered widget.
func (c *Client) Lookup(id ids.ID) (*widget.Widget, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, ok := c.widgets[id]
	return w, ok
}

// Widgets returns the number of registered widgets.
func (c *Client) Widgets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.widgets)
}

// Tick advances the expiry timer by d and reports whether it ran out.
func (c *Client) Tick(d time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timer -= d
	return c.timer <= 0
}

// Remaining returns the time left before expiry.
func (c *Client) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer
}

// Destroy drops every widget and releases their model bindings. No
// instruction is sent; the renderer is gone.
func (c *Client) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return
	}
	c.destroyLocked()
}

// Expire destroys the session only if its timer is still run out, so a sync
// or event that arrived after the last Tick keeps it alive. It reports
// whether the session was destroyed by this call.
func (c *Client) Expire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed || c.timer > 0 {
		return false
	}
	c.destroyLocked()
	return true
}

func (c *Client) destroyLocked() {
	c.destroyed = true
	for _, w := range c.widgets {
		w.Release()
	}
	c.widgets = nil
	c.root = nil

	c.logger.Debug("Session destroyed")
}

func (c *Client) Destroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}
