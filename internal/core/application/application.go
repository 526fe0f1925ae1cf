// Package application owns the live sessions of a server: the page registry,
// the session directory and the watchdog that expires idle sessions.
package application

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/thinui/internal/core/events/bus"
	"github.com/zeusync/thinui/internal/core/ids"
	"github.com/zeusync/thinui/internal/core/instruction"
	"github.com/zeusync/thinui/internal/core/observability/log"
	"github.com/zeusync/thinui/internal/core/session"
	"github.com/zeusync/thinui/pkg/concurrent"
	"github.com/zeusync/thinui/pkg/sequence"
)

// DefaultPage is the page path used when a request names none.
const DefaultPage = "/"

const shutdownWorkers = 8

type Application struct {
	pagesMx sync.RWMutex
	pages   map[string]session.Page

	clients  *Directory
	requests atomic.Int64

	lifetime time.Duration
	coalesce bool
	shards   int

	logger log.Log
	events bus.EventBus
}

// Stats is a point-in-time snapshot of the application counters.
type Stats struct {
	Sessions int
	Requests int64
}

type Option func(*Application)

// WithLifetime sets the idle lifetime given to new sessions.
func WithLifetime(d time.Duration) Option {
	return func(a *Application) { a.lifetime = d }
}

// WithCoalescing enables setter coalescing for new sessions.
func WithCoalescing(enabled bool) Option {
	return func(a *Application) { a.coalesce = enabled }
}

func WithLogger(l log.Log) Option {
	return func(a *Application) { a.logger = l }
}

// WithEventBus publishes session lifecycle events on b.
func WithEventBus(b bus.EventBus) Option {
	return func(a *Application) { a.events = b }
}

// WithShards sets the number of session directory shards.
func WithShards(n int) Option {
	return func(a *Application) { a.shards = n }
}

func New(opts ...Option) *Application {
	a := &Application{
		pages:    make(map[string]session.Page),
		lifetime: session.DefaultLifetime,
		shards:   defaultShardCount,
		logger:   log.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.clients = NewDirectory(a.shards)
	a.logger = a.logger.With(log.String("component", "application"))
	return a
}

// Register makes page available under path.
func (a *Application) Register(path string, page session.Page) error {
	a.pagesMx.Lock()
	defer a.pagesMx.Unlock()

	if _, exists := a.pages[path]; exists {
		return fmt.Errorf("%w: %s", ErrPageRegistered, path)
	}
	a.pages[path] = page
	return nil
}

// Pages returns the registered page paths.
func (a *Application) Pages() []string {
	a.pagesMx.RLock()
	defer a.pagesMx.RUnlock()

	paths := make([]string, 0, len(a.pages))
	for p := range a.pages {
		paths = append(paths, p)
	}
	return paths
}

// CreateClient starts a session on the page registered under path. An
// empty path selects DefaultPage.
func (a *Application) CreateClient(path string) (ids.ID, error) {
	if path == "" {
		path = DefaultPage
	}

	a.pagesMx.RLock()
	page, ok := a.pages[path]
	a.pagesMx.RUnlock()
	if !ok {
		return ids.Invalid, fmt.Errorf("%w: %s", ErrPageNotFound, path)
	}

	c := session.New(page,
		session.WithLifetime(a.lifetime),
		session.WithCoalescing(a.coalesce),
		session.WithLogger(a.logger),
	)
	a.clients.Store(c)

	a.logger.Info("Client created",
		log.Stringer("client", c.ID()),
		log.String("page", path))
	a.publish(bus.SessionCreated, c.ID(), map[string]any{"page": path})
	return c.ID(), nil
}

// KillClient removes the session and reports whether it existed.
func (a *Application) KillClient(id ids.ID) bool {
	c, ok := a.clients.LoadAndDelete(id)
	if !ok {
		return false
	}
	c.Destroy()

	a.logger.Info("Client killed", log.Stringer("client", id))
	a.publish(bus.SessionKilled, id, nil)
	return true
}

// Synchronize drains the session's pending instructions. An unknown id
// yields a single Reset.
func (a *Application) Synchronize(id ids.ID) []instruction.Instruction {
	c, ok := a.clients.Load(id)
	if !ok {
		return []instruction.Instruction{instruction.Reset()}
	}
	return c.CollectUpdates()
}

// ProcessEvent forwards a renderer event. Unknown sessions are ignored.
func (a *Application) ProcessEvent(id, widget ids.ID, eventType, payload string) bool {
	c, ok := a.clients.Load(id)
	if !ok {
		return false
	}
	return c.HandleEvent(widget, eventType, payload)
}

// Client looks up a live session.
func (a *Application) Client(id ids.ID) (*session.Client, bool) {
	return a.clients.Load(id)
}

// CountRequest adds one to the throughput counter.
func (a *Application) CountRequest() {
	a.requests.Add(1)
}

func (a *Application) Stats() Stats {
	return Stats{
		Sessions: a.clients.Len(),
		Requests: a.requests.Load(),
	}
}

// Shutdown destroys every live session.
func (a *Application) Shutdown() {
	var live []ids.ID
	a.clients.Range(func(c *session.Client) bool {
		live = append(live, c.ID())
		return true
	})
	concurrent.Throttle(sequence.From(live), shutdownWorkers, func(id ids.ID) {
		a.KillClient(id)
	})
}

// expire removes the candidates whose timer is still run out and returns
// their ids. A candidate touched since the sweep survives.
func (a *Application) expire(candidates []ids.ID) []ids.ID {
	var expired []ids.ID
	for _, id := range candidates {
		c, ok := a.clients.Load(id)
		if !ok || !c.Expire() {
			continue
		}
		a.clients.LoadAndDelete(id)
		expired = append(expired, id)

		a.logger.Info("Client expired", log.Stringer("client", id))
		a.publish(bus.SessionExpired, id, nil)
	}
	return expired
}

func (a *Application) drainRequests() int64 {
	return a.requests.Swap(0)
}

func (a *Application) publish(eventType string, id ids.ID, data map[string]any) {
	if a.events == nil {
		return
	}
	if err := a.events.Publish(bus.NewEvent(eventType, id, data)); err != nil {
		a.logger.Warn("Lifecycle handler failed",
			log.String("event", eventType),
			log.Stringer("client", id),
			log.Error(err))
	}
}
