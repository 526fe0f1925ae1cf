package application

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/thinui/internal/core/ids"
	"github.com/zeusync/thinui/internal/core/observability/log"
	"github.com/zeusync/thinui/internal/core/session"
)

const (
	DefaultWatchdogPeriod = 100 * time.Millisecond
	DefaultReportInterval = time.Minute
)

// Watchdog periodically ages every session by one period, expires those that
// ran out and reports request throughput once per report interval.
type Watchdog struct {
	app            *Application
	period         time.Duration
	reportInterval time.Duration

	mx      sync.Mutex
	elapsed time.Duration

	running atomic.Bool
	logger  log.Log
}

type WatchdogOption func(*Watchdog)

func WithPeriod(d time.Duration) WatchdogOption {
	return func(w *Watchdog) { w.period = d }
}

func WithReportInterval(d time.Duration) WatchdogOption {
	return func(w *Watchdog) { w.reportInterval = d }
}

func WithWatchdogLogger(l log.Log) WatchdogOption {
	return func(w *Watchdog) { w.logger = l }
}

func NewWatchdog(app *Application, opts ...WatchdogOption) *Watchdog {
	w := &Watchdog{
		app:            app,
		period:         DefaultWatchdogPeriod,
		reportInterval: DefaultReportInterval,
		logger:         log.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With(log.String("component", "watchdog"))
	return w
}

func (w *Watchdog) Period() time.Duration {
	return w.period
}

// Run ticks every period until ctx is done.
func (w *Watchdog) Run(ctx context.Context) error {
	if w.period <= 0 {
		return ErrInvalidPeriod
	}
	if !w.running.CompareAndSwap(false, true) {
		return ErrWatchdogRunning
	}
	defer w.running.Store(false)

	ticker := time.NewTicker(w.period)
	defer ticker.Stop()

	w.logger.Info("Watchdog started",
		log.Duration("period", w.period),
		log.Duration("report_interval", w.reportInterval))

	for {
		select {
		case <-ticker.C:
			w.Tick()
		case <-ctx.Done():
			w.logger.Info("Watchdog stopped")
			return nil
		}
	}
}

// Tick performs one sweep and returns the ids it expired.
func (w *Watchdog) Tick() []ids.ID {
	var candidates []ids.ID
	w.app.clients.Range(func(c *session.Client) bool {
		if c.Tick(w.period) {
			candidates = append(candidates, c.ID())
		}
		return true
	})
	expired := w.app.expire(candidates)

	w.mx.Lock()
	w.elapsed += w.period
	report := w.reportInterval > 0 && w.elapsed >= w.reportInterval
	interval := w.elapsed
	if report {
		w.elapsed = 0
	}
	w.mx.Unlock()

	if report {
		w.report(interval)
	}
	return expired
}

func (w *Watchdog) report(interval time.Duration) {
	requests := w.app.drainRequests()
	rate := float64(requests) / interval.Seconds()

	w.logger.Info("Throughput",
		log.Int64("requests", requests),
		log.Duration("interval", interval),
		log.Float64("rate", rate),
		log.Int("sessions", w.app.clients.Len()))
}
