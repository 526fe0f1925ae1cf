// Package injector assembles a Server from its configuration and pages.
package injector

import (
	"fmt"

	"github.com/google/wire"

	"github.com/zeusync/thinui/internal/core/application"
	"github.com/zeusync/thinui/internal/core/events/bus"
	"github.com/zeusync/thinui/internal/core/observability/log"
	"github.com/zeusync/thinui/internal/core/session"
	"github.com/zeusync/thinui/internal/server"
)

// Pages maps request page paths to page builders.
type Pages map[string]session.Page

var ServerSet = wire.NewSet(
	ProvideLogger,
	bus.New,
	ProvideApplication,
	ProvideWatchdog,
	ProvideDispatcher,
	ProvideServer,
)

func ProvideLogger(cfg server.Config) log.Log {
	return log.New(cfg.LogLevel())
}

func ProvideApplication(cfg server.Config, pages Pages, events bus.EventBus, logger log.Log) (*application.Application, error) {
	app := application.New(
		application.WithLifetime(cfg.Session.Lifetime),
		application.WithCoalescing(cfg.Session.CoalesceUpdates),
		application.WithEventBus(events),
		application.WithLogger(logger),
	)
	for path, page := range pages {
		if err := app.Register(path, page); err != nil {
			return nil, fmt.Errorf("register page: %w", err)
		}
	}
	return app, nil
}

func ProvideWatchdog(cfg server.Config, app *application.Application, logger log.Log) *application.Watchdog {
	return application.NewWatchdog(app,
		application.WithPeriod(cfg.Watchdog.Period),
		application.WithReportInterval(cfg.Watchdog.ReportInterval),
		application.WithWatchdogLogger(logger),
	)
}

func ProvideDispatcher(app *application.Application, logger log.Log) *server.Dispatcher {
	return server.NewDispatcher(app, logger)
}

func ProvideServer(cfg server.Config, app *application.Application, watchdog *application.Watchdog,
	dispatcher *server.Dispatcher, events bus.EventBus, logger log.Log,
) *server.Server {
	return server.New(cfg, app, watchdog, dispatcher, events, logger)
}
