package server

import (
	"context"
	"fmt"
	"sort"

	"github.com/zeusync/thinui/internal/core/application"
	"github.com/zeusync/thinui/internal/core/ids"
	"github.com/zeusync/thinui/internal/core/observability/log"
)

// Action names understood by the dispatcher.
const (
	ActionNewInstance  = "new instance"
	ActionSynchronize  = "synchronize"
	ActionProcessEvent = "process event"
	ActionKill         = "kill"
)

// Request field names.
const (
	FieldAction = "action"
	FieldClient = "client"
	FieldWidget = "widget"
	FieldType   = "type"
	FieldData   = "data"
	FieldPage   = "page"
)

// Request is one inbound call: the action name plus flat string fields.
type Request map[string]string

func (r Request) Action() string {
	return r[FieldAction]
}

func (r Request) Get(key string) string {
	return r[key]
}

// ID parses an id field. Missing or malformed values yield ids.Invalid.
func (r Request) ID(key string) ids.ID {
	return ids.Parse(r[key])
}

// NewInstanceResult is the answer to "new instance".
type NewInstanceResult struct {
	ID ids.ID `json:"id"`
}

// Action translates a request into an Application call. Handlers absorb
// request-level failures into their result.
type Action interface {
	Name() string
	Handle(ctx context.Context, req Request) any
}

type newInstanceAction struct {
	app    *application.Application
	logger log.Log
}

func (a *newInstanceAction) Name() string { return ActionNewInstance }

func (a *newInstanceAction) Handle(_ context.Context, req Request) any {
	id, err := a.app.CreateClient(req.Get(FieldPage))
	if err != nil {
		a.logger.Warn("Cannot create client",
			log.String("page", req.Get(FieldPage)),
			log.Error(err))
	}
	return NewInstanceResult{ID: id}
}

type synchronizeAction struct {
	app *application.Application
}

func (a *synchronizeAction) Name() string { return ActionSynchronize }

func (a *synchronizeAction) Handle(_ context.Context, req Request) any {
	return a.app.Synchronize(req.ID(FieldClient))
}

type processEventAction struct {
	app    *application.Application
	logger log.Log
}

func (a *processEventAction) Name() string { return ActionProcessEvent }

func (a *processEventAction) Handle(_ context.Context, req Request) any {
	client, widget, typ := req.ID(FieldClient), req.ID(FieldWidget), req.Get(FieldType)
	if !client.Valid() || !widget.Valid() || typ == "" {
		a.logger.Debug("Malformed event request",
			log.String("client", req.Get(FieldClient)),
			log.String("widget", req.Get(FieldWidget)),
			log.String("type", typ))
		return false
	}
	return a.app.ProcessEvent(client, widget, typ, req.Get(FieldData))
}

type killAction struct {
	app *application.Application
}

func (a *killAction) Name() string { return ActionKill }

func (a *killAction) Handle(_ context.Context, req Request) any {
	return a.app.KillClient(req.ID(FieldClient))
}

// Dispatcher routes requests to actions by name and counts them for the
// watchdog throughput report.
type Dispatcher struct {
	app     *application.Application
	actions map[string]Action
	logger  log.Log
}

// NewDispatcher registers the four standard actions.
func NewDispatcher(app *application.Application, logger log.Log) *Dispatcher {
	logger = logger.With(log.String("component", "dispatcher"))
	d := &Dispatcher{
		app:     app,
		actions: make(map[string]Action),
		logger:  logger,
	}
	d.Register(&newInstanceAction{app: app, logger: logger})
	d.Register(&synchronizeAction{app: app})
	d.Register(&processEventAction{app: app, logger: logger})
	d.Register(&killAction{app: app})
	return d
}

// Register adds or replaces an action.
func (d *Dispatcher) Register(a Action) {
	d.actions[a.Name()] = a
}

// Actions lists the registered action names.
func (d *Dispatcher) Actions() []string {
	names := make([]string, 0, len(d.actions))
	for name := range d.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs the action named by req. Only a missing or unknown action
// name is reported as an error.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (any, error) {
	name := req.Action()
	if name == "" {
		return nil, ErrMissingAction
	}
	a, ok := d.actions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}

	d.app.CountRequest()
	return a.Handle(ctx, req), nil
}
