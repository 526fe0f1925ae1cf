package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/thinui/internal/core/application"
	"github.com/zeusync/thinui/internal/core/events/bus"
	"github.com/zeusync/thinui/internal/core/observability/log"
)

const shutdownTimeout = 5 * time.Second

// Server exposes an Application over HTTP, WebSocket and optionally HTTP/3,
// and drives its watchdog.
type Server struct {
	config     Config
	app        *application.Application
	watchdog   *application.Watchdog
	dispatcher *Dispatcher
	events     bus.EventBus
	logger     log.Log

	running atomic.Bool
	addr    atomic.Value // string
}

// New wires a server. events may be nil.
func New(config Config, app *application.Application, watchdog *application.Watchdog,
	dispatcher *Dispatcher, events bus.EventBus, logger log.Log,
) *Server {
	return &Server{
		config:     config,
		app:        app,
		watchdog:   watchdog,
		dispatcher: dispatcher,
		events:     events,
		logger:     logger.With(log.String("component", "server")),
	}
}

func (s *Server) Application() *application.Application {
	return s.app
}

// Addr returns the bound HTTP address once Run is listening.
func (s *Server) Addr() string {
	addr, _ := s.addr.Load().(string)
	return addr
}

// Handler returns the HTTP routes: the action endpoint, the WebSocket
// endpoint and /stats.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(s.config.Server.Path, NewHTTPHandler(s.dispatcher, s.logger))
	if s.config.Server.WebSocketPath != "" {
		mux.Handle(s.config.Server.WebSocketPath, NewWebSocketHandler(s.dispatcher, s.logger))
	}
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		stats := s.app.Stats()
		writeJSON(w, http.StatusOK, map[string]any{
			"sessions": stats.Sessions,
			"requests": stats.Requests,
			"actions":  s.dispatcher.Actions(),
		})
	})
	return mux
}

// Run serves until ctx is cancelled or a listener fails, then shuts down
// every listener and destroys the remaining sessions.
func (s *Server) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}
	defer s.running.Store(false)

	ln, err := net.Listen("tcp", s.config.Server.Listen)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}
	s.addr.Store(ln.Addr().String())

	unsubscribe := s.logLifecycle()
	defer unsubscribe()

	handler := s.Handler()
	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var h3 *http3.Server
	if s.config.Server.HTTP3.Listen != "" {
		tlsConfig, err := loadTLSConfig(s.config.Server.HTTP3.CertFile, s.config.Server.HTTP3.KeyFile)
		if err != nil {
			_ = ln.Close()
			return err
		}
		h3 = &http3.Server{
			Addr:      s.config.Server.HTTP3.Listen,
			Handler:   handler,
			TLSConfig: http3.ConfigureTLSConfig(tlsConfig),
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Server listening",
			log.String("addr", ln.Addr().String()),
			log.String("path", s.config.Server.Path),
			log.String("websocket_path", s.config.Server.WebSocketPath))
		if err := httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})

	if h3 != nil {
		g.Go(func() error {
			s.logger.Info("HTTP/3 listening", log.String("addr", h3.Addr))
			err := h3.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, quic.ErrServerClosed) {
				return fmt.Errorf("http3: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		return s.watchdog.Run(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("Stopping server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		if h3 != nil {
			err = errors.Join(err, h3.Close())
		}
		s.app.Shutdown()
		return err
	})

	err = g.Wait()
	s.logger.Info("Server stopped")
	return err
}

func (s *Server) logLifecycle() func() {
	if s.events == nil {
		return func() {}
	}

	var subs []bus.Subscription
	for _, typ := range []string{bus.SessionCreated, bus.SessionKilled, bus.SessionExpired} {
		sub, err := s.events.Subscribe(typ, func(e bus.Event) error {
			s.logger.Debug("Session lifecycle",
				log.String("event", e.Type),
				log.Stringer("client", e.Session),
				log.Int("sessions", s.app.Stats().Sessions))
			return nil
		})
		if err != nil {
			s.logger.Warn("Cannot subscribe to lifecycle events", log.Error(err))
			continue
		}
		s.logger.Debug("Subscribed to lifecycle events",
			log.String("event", typ),
			log.String("subscription", sub.ID()))
		subs = append(subs, sub)
	}

	return func() {
		for _, sub := range subs {
			if err := s.events.Unsubscribe(sub); err != nil {
				s.logger.Warn("Cannot unsubscribe from lifecycle events",
					log.String("event", sub.EventType()),
					log.String("subscription", sub.ID()),
					log.Error(err))
			}
		}
	}
}
