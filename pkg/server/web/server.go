// Package web provides the plumbing for the Runic Mailman web UI and RESTful API.
package web

import (
	"context"
	"errors"
	"expvar"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"

	"github.com/runic/mailman/pkg/activity"
	"github.com/runic/mailman/pkg/catalog"
	"github.com/runic/mailman/pkg/config"
	"github.com/runic/mailman/pkg/dashboard"
	"github.com/runic/mailman/pkg/metric"
	"github.com/runic/mailman/pkg/session"
)

var (
	// ExpWebSocketConnectsCurrent tracks the number of open WebSockets.
	ExpWebSocketConnectsCurrent = new(expvar.Int)

	expRequests *metric.Counter
)

func init() {
	m := expvar.NewMap("http")
	m.Set("WebSocketConnectsCurrent", ExpWebSocketConnectsCurrent)
	expRequests = metric.NewCounter(m, "Requests")
}

// Services are the shared objects made available to every request handler.
type Services struct {
	Config    *config.Root
	Catalog   catalog.Store
	Board     *dashboard.Board
	Activity  *activity.Hub
	Sessions  *session.Registry
	Templates *Templates

	cookies sessions.Store
}

// Server defines an instance of the HTTP server.
type Server struct {
	// Router sends incoming requests to the correct handler function.
	Router   *mux.Router
	services *Services
	http     *http.Server
	listener net.Listener
	notify   chan error
}

// NewServer sets up things for unit tests or the Start() method.
func NewServer(conf *config.Root, svcs Services) *Server {
	logger := log.With().Str("module", "web").Str("phase", "startup").Logger()

	// Session cookie setup.
	var store *sessions.CookieStore
	if conf.Web.CookieAuthKey == "" {
		logger.Info().Msg("Generating random cookie.auth.key")
		store = sessions.NewCookieStore(securecookie.GenerateRandomKey(64))
	} else {
		logger.Debug().Msg("Using configured cookie.auth.key")
		store = sessions.NewCookieStore([]byte(conf.Web.CookieAuthKey))
	}
	store.Options.Path = "/"
	store.Options.MaxAge = 0
	store.Options.HttpOnly = true
	store.Options.Secure = conf.Web.CookieSecure
	store.Options.SameSite = http.SameSiteLaxMode
	svcs.cookies = store
	if svcs.Config == nil {
		svcs.Config = conf
	}

	router := mux.NewRouter()
	router.NotFoundHandler = noMatchHandler(http.StatusNotFound, "No route matches URI path")
	router.MethodNotAllowedHandler = noMatchHandler(http.StatusMethodNotAllowed,
		"Method not allowed for URI path")

	return &Server{
		Router:   router,
		services: &svcs,
		notify:   make(chan error, 1),
	}
}

// Handler returns the root handler of the server: request logging and service injection wrapped
// around the router.
func (s *Server) Handler() http.Handler {
	return requestLoggingWrapper(servicesWrapper(s.services, s.Router))
}

// Start begins listening for HTTP requests, blocking until ctx is cancelled.  readyFunc is called
// once the listener is open.
func (s *Server) Start(ctx context.Context, readyFunc func()) {
	addr := s.services.Config.Web.Addr
	slog := log.With().Str("module", "web").Str("phase", "startup").Str("addr", addr).Logger()
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	// We don't use ListenAndServe because it lacks a way to close the listener.
	slog.Info().Msg("HTTP listening on tcp4")
	var err error
	s.listener, err = net.Listen("tcp", addr)
	if err != nil {
		slog.Error().Err(err).Msg("HTTP failed to start TCP4 listener")
		s.notify <- err
		close(s.notify)
		return
	}

	if readyFunc != nil {
		readyFunc()
	}

	// Listener go routine.
	go s.serve(ctx)

	// Wait for shutdown.
	<-ctx.Done()
	log.Debug().Str("module", "web").Str("phase", "shutdown").Msg("HTTP server shutting down on request")

	// Shutdown closes the listener, causing the serve() go routine to exit.
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(sctx); err != nil {
		log.Error().Str("module", "web").Str("phase", "shutdown").Err(err).
			Msg("Failed to shut down HTTP server")
	}
}

// serve begins serving HTTP requests.
func (s *Server) serve(ctx context.Context) {
	// server.Serve blocks until we close the listener.
	err := s.http.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) || ctx.Err() != nil {
		return
	}
	log.Error().Str("module", "web").Str("phase", "runtime").Err(err).Msg("HTTP server failed")
	s.notify <- err
	close(s.notify)
}

// Notify allows the running HTTP server to report a fatal error.
func (s *Server) Notify() <-chan error {
	return s.notify
}
