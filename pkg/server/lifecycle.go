// Package server wires together the Runic Mailman services.
package server

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/runic/mailman/pkg/activity"
	"github.com/runic/mailman/pkg/catalog"
	"github.com/runic/mailman/pkg/catalog/mem"
	"github.com/runic/mailman/pkg/config"
	"github.com/runic/mailman/pkg/dashboard"
	"github.com/runic/mailman/pkg/editor"
	"github.com/runic/mailman/pkg/extension"
	"github.com/runic/mailman/pkg/extension/luahost"
	"github.com/runic/mailman/pkg/rest"
	"github.com/runic/mailman/pkg/server/web"
	"github.com/runic/mailman/pkg/session"
	"github.com/runic/mailman/pkg/stringutil"
	"github.com/runic/mailman/pkg/webui"
	"github.com/runic/mailman/pkg/wizard"
)

// Services holds the configured services.
type Services struct {
	ExtHost   *extension.Host
	LuaHost   *luahost.Host // Nil when no script is configured.
	Catalog   catalog.Store
	Board     *dashboard.Board
	Activity  *activity.Hub
	Sessions  *session.Registry
	Reaper    *session.Reaper
	WebServer *web.Server
}

// FullAssembly wires up a complete Runic Mailman environment.  Nothing is started.
func FullAssembly(conf *config.Root) (*Services, error) {
	// Configure extensions.
	extHost := extension.NewHost()
	luaHost, err := luahost.New(conf.Lua, extHost)
	if err != nil {
		return nil, err
	}

	// Configure the config file catalogue.
	seed, err := catalog.LoadSeed(conf.Catalog.SeedFile)
	if err != nil {
		return nil, err
	}
	store := mem.New(seed, extHost)

	hub := activity.New(conf.Web.ActivityHistory, extHost, activity.SeedItems(time.Now())...)
	board := dashboard.NewBoard(conf.Dashboard.RefreshDelay, extHost, dashboard.WithActivity(hub))

	// Every browser session gets its own wizard and editor, sharing one backend.
	backend := &editor.MockBackend{
		Store:        store,
		ExtHost:      extHost,
		SaveDelay:    conf.Editor.SaveDelay,
		RestartDelay: conf.Editor.RestartDelay,
	}
	registry := session.NewRegistry(func(id string) (*wizard.Wizard, *editor.Editor) {
		ed := editor.New(store, backend, conf.Editor.SuccessWindow).
			WithLogger(log.With().Str("module", "editor").Str("session", id).Logger())
		return wizard.New(wizard.DefaultServerDetails(conf.Wizard)), ed
	}, session.WithLimit(conf.Session.MaxSessions))
	reaper := session.NewReaper(conf.Session, registry)

	// Configure routes.
	webServer := web.NewServer(conf, web.Services{
		Config:    conf,
		Catalog:   store,
		Board:     board,
		Activity:  hub,
		Sessions:  registry,
		Templates: webui.Templates(true),
	})
	prefix := stringutil.MakePathPrefixer(conf.Web.BasePath)
	rest.SetupRoutes(webServer.Router.PathPrefix(prefix("/api/")).Subrouter())
	webui.SetupRoutes(webServer.Router.PathPrefix(prefix("/")).Subrouter(), conf.Web)

	return &Services{
		ExtHost:   extHost,
		LuaHost:   luaHost,
		Catalog:   store,
		Board:     board,
		Activity:  hub,
		Sessions:  registry,
		Reaper:    reaper,
		WebServer: webServer,
	}, nil
}

// Start all services, returns immediately.  Callers may use Notify to detect failed services.
func (s *Services) Start(ctx context.Context, readyFunc func()) {
	go s.Activity.Start(ctx)
	s.Reaper.Start(ctx)
	go s.WebServer.Start(ctx, readyFunc)
}

// Notify merges the error notification channels of all fallible services, allowing the process to
// be shutdown if needed.
func (s *Services) Notify() <-chan error {
	return s.WebServer.Notify()
}

// Drain waits for background services, and any extension listeners still running, to finish after
// the context passed to Start is canceled.
func (s *Services) Drain() {
	s.Reaper.Join()
	s.ExtHost.Wait()
}
