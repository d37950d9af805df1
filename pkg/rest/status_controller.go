package rest

import (
	"net/http"
	"time"

	"github.com/runic/mailman/pkg/config"
	"github.com/runic/mailman/pkg/nav"
	"github.com/runic/mailman/pkg/rest/model"
	"github.com/runic/mailman/pkg/server/web"
)

// NavV1 renders the navigation shell for the path query parameter.
func NavV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	path := req.URL.Query().Get("path")
	items := nav.Items(path)
	m := &model.JSONNavV1{
		Title:  nav.Title(path),
		Footer: nav.Footer(config.Version),
		Items:  make([]*model.JSONNavItemV1, len(items)),
	}
	for i, it := range items {
		m.Items[i] = &model.JSONNavItemV1{Name: it.Name, Path: it.Path, Icon: it.Icon, Active: it.Active}
	}
	return web.RenderJSON(w, m)
}

// StatusV1 renders the service status board.
func StatusV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	return renderStatus(w, ctx)
}

// StatusRefreshV1 refreshes the status board, blocking until the refresh completes.
func StatusRefreshV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	if err := ctx.Board.Refresh(req.Context()); err != nil {
		return renderError(w, err)
	}
	return renderStatus(w, ctx)
}

// StatusRestartV1 runs the restart hook of the named service.
func StatusRestartV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	name := ctx.Vars["name"]
	if err := ctx.Board.Restart(req.Context(), name); err != nil {
		return renderError(w, err)
	}
	return renderService(w, ctx, name)
}

// StatusReloadV1 runs the reload hook of the named service.
func StatusReloadV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	name := ctx.Vars["name"]
	if err := ctx.Board.Reload(req.Context(), name); err != nil {
		return renderError(w, err)
	}
	return renderService(w, ctx, name)
}

// OverviewV1 renders the home page data.
func OverviewV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	o, err := ctx.Board.Overview(req.Context())
	if err != nil {
		return err
	}
	return web.RenderJSON(w, overviewModel(o, time.Now()))
}

func renderStatus(w http.ResponseWriter, ctx *web.Context) error {
	services := ctx.Board.Services()
	m := &model.JSONStatusV1{
		Refreshing: ctx.Board.Refreshing(),
		Services:   make([]*model.JSONServiceStatusV1, len(services)),
	}
	for i, s := range services {
		m.Services[i] = statusModel(s)
	}
	return web.RenderJSON(w, m)
}

func renderService(w http.ResponseWriter, ctx *web.Context, name string) error {
	s, err := ctx.Board.Service(name)
	if err != nil {
		return renderError(w, err)
	}
	return web.RenderJSON(w, statusModel(s))
}
