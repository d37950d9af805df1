package webui

import (
	"errors"
	"net/http"

	"github.com/runic/mailman/pkg/action"
	"github.com/runic/mailman/pkg/dashboard"
	"github.com/runic/mailman/pkg/server/web"
	"github.com/runic/mailman/pkg/wizard"
)

// RootIndex serves the dashboard home page.
func RootIndex(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	overview, err := ctx.Board.Overview(req.Context())
	if err != nil {
		return err
	}
	p, err := newPage(w, req, ctx, "/")
	if err != nil {
		return err
	}
	snap := ctx.Session.Wizard.Snapshot()
	return ctx.Templates.Render(w, "home.html", struct {
		page
		Overview dashboard.Overview
		Wizard   wizard.Snapshot
		Complete bool
	}{p, overview, snap, snap.Current == wizard.StepCount-1})
}

// RootMonitoring serves the service status board.
func RootMonitoring(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	p, err := newPage(w, req, ctx, "/monitoring")
	if err != nil {
		return err
	}
	return ctx.Templates.Render(w, "monitoring.html", struct {
		page
		Services   []dashboard.ServiceStatus
		Refreshing bool
	}{p, ctx.Board.Services(), ctx.Board.Refreshing()})
}

// RootPlaceholder serves the navigation targets that have no page yet.
func RootPlaceholder(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	p, err := newPage(w, req, ctx, req.URL.Path[len(basePath(ctx)):])
	if err != nil {
		return err
	}
	return ctx.Templates.Render(w, "placeholder.html", p)
}

// StatusRefresh refreshes the status board, then returns to the monitoring page.
func StatusRefresh(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	switch err := ctx.Board.Refresh(req.Context()); {
	case errors.Is(err, action.ErrBusy):
		ctx.AddFlash(web.FlashError, "A status refresh is already in progress")
	case err != nil:
		return err
	default:
		ctx.AddFlash(web.FlashSuccess, "Service status refreshed")
	}
	return redirect(w, req, ctx, "/monitoring")
}

// StatusRestart runs the restart hook of the named service.
func StatusRestart(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	name := ctx.Vars["name"]
	return statusAction(w, req, ctx, ctx.Board.Restart(req.Context(), name),
		"Restart requested for "+name)
}

// StatusReload runs the reload hook of the named service.
func StatusReload(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	name := ctx.Vars["name"]
	return statusAction(w, req, ctx, ctx.Board.Reload(req.Context(), name),
		"Reload requested for "+name)
}

func statusAction(w http.ResponseWriter, req *http.Request, ctx *web.Context, err error,
	success string) error {
	if errors.Is(err, dashboard.ErrUnknownService) {
		return &web.StatusError{Code: http.StatusNotFound, Err: err}
	}
	if err != nil {
		ctx.AddFlash(web.FlashError, err.Error())
	} else {
		ctx.AddFlash(web.FlashSuccess, success)
	}
	return redirect(w, req, ctx, "/monitoring")
}
