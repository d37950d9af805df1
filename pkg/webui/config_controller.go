package webui

import (
	"errors"
	"net/http"
	"strings"

	"github.com/runic/mailman/pkg/action"
	"github.com/runic/mailman/pkg/catalog"
	"github.com/runic/mailman/pkg/editor"
	"github.com/runic/mailman/pkg/server/web"
)

// ConfigShow renders the configuration editor.  The service and file query parameters select a
// service and file before rendering, so editor links can be bookmarked.
func ConfigShow(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	ed := ctx.Session.Editor
	q := req.URL.Query()
	if service := q.Get("service"); service != "" {
		current, _ := ed.Selection()
		if service != current {
			if err := ed.SelectService(service); err != nil {
				return configError(err)
			}
		}
	}
	if file := q.Get("file"); file != "" {
		if _, current := ed.Selection(); file != current {
			if err := ed.SelectFile(file); err != nil {
				return configError(err)
			}
		}
	}

	state, err := ed.State()
	if err != nil {
		return err
	}
	p, err := newPage(w, req, ctx, "/config")
	if err != nil {
		return err
	}
	return ctx.Templates.Render(w, "config.html", struct {
		page
		Editor editor.State
	}{p, state})
}

// ConfigService selects the posted service.
func ConfigService(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	if err := ctx.Session.Editor.SelectService(req.FormValue("service")); err != nil {
		return configError(err)
	}
	return redirect(w, req, ctx, "/config")
}

// ConfigFile selects the posted file of the active service.
func ConfigFile(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	if err := ctx.Session.Editor.SelectFile(req.FormValue("file")); err != nil {
		return configError(err)
	}
	return redirect(w, req, ctx, "/config")
}

// ConfigBuffer stores the posted buffer without validating it.
func ConfigBuffer(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	storeBuffer(req, ctx.Session.Editor)
	return redirect(w, req, ctx, "/config")
}

// ConfigValidate stores the posted buffer and validates it.  A failure is shown inline through the
// editor state.
func ConfigValidate(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	ed := ctx.Session.Editor
	storeBuffer(req, ed)
	if err := ed.Validate(); err == nil {
		ctx.AddFlash(web.FlashSuccess, "Configuration is valid")
	}
	return redirect(w, req, ctx, "/config")
}

// ConfigSave stores the posted buffer and saves it through the backend.
func ConfigSave(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	ed := ctx.Session.Editor
	storeBuffer(req, ed)
	var verr *editor.ValidationError
	switch err := ed.Save(req.Context()); {
	case errors.As(err, &verr):
		// Shown through the editor state.
	case errors.Is(err, action.ErrBusy):
		ctx.AddFlash(web.FlashError, "A save is already in progress")
	case errors.Is(err, editor.ErrNoFile):
		ctx.AddFlash(web.FlashError, "Select a configuration file first")
	case err != nil:
		ctx.AddFlash(web.FlashError, "Save failed: "+err.Error())
	}
	return redirect(w, req, ctx, "/config")
}

// ConfigRestart keeps any posted buffer, then restarts the active service.
func ConfigRestart(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	storeBuffer(req, ctx.Session.Editor)
	switch err := ctx.Session.Editor.Restart(req.Context()); {
	case errors.Is(err, action.ErrBusy):
		ctx.AddFlash(web.FlashError, "A restart is already in progress")
	case err != nil:
		ctx.AddFlash(web.FlashError, "Restart failed: "+err.Error())
	default:
		service, _ := ctx.Session.Editor.Selection()
		ctx.AddFlash(web.FlashSuccess, "Service "+service+" restarted")
	}
	return redirect(w, req, ctx, "/config")
}

// storeBuffer copies a posted content field into the editor buffer.  Browsers submit textarea
// line breaks as CRLF.
func storeBuffer(req *http.Request, ed *editor.Editor) {
	if err := req.ParseForm(); err != nil {
		return
	}
	if content, ok := req.PostForm["content"]; ok && len(content) > 0 {
		ed.EditBuffer(strings.ReplaceAll(content[0], "\r\n", "\n"))
	}
}

func configError(err error) error {
	if errors.Is(err, editor.ErrUnknownService) || errors.Is(err, catalog.ErrNotExist) {
		return &web.StatusError{Code: http.StatusNotFound, Err: err}
	}
	return err
}
