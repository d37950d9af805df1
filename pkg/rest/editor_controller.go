package rest

import (
	"io"
	"net/http"

	"github.com/runic/mailman/pkg/rest/model"
	"github.com/runic/mailman/pkg/server/web"
)

// maxBufferSize limits the size of an uploaded edit buffer.
const maxBufferSize = 1 << 20

// ServicesV1 lists the editor services.
func ServicesV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	services := ctx.Catalog.Services()
	m := make([]*model.JSONServiceV1, len(services))
	for i, s := range services {
		m[i] = &model.JSONServiceV1{ID: s.ID, Name: s.Name}
	}
	return web.RenderJSON(w, m)
}

// ServiceFilesV1 lists the config files of a service.
func ServiceFilesV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	files, err := ctx.Catalog.Files(ctx.Vars["service"])
	if err != nil {
		return renderError(w, err)
	}
	m := make([]*model.JSONFileHeaderV1, len(files))
	for i, f := range files {
		m[i] = fileHeaderModel(f)
	}
	return web.RenderJSON(w, m)
}

// ServiceFileV1 renders a stored config file.
func ServiceFileV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	f, err := ctx.Catalog.File(ctx.Vars["service"], ctx.Vars["name"])
	if err != nil {
		return renderError(w, err)
	}
	return web.RenderJSON(w, fileModel(f))
}

// EditorV1 renders the editor state of the session.
func EditorV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	st, err := ctx.Session.Editor.State()
	if err != nil {
		return renderError(w, err)
	}
	return web.RenderJSON(w, editorModel(st))
}

// EditorServiceV1 selects a service.
func EditorServiceV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	if err := ctx.Session.Editor.SelectService(ctx.Vars["service"]); err != nil {
		return renderError(w, err)
	}
	return EditorV1(w, req, ctx)
}

// EditorFileV1 selects a file of the active service.
func EditorFileV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	if err := ctx.Session.Editor.SelectFile(ctx.Vars["name"]); err != nil {
		return renderError(w, err)
	}
	return EditorV1(w, req, ctx)
}

// EditorBufferV1 replaces the edit buffer with the request body.
func EditorBufferV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxBufferSize))
	if err != nil {
		return web.RenderJSONStatus(w, http.StatusRequestEntityTooLarge,
			&model.JSONErrorV1{Error: err.Error()})
	}
	ctx.Session.Editor.EditBuffer(string(body))
	return EditorV1(w, req, ctx)
}

// EditorValidateV1 validates the buffer, 422 on failure.
func EditorValidateV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	if err := ctx.Session.Editor.Validate(); err != nil {
		return renderError(w, err)
	}
	return EditorV1(w, req, ctx)
}

// EditorSaveV1 saves the buffer, blocking until the backend completes.
func EditorSaveV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	if err := ctx.Session.Editor.Save(req.Context()); err != nil {
		return renderError(w, err)
	}
	return EditorV1(w, req, ctx)
}

// EditorRestartV1 restarts the active service, blocking until the backend completes.
func EditorRestartV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	if err := ctx.Session.Editor.Restart(req.Context()); err != nil {
		return renderError(w, err)
	}
	return EditorV1(w, req, ctx)
}
