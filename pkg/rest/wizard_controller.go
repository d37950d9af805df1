package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/runic/mailman/pkg/rest/model"
	"github.com/runic/mailman/pkg/server/web"
)

// WizardV1 renders the wizard state of the session.
func WizardV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	return web.RenderJSON(w, wizardModel(ctx.Session.Wizard.Snapshot()))
}

// WizardNextV1 advances one step.
func WizardNextV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	ctx.Session.Wizard.Next()
	return WizardV1(w, req, ctx)
}

// WizardPreviousV1 goes back one step.
func WizardPreviousV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	ctx.Session.Wizard.Previous()
	return WizardV1(w, req, ctx)
}

// WizardJumpV1 moves to the step in the URL, 409 if it is not yet reachable.
func WizardJumpV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	i, err := strconv.Atoi(ctx.Vars["index"])
	if err != nil {
		return web.RenderJSONStatus(w, http.StatusBadRequest, &model.JSONErrorV1{Error: err.Error()})
	}
	if !ctx.Session.Wizard.JumpTo(i) {
		return web.RenderJSONStatus(w, http.StatusConflict,
			&model.JSONErrorV1{Error: fmt.Sprintf("step %d is not reachable", i)})
	}
	return WizardV1(w, req, ctx)
}

// WizardDetailsV1 updates server details from a JSON object of field names to values.
func WizardDetailsV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	fields := make(map[string]string)
	if err := json.NewDecoder(req.Body).Decode(&fields); err != nil {
		return web.RenderJSONStatus(w, http.StatusBadRequest,
			&model.JSONErrorV1{Error: "invalid JSON: " + err.Error()})
	}
	// Check every field before applying any.
	details := ctx.Session.Wizard.Details()
	for name, value := range fields {
		if err := details.Set(name, value); err != nil {
			return renderError(w, err)
		}
	}
	for name, value := range fields {
		_ = ctx.Session.Wizard.SetDetail(name, value)
	}
	return WizardV1(w, req, ctx)
}
