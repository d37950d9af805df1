package webui

import (
	"net/http"
	"strconv"

	"github.com/runic/mailman/pkg/server/web"
	"github.com/runic/mailman/pkg/wizard"
)

// wizardPage splits the step panel variant into typed fields for the template.
type wizardPage struct {
	page
	Wizard       wizard.Snapshot
	Steps        []wizard.Step
	CanPrevious  bool
	CanNext      bool
	Requirements *wizard.RequirementsPanel
	Install      *wizard.InstallPanel
	Complete     *wizard.CompletePanel
}

// WizardShow renders the current installation step.
func WizardShow(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	p, err := newPage(w, req, ctx, "/installation")
	if err != nil {
		return err
	}
	snap := ctx.Session.Wizard.Snapshot()
	data := wizardPage{
		page:        p,
		Wizard:      snap,
		Steps:       wizard.Steps(),
		CanPrevious: snap.Current > 0,
		CanNext:     snap.Current < wizard.StepCount-1,
	}
	switch panel := snap.Panel.(type) {
	case *wizard.RequirementsPanel:
		data.Requirements = panel
	case *wizard.InstallPanel:
		data.Install = panel
	case *wizard.CompletePanel:
		data.Complete = panel
	}
	return ctx.Templates.Render(w, "wizard.html", data)
}

// WizardNext advances one step.
func WizardNext(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	ctx.Session.Wizard.Next()
	return redirect(w, req, ctx, "/installation")
}

// WizardPrevious goes back one step.
func WizardPrevious(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	ctx.Session.Wizard.Previous()
	return redirect(w, req, ctx, "/installation")
}

// WizardJump moves to the step in the URL when it is reachable.
func WizardJump(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	i, err := strconv.Atoi(ctx.Vars["index"])
	if err != nil {
		return &web.StatusError{Code: http.StatusBadRequest, Err: err}
	}
	if !ctx.Session.Wizard.JumpTo(i) {
		ctx.AddFlash(web.FlashError, "Complete the previous steps first")
	}
	return redirect(w, req, ctx, "/installation")
}

// WizardDetails stores the server details form.  Fields missing from the form keep their value.
func WizardDetails(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	if err := req.ParseForm(); err != nil {
		return &web.StatusError{Code: http.StatusBadRequest, Err: err}
	}
	for _, field := range wizard.FieldNames {
		if _, ok := req.PostForm[field]; !ok {
			continue
		}
		if err := ctx.Session.Wizard.SetDetail(field, req.PostForm.Get(field)); err != nil {
			return err
		}
	}
	if req.PostForm.Get("action") == "next" {
		ctx.Session.Wizard.Next()
	} else {
		ctx.AddFlash(web.FlashSuccess, "Server details saved")
	}
	return redirect(w, req, ctx, "/installation")
}
