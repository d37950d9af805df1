package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/runic/mailman/pkg/action"
	"github.com/runic/mailman/pkg/activity"
	"github.com/runic/mailman/pkg/catalog"
	"github.com/runic/mailman/pkg/dashboard"
	"github.com/runic/mailman/pkg/editor"
	"github.com/runic/mailman/pkg/rest/model"
	"github.com/runic/mailman/pkg/server/web"
	"github.com/runic/mailman/pkg/wizard"
)

// errorStatus maps domain errors to HTTP status codes, zero for unexpected errors.
func errorStatus(err error) int {
	var verr *editor.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, action.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrNotExist),
		errors.Is(err, editor.ErrUnknownService),
		errors.Is(err, dashboard.ErrUnknownService):
		return http.StatusNotFound
	case errors.Is(err, editor.ErrNoFile),
		errors.Is(err, wizard.ErrUnknownField):
		return http.StatusBadRequest
	}
	return 0
}

// renderError writes known domain errors as a JSON error document.  Unexpected errors are returned
// for the web handler to report.
func renderError(w http.ResponseWriter, err error) error {
	code := errorStatus(err)
	if code == 0 {
		return err
	}
	return web.RenderJSONStatus(w, code, &model.JSONErrorV1{Error: err.Error()})
}

func statusModel(s dashboard.ServiceStatus) *model.JSONServiceStatusV1 {
	return &model.JSONServiceStatusV1{
		Name:        s.Name,
		Status:      string(s.Status),
		Label:       s.Status.Label(),
		Uptime:      s.Uptime,
		LastChecked: s.LastChecked,
	}
}

func activityModel(i activity.Item, now time.Time) *model.JSONActivityV1 {
	return &model.JSONActivityV1{
		Kind:        string(i.Kind),
		Message:     i.Message,
		Time:        i.Time,
		PosixMillis: i.Time.UnixMilli(),
		Ago:         i.Ago(now),
	}
}

func overviewModel(o dashboard.Overview, now time.Time) *model.JSONOverviewV1 {
	m := &model.JSONOverviewV1{
		Components: make([]*model.JSONComponentV1, len(o.Components)),
		Stats: model.JSONMailStatsV1{
			EmailsProcessed: o.Stats.EmailsProcessed,
			SpamDetected:    o.Stats.SpamDetected,
			ActiveUsers:     o.Stats.ActiveUsers,
			DiskUsage:       o.Stats.DiskUsage,
		},
		Recent: make([]*model.JSONActivityV1, len(o.Recent)),
	}
	for i, c := range o.Components {
		m.Components[i] = &model.JSONComponentV1{
			Name:   c.Name,
			Status: string(c.Status),
			Uptime: c.Uptime,
			Health: string(c.Health),
		}
	}
	for i, item := range o.Recent {
		m.Recent[i] = activityModel(item, now)
	}
	return m
}

func wizardModel(s wizard.Snapshot) *model.JSONWizardV1 {
	m := &model.JSONWizardV1{
		Current:     s.Current,
		Progress:    s.Progress,
		NextLabel:   s.NextLabel,
		CanPrevious: s.Current > 0,
		CanNext:     s.Current < wizard.StepCount-1,
		Steps:       make([]*model.JSONStepV1, 0, wizard.StepCount),
		Details:     s.Details,
	}
	for i, step := range wizard.Steps() {
		m.Steps = append(m.Steps, &model.JSONStepV1{
			Index:       i,
			ID:          step.ID,
			Title:       step.Title,
			Description: step.Description,
			State:       string(s.States[i]),
		})
	}
	switch p := s.Panel.(type) {
	case *wizard.RequirementsPanel:
		m.Kind, m.Requirements = "requirements", p
	case *wizard.InstallPanel:
		m.Kind, m.Install = "install", p
	case *wizard.CompletePanel:
		m.Kind, m.Complete = "complete", p
	}
	return m
}

func fileHeaderModel(f catalog.ConfigFile) *model.JSONFileHeaderV1 {
	return &model.JSONFileHeaderV1{
		Service: f.Service,
		Name:    f.Name,
		Path:    f.Path,
		Size:    len(f.Content),
	}
}

func fileModel(f catalog.ConfigFile) *model.JSONFileV1 {
	return &model.JSONFileV1{
		Service: f.Service,
		Name:    f.Name,
		Path:    f.Path,
		Content: f.Content,
	}
}

func editorModel(s editor.State) *model.JSONEditorV1 {
	m := &model.JSONEditorV1{
		Service:         model.JSONServiceV1{ID: s.Service.ID, Name: s.Service.Name},
		Files:           make([]*model.JSONFileHeaderV1, len(s.Files)),
		Buffer:          s.Buffer,
		Modified:        s.Modified(),
		ValidationError: s.ValidationError,
		Saved:           s.Saved,
		Saving:          s.Saving,
		Restarting:      s.Restarting,
	}
	for i, f := range s.Files {
		m.Files[i] = fileHeaderModel(f)
	}
	if s.File != nil {
		m.File = fileModel(*s.File)
	}
	return m
}
