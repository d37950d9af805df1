// Package rest implements the JSON API of Runic Mailman.
package rest

import (
	"github.com/gorilla/mux"

	"github.com/runic/mailman/pkg/server/web"
)

// SetupRoutes populates the routes for the REST interface.
func SetupRoutes(r *mux.Router) {
	// API v1
	r.Path("/v1/nav").Handler(
		web.Handler(NavV1)).Name("NavV1").Methods("GET")
	r.Path("/v1/overview").Handler(
		web.Handler(OverviewV1)).Name("OverviewV1").Methods("GET")

	r.Path("/v1/status").Handler(
		web.Handler(StatusV1)).Name("StatusV1").Methods("GET")
	r.Path("/v1/status/refresh").Handler(
		web.Handler(StatusRefreshV1)).Name("StatusRefreshV1").Methods("POST")
	r.Path("/v1/status/{name}/restart").Handler(
		web.Handler(StatusRestartV1)).Name("StatusRestartV1").Methods("POST")
	r.Path("/v1/status/{name}/reload").Handler(
		web.Handler(StatusReloadV1)).Name("StatusReloadV1").Methods("POST")

	r.Path("/v1/wizard").Handler(
		web.Handler(WizardV1)).Name("WizardV1").Methods("GET")
	r.Path("/v1/wizard/next").Handler(
		web.Handler(WizardNextV1)).Name("WizardNextV1").Methods("POST")
	r.Path("/v1/wizard/previous").Handler(
		web.Handler(WizardPreviousV1)).Name("WizardPreviousV1").Methods("POST")
	r.Path("/v1/wizard/step/{index:[0-9]+}").Handler(
		web.Handler(WizardJumpV1)).Name("WizardJumpV1").Methods("POST")
	r.Path("/v1/wizard/details").Handler(
		web.Handler(WizardDetailsV1)).Name("WizardDetailsV1").Methods("PATCH")

	r.Path("/v1/services").Handler(
		web.Handler(ServicesV1)).Name("ServicesV1").Methods("GET")
	r.Path("/v1/services/{service}/files").Handler(
		web.Handler(ServiceFilesV1)).Name("ServiceFilesV1").Methods("GET")
	r.Path("/v1/services/{service}/files/{name}").Handler(
		web.Handler(ServiceFileV1)).Name("ServiceFileV1").Methods("GET")

	r.Path("/v1/editor").Handler(
		web.Handler(EditorV1)).Name("EditorV1").Methods("GET")
	r.Path("/v1/editor/service/{service}").Handler(
		web.Handler(EditorServiceV1)).Name("EditorServiceV1").Methods("PUT")
	r.Path("/v1/editor/file/{name}").Handler(
		web.Handler(EditorFileV1)).Name("EditorFileV1").Methods("PUT")
	r.Path("/v1/editor/buffer").Handler(
		web.Handler(EditorBufferV1)).Name("EditorBufferV1").Methods("PUT")
	r.Path("/v1/editor/validate").Handler(
		web.Handler(EditorValidateV1)).Name("EditorValidateV1").Methods("POST")
	r.Path("/v1/editor/save").Handler(
		web.Handler(EditorSaveV1)).Name("EditorSaveV1").Methods("POST")
	r.Path("/v1/editor/restart").Handler(
		web.Handler(EditorRestartV1)).Name("EditorRestartV1").Methods("POST")

	r.Path("/v1/monitor/activity").Handler(
		web.Handler(MonitorActivityV1)).Name("MonitorActivityV1").Methods("GET")
}
