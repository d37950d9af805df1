// Package webui powers the Runic Mailman HTML dashboard.
package webui

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/runic/mailman/pkg/config"
	"github.com/runic/mailman/pkg/server/web"
	"github.com/runic/mailman/pkg/stringutil"
)

// SetupRoutes populates routes for the webui into the provided Router, which must already be
// mounted below conf.BasePath.  Static assets come from conf.PublicDir when set, otherwise from the
// embedded copies.
func SetupRoutes(r *mux.Router, conf config.Web) {
	public := stringutil.MakePathPrefixer(conf.BasePath)("/public/")
	r.PathPrefix("/public/").Handler(http.StripPrefix(public, publicHandler(conf.PublicDir)))

	r.Path("/").Handler(
		web.Handler(RootIndex)).Name("RootIndex").Methods("GET")
	r.Path("/monitoring").Handler(
		web.Handler(RootMonitoring)).Name("RootMonitoring").Methods("GET")
	r.Path("/users").Handler(
		web.Handler(RootPlaceholder)).Name("RootUsers").Methods("GET")
	r.Path("/ssl").Handler(
		web.Handler(RootPlaceholder)).Name("RootSSL").Methods("GET")
	r.Path("/status/refresh").Handler(
		web.Handler(StatusRefresh)).Name("StatusRefresh").Methods("POST")
	r.Path("/status/{name}/restart").Handler(
		web.Handler(StatusRestart)).Name("StatusRestart").Methods("POST")
	r.Path("/status/{name}/reload").Handler(
		web.Handler(StatusReload)).Name("StatusReload").Methods("POST")

	r.Path("/installation").Handler(
		web.Handler(WizardShow)).Name("WizardShow").Methods("GET")
	r.Path("/installation/next").Handler(
		web.Handler(WizardNext)).Name("WizardNext").Methods("POST")
	r.Path("/installation/previous").Handler(
		web.Handler(WizardPrevious)).Name("WizardPrevious").Methods("POST")
	r.Path("/installation/step/{index:[0-9]+}").Handler(
		web.Handler(WizardJump)).Name("WizardJump").Methods("POST")
	r.Path("/installation/details").Handler(
		web.Handler(WizardDetails)).Name("WizardDetails").Methods("POST")

	r.Path("/config").Handler(
		web.Handler(ConfigShow)).Name("ConfigShow").Methods("GET")
	r.Path("/config/service").Handler(
		web.Handler(ConfigService)).Name("ConfigService").Methods("POST")
	r.Path("/config/file").Handler(
		web.Handler(ConfigFile)).Name("ConfigFile").Methods("POST")
	r.Path("/config/buffer").Handler(
		web.Handler(ConfigBuffer)).Name("ConfigBuffer").Methods("POST")
	r.Path("/config/validate").Handler(
		web.Handler(ConfigValidate)).Name("ConfigValidate").Methods("POST")
	r.Path("/config/save").Handler(
		web.Handler(ConfigSave)).Name("ConfigSave").Methods("POST")
	r.Path("/config/restart").Handler(
		web.Handler(ConfigRestart)).Name("ConfigRestart").Methods("POST")
}
