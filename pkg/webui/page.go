package webui

import (
	"net/http"

	"github.com/runic/mailman/pkg/config"
	"github.com/runic/mailman/pkg/nav"
	"github.com/runic/mailman/pkg/server/web"
	"github.com/runic/mailman/pkg/stringutil"
)

// page holds the data every template needs for the shell: navigation, flashes and URL prefix.
type page struct {
	Title   string
	Brand   string
	Tagline string
	Nav     []nav.Item
	Footer  string
	Base    string // URL path prefix, without trailing slash.
	Errors  []string
	Success []string
}

// newPage pops the flash messages and saves the cookie, so it must run before rendering starts.
func newPage(w http.ResponseWriter, req *http.Request, ctx *web.Context, path string) (page, error) {
	p := page{
		Title:   nav.Title(path),
		Brand:   nav.Brand,
		Tagline: nav.Tagline,
		Nav:     nav.Items(path),
		Footer:  nav.Footer(config.Version),
		Base:    basePath(ctx),
		Errors:  ctx.Flashes(web.FlashError),
		Success: ctx.Flashes(web.FlashSuccess),
	}
	return p, ctx.SaveCookie(w, req)
}

func basePath(ctx *web.Context) string {
	base := stringutil.MakePathPrefixer(ctx.RootConfig.Web.BasePath)("/")
	return base[:len(base)-1]
}

// redirect sends the browser to path below the base path.
func redirect(w http.ResponseWriter, req *http.Request, ctx *web.Context, path string) error {
	return web.Redirect(w, req, ctx, stringutil.MakePathPrefixer(ctx.RootConfig.Web.BasePath)(path))
}
