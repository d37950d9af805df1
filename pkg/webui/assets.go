package webui

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/runic/mailman/pkg/server/web"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed public
var publicFS embed.FS

// Templates returns the embedded page templates.
func Templates(cache bool) *web.Templates {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}
	return web.NewTemplates(sub, cache)
}

func publicHandler(dir string) http.Handler {
	if dir != "" {
		log.Info().Str("module", "webui").Str("phase", "startup").Str("path", dir).
			Msg("Serving static content from directory")
		return http.FileServer(http.Dir(dir))
	}
	sub, err := fs.Sub(publicFS, "public")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
