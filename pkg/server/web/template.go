package web

import (
	"bytes"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"sync"

	"github.com/rs/zerolog/log"
)

const baseTemplate = "_base.html"

// Templates loads page templates from a file system, each wrapped by _base.html.
type Templates struct {
	fsys  fs.FS
	cache bool

	mu     sync.Mutex
	cached map[string]*template.Template
}

// NewTemplates returns templates read from fsys.  Parsed templates are kept when cache is true.
func NewTemplates(fsys fs.FS, cache bool) *Templates {
	return &Templates{
		fsys:   fsys,
		cache:  cache,
		cached: make(map[string]*template.Template),
	}
}

// Render fetches the named template and renders it to the provided ResponseWriter.  The page is
// fully rendered before anything is written, so a template error still yields a clean 500.
func (t *Templates) Render(w http.ResponseWriter, name string, data any) error {
	tmpl, err := t.Parse(name)
	if err != nil {
		log.Error().Str("module", "web").Str("template", name).Err(err).Msg("Error in template")
		return err
	}
	buf := &bytes.Buffer{}
	if err := tmpl.Execute(buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Expires", "-1")
	// Ensure we do not allow click jacking.
	w.Header().Set("X-Frame-Options", "SameOrigin")
	_, err = buf.WriteTo(w)
	return err
}

// Parse loads the requested template along with _base.html, caching the result if configured to
// do so.
func (t *Templates) Parse(name string) (*template.Template, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tmpl, ok := t.cached[name]; ok {
		return tmpl, nil
	}

	log.Debug().Str("module", "web").Str("template", name).Msg("Parsing template")
	tmpl, err := template.New(baseTemplate).Funcs(TemplateFuncs).
		ParseFS(t.fsys, baseTemplate, path.Clean(name))
	if err != nil {
		return nil, err
	}

	if t.cache {
		t.cached[name] = tmpl
	}
	return tmpl, nil
}
