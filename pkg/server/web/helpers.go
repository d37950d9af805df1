package web

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/runic/mailman/pkg/activity"
)

// TemplateFuncs declares functions made available to all templates (including partials).
var TemplateFuncs = template.FuncMap{
	"ago":          func(i activity.Item) string { return i.Ago(time.Now()) },
	"friendlyTime": FriendlyTime,
	"inc":          func(i int) int { return i + 1 },
	"stringsJoin":  strings.Join,
}

// FriendlyTime renders a timestamp in a friendly fashion: 03:04:05 PM if same day,
// otherwise Mon Jan 2, 2006.
func FriendlyTime(t time.Time) template.HTML {
	ty, tm, td := t.Date()
	ny, nm, nd := time.Now().Date()
	if (ty == ny) && (tm == nm) && (td == nd) {
		return template.HTML(t.Format("03:04:05 PM"))
	}
	return template.HTML(t.Format("Mon Jan 2, 2006"))
}

// RenderJSON sets the correct HTTP headers for JSON, then writes the specified data (typically a
// struct) encoded in JSON.
func RenderJSON(w http.ResponseWriter, data any) error {
	return RenderJSONStatus(w, http.StatusOK, data)
}

// RenderJSONStatus is RenderJSON with an explicit status code.
func RenderJSONStatus(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Expires", "-1")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// Redirect saves the session cookie, then sends a 303 to url.  Used after form posts.
func Redirect(w http.ResponseWriter, req *http.Request, ctx *Context, url string) error {
	if err := ctx.SaveCookie(w, req); err != nil {
		return err
	}
	http.Redirect(w, req, url, http.StatusSeeOther)
	return nil
}
