package web

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/runic/mailman/pkg/activity"
	"github.com/runic/mailman/pkg/catalog"
	"github.com/runic/mailman/pkg/config"
	"github.com/runic/mailman/pkg/dashboard"
	"github.com/runic/mailman/pkg/session"
)

const (
	cookieName   = "mailman"
	sessionIDKey = "sid"
)

// Flash message kinds.
const (
	FlashError   = "errors"
	FlashSuccess = "success"
)

type servicesKey struct{}

// Context is passed into every request handler function.
type Context struct {
	Vars       map[string]string
	Session    *session.Session
	RootConfig *config.Root
	Catalog    catalog.Store
	Board      *dashboard.Board
	Activity   *activity.Hub
	Templates  *Templates
	IsJSON     bool
	Logger     zerolog.Logger

	cookie *sessions.Session
	dirty  bool // Cookie must be written before the handler runs.
}

// servicesWrapper returns middleware that attaches svcs to every request.
func servicesWrapper(svcs *Services, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		next.ServeHTTP(w, req.WithContext(context.WithValue(req.Context(), servicesKey{}, svcs)))
	})
}

// headerMatch returns true if the request header specified by name contains
// the specified value.  Case is ignored.
func headerMatch(req *http.Request, name string, value string) bool {
	name = http.CanonicalHeaderKey(name)
	value = strings.ToLower(value)

	if header := req.Header[name]; header != nil {
		for _, hv := range header {
			if value == strings.ToLower(hv) {
				return true
			}
		}
	}

	return false
}

// NewContext returns a Context for the given HTTP Request, opening the browser session named by its
// cookie.  Unknown or missing session ids get a fresh session.
func NewContext(req *http.Request) (*Context, error) {
	svcs, ok := req.Context().Value(servicesKey{}).(*Services)
	if !ok {
		return nil, errors.New("request is missing web services")
	}

	cookie, err := svcs.cookies.Get(req, cookieName)
	if err != nil {
		// Undecodable cookies are replaced by a new one.
		log.Debug().Str("module", "web").Str("remote", req.RemoteAddr).Err(err).
			Msg("Discarding session cookie")
	}
	id, _ := cookie.Values[sessionIDKey].(string)
	sess, created := svcs.Sessions.Open(id)
	if created {
		cookie.Values[sessionIDKey] = sess.ID
	}

	return &Context{
		Vars:       mux.Vars(req),
		Session:    sess,
		RootConfig: svcs.Config,
		Catalog:    svcs.Catalog,
		Board:      svcs.Board,
		Activity:   svcs.Activity,
		Templates:  svcs.Templates,
		IsJSON:     headerMatch(req, "Accept", "application/json"),
		Logger: log.With().Str("module", "web").Str("session", sess.ID).
			Str("path", req.URL.Path).Logger(),
		cookie: cookie,
		dirty:  created,
	}, nil
}

// AddFlash queues a message of the given kind for the next rendered page.
func (c *Context) AddFlash(kind, msg string) {
	c.cookie.AddFlash(msg, kind)
	c.dirty = true
}

// Flashes removes and returns the queued messages of the given kind.  The cookie must be saved
// afterwards for the removal to stick.
func (c *Context) Flashes(kind string) []string {
	raw := c.cookie.Flashes(kind)
	if len(raw) == 0 {
		return nil
	}
	c.dirty = true
	msgs := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			msgs = append(msgs, s)
		}
	}
	return msgs
}

// SaveCookie writes the session cookie if it changed.  It must be called before the response body.
func (c *Context) SaveCookie(w http.ResponseWriter, req *http.Request) error {
	if !c.dirty {
		return nil
	}
	c.dirty = false
	return c.cookie.Save(req, w)
}

// Close the Context (currently does nothing).
func (c *Context) Close() {
	// Do nothing.
}
