package web

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/runic/mailman/pkg/rest/model"
)

// Handler is a function type that handles an HTTP request in Runic Mailman.
type Handler func(http.ResponseWriter, *http.Request, *Context) error

// StatusError carries the HTTP status a handler wants reported for err.
type StatusError struct {
	Code int
	Err  error
}

func (e *StatusError) Error() string { return e.Err.Error() }

func (e *StatusError) Unwrap() error { return e.Err }

// ServeHTTP builds the context and passes onto the real handler.
func (h Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	expRequests.Add(1)

	// Create the context.
	ctx, err := NewContext(req)
	if err != nil {
		log.Error().Str("module", "web").Err(err).Msg("HTTP failed to create context")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer ctx.Close()
	if err := ctx.SaveCookie(w, req); err != nil {
		ctx.Logger.Warn().Err(err).Msg("Failed to save session cookie")
	}

	// Run the handler, grab the error, and report it.
	err = h(w, req, ctx)
	if err == nil {
		return
	}
	var se *StatusError
	if errors.As(err, &se) {
		ctx.Logger.Debug().Int("status", se.Code).Err(se.Err).Msg("Request refused")
		if ctx.IsJSON {
			_ = RenderJSONStatus(w, se.Code, model.JSONErrorV1{Error: se.Err.Error()})
			return
		}
		http.Error(w, se.Err.Error(), se.Code)
		return
	}
	ctx.Logger.Error().Str("uri", req.RequestURI).Err(err).Msg("Error handling request")
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// noMatchHandler creates a handler to log requests that Gorilla mux is unable to route,
// returning specified statusCode to the client.
func noMatchHandler(statusCode int, message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		log.Warn().Str("module", "web").Str("remote", req.RemoteAddr).Str("proto", req.Proto).
			Str("method", req.Method).Str("path", req.RequestURI).Msg(message)
		w.WriteHeader(statusCode)
	})
}

// requestLoggingWrapper returns middleware that logs client requests.
func requestLoggingWrapper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		log.Debug().Str("module", "web").Str("remote", req.RemoteAddr).Str("proto", req.Proto).
			Str("method", req.Method).Str("path", req.RequestURI).Msg("Request")
		next.ServeHTTP(w, req)
	})
}
