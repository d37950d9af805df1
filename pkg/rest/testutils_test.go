package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/runic/mailman/pkg/activity"
	"github.com/runic/mailman/pkg/catalog"
	"github.com/runic/mailman/pkg/catalog/mem"
	"github.com/runic/mailman/pkg/config"
	"github.com/runic/mailman/pkg/dashboard"
	"github.com/runic/mailman/pkg/editor"
	"github.com/runic/mailman/pkg/extension"
	"github.com/runic/mailman/pkg/server/web"
	"github.com/runic/mailman/pkg/session"
	"github.com/runic/mailman/pkg/wizard"
)

// testEnv is a running API server and a client that keeps its session cookie.
type testEnv struct {
	t       *testing.T
	server  *httptest.Server
	client  *http.Client
	extHost *extension.Host
	store   *mem.Store
	board   *dashboard.Board
	hub     *activity.Hub
}

// testTimings are the mock delays used by the test server.
type testTimings struct {
	save, restart, refresh, success time.Duration
}

func setupWebServer(t *testing.T, timings testTimings) *testEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	conf := &config.Root{
		Web:    config.Web{ActivityHistory: 10},
		Wizard: config.Wizard{Hostname: "mail.test.local", Domain: "test.local"},
	}
	extHost := extension.NewHost()
	store := mem.New(catalog.DefaultSeed(), extHost)
	hub := activity.New(conf.Web.ActivityHistory, extHost, activity.SeedItems(time.Now())...)
	go hub.Start(ctx)
	board := dashboard.NewBoard(timings.refresh, extHost, dashboard.WithActivity(hub))
	backend := &editor.MockBackend{
		Store:        store,
		ExtHost:      extHost,
		SaveDelay:    timings.save,
		RestartDelay: timings.restart,
	}
	registry := session.NewRegistry(func(string) (*wizard.Wizard, *editor.Editor) {
		return wizard.New(wizard.DefaultServerDetails(conf.Wizard)),
			editor.New(store, backend, timings.success)
	})

	srv := web.NewServer(conf, web.Services{
		Catalog:  store,
		Board:    board,
		Activity: hub,
		Sessions: registry,
	})
	SetupRoutes(srv.Router.PathPrefix("/api/").Subrouter())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testEnv{
		t:       t,
		server:  ts,
		client:  &http.Client{Jar: jar, Timeout: 10 * time.Second},
		extHost: extHost,
		store:   store,
		board:   board,
		hub:     hub,
	}
}

// do performs a request against the test server, returning the status and decoded JSON body.
func (e *testEnv) do(method, path, body string) (int, any) {
	e.t.Helper()
	req, err := http.NewRequest(method, e.server.URL+path, strings.NewReader(body))
	require.NoError(e.t, err)
	req.Header.Add("Accept", "application/json")
	resp, err := e.client.Do(req)
	require.NoError(e.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	var result any
	if len(raw) > 0 {
		require.NoError(e.t, json.Unmarshal(raw, &result), "body: %s", raw)
	}
	return resp.StatusCode, result
}

func (e *testEnv) get(path string) (int, any) {
	return e.do("GET", path, "")
}

func (e *testEnv) post(path string) (int, any) {
	return e.do("POST", path, "")
}

func decodedBoolEquals(t *testing.T, json any, path string, want bool) {
	t.Helper()
	els := strings.Split(path, "/")
	val, msg := getDecodedPath(json, els...)
	if msg != "" {
		t.Errorf("JSON result%s", msg)
		return
	}
	if got, ok := val.(bool); ok {
		if got == want {
			return
		}
	}
	t.Errorf("JSON result/%s == %v (%T), want: %v", path, val, val, want)
}

func decodedNumberEquals(t *testing.T, json any, path string, want float64) {
	t.Helper()
	els := strings.Split(path, "/")
	val, msg := getDecodedPath(json, els...)
	if msg != "" {
		t.Errorf("JSON result%s", msg)
		return
	}
	got, ok := val.(float64)
	if ok {
		if got == want {
			return
		}
	}
	t.Errorf("JSON result/%s == %v (%T) %v (int64),\nwant: %v / %v",
		path, val, val, int64(got), want, int64(want))
}

func decodedStringEquals(t *testing.T, json any, path string, want string) {
	t.Helper()
	els := strings.Split(path, "/")
	val, msg := getDecodedPath(json, els...)
	if msg != "" {
		t.Errorf("JSON result%s", msg)
		return
	}
	if got, ok := val.(string); ok {
		if got == want {
			return
		}
	}
	t.Errorf("JSON result/%s == %v (%T), want: %v", path, val, val, want)
}

// getDecodedPath recursively navigates the specified path, returing the requested element.  If
// something goes wrong, the returned string will contain an explanation.
//
// Named path elements require the parent element to be a map[string]any, numbers in square
// brackets require the parent element to be a []any.
//
//     getDecodedPath(o, "users", "[1]", "name")
//
// is equivalent to the JavaScript:
//
//     o.users[1].name
//
func getDecodedPath(o any, path ...string) (any, string) {
	if len(path) == 0 {
		return o, ""
	}
	if o == nil {
		return nil, " is nil"
	}
	key := path[0]
	present := false
	var val any
	if key[0] == '[' {
		// Expecting slice.
		index, err := strconv.Atoi(strings.Trim(key, "[]"))
		if err != nil {
			return nil, "/" + key + " is not a slice index"
		}
		oslice, ok := o.([]any)
		if !ok {
			return nil, " is not a slice"
		}
		if index >= len(oslice) {
			return nil, "/" + key + " is out of bounds"
		}
		val, present = oslice[index], true
	} else {
		// Expecting map.
		omap, ok := o.(map[string]any)
		if !ok {
			return nil, " is not a map"
		}
		val, present = omap[key]
	}
	if !present {
		return nil, "/" + key + " is missing"
	}
	result, msg := getDecodedPath(val, path[1:]...)
	if msg != "" {
		return nil, "/" + key + msg
	}
	return result, ""
}

// decodedValue returns the element at path, or nil if it is missing.
func decodedValue(json any, path string) any {
	val, _ := getDecodedPath(json, strings.Split(path, "/")...)
	return val
}
