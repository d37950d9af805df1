package rest

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavV1(t *testing.T) {
	env := setupWebServer(t, testTimings{})

	code, got := env.get("/api/v1/nav?path=/config")
	require.Equal(t, http.StatusOK, code)
	decodedStringEquals(t, got, "title", "Configuration Editor")
	decodedStringEquals(t, got, "footer", "Runic Mailman v1.0.0")
	decodedStringEquals(t, got, "items/[0]/name", "Dashboard")
	decodedBoolEquals(t, got, "items/[0]/active", false)
	decodedStringEquals(t, got, "items/[2]/path", "/config")
	decodedBoolEquals(t, got, "items/[2]/active", true)

	_, got = env.get("/api/v1/nav?path=/nowhere")
	decodedStringEquals(t, got, "title", "Dashboard")
}

func TestStatusV1(t *testing.T) {
	env := setupWebServer(t, testTimings{})

	code, got := env.get("/api/v1/status")
	require.Equal(t, http.StatusOK, code)
	decodedBoolEquals(t, got, "refreshing", false)
	decodedStringEquals(t, got, "services/[0]/name", "Postfix")
	decodedStringEquals(t, got, "services/[0]/status", "running")
	decodedStringEquals(t, got, "services/[0]/uptime", "5d 12h 34m")
	decodedStringEquals(t, got, "services/[3]/name", "ClamAV")
	decodedStringEquals(t, got, "services/[3]/label", "Error")
	decodedStringEquals(t, got, "services/[3]/lastChecked", "5 minutes ago")
}

func TestStatusRefreshV1(t *testing.T) {
	env := setupWebServer(t, testTimings{refresh: 200 * time.Millisecond})
	refreshed := env.extHost.Events.AfterStatusRefreshed.AsyncTestListener("test", 1)

	var wg sync.WaitGroup
	wg.Add(1)
	var code int
	go func() {
		defer wg.Done()
		code, _ = env.post("/api/v1/status/refresh")
	}()
	require.Eventually(t, env.board.Refreshing, time.Second, time.Millisecond)

	busy, got := env.post("/api/v1/status/refresh")
	assert.Equal(t, http.StatusConflict, busy)
	decodedStringEquals(t, got, "error", "action already in progress")

	wg.Wait()
	assert.Equal(t, http.StatusOK, code)
	ev, err := refreshed()
	require.NoError(t, err)
	assert.Len(t, ev.Services, 6)
}

func TestStatusActionsV1(t *testing.T) {
	env := setupWebServer(t, testTimings{})
	restarted := env.extHost.Events.AfterServiceRestarted.AsyncTestListener("test", 1)
	reloaded := env.extHost.Events.AfterServiceReloaded.AsyncTestListener("test", 1)

	code, got := env.post("/api/v1/status/Postfix/restart")
	require.Equal(t, http.StatusOK, code)
	decodedStringEquals(t, got, "name", "Postfix")
	ev, err := restarted()
	require.NoError(t, err)
	assert.Equal(t, "dashboard", ev.Source)

	code, _ = env.post("/api/v1/status/Redis/reload")
	require.Equal(t, http.StatusOK, code)
	ev, err = reloaded()
	require.NoError(t, err)
	assert.Equal(t, "Redis", ev.Service)

	code, got = env.post("/api/v1/status/Exim/restart")
	assert.Equal(t, http.StatusNotFound, code)
	decodedStringEquals(t, got, "error", `unknown service: "Exim"`)
}

func TestOverviewV1(t *testing.T) {
	env := setupWebServer(t, testTimings{})

	code, got := env.get("/api/v1/overview")
	require.Equal(t, http.StatusOK, code)
	decodedStringEquals(t, got, "components/[3]/name", "ClamAV")
	decodedStringEquals(t, got, "components/[3]/health", "warning")
	decodedNumberEquals(t, got, "stats/emailsProcessed", 124)
	decodedNumberEquals(t, got, "stats/diskUsage", 42)
	decodedStringEquals(t, got, "recent/[0]/kind", "mail")
	decodedStringEquals(t, got, "recent/[0]/message", "15 new emails processed")
	decodedStringEquals(t, got, "recent/[0]/ago", "5 minutes ago")
	decodedStringEquals(t, got, "recent/[3]/kind", "user")
}
