package luahost_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runic/mailman/pkg/config"
	"github.com/runic/mailman/pkg/extension"
	"github.com/runic/mailman/pkg/extension/event"
	"github.com/runic/mailman/pkg/extension/luahost"
	"github.com/runic/mailman/pkg/test"
)

var consoleLogger = zerolog.New(zerolog.NewConsoleWriter())

func TestEmptyScript(t *testing.T) {
	extHost := extension.NewHost()

	h, err := luahost.NewFromReader(consoleLogger, extHost, strings.NewReader(""), "test.lua")
	require.NoError(t, err)
	assert.Empty(t, h.Functions)
	assert.Empty(t, extHost.Events.AfterConfigSaved.Listeners())
}

func TestSyntaxError(t *testing.T) {
	_, err := luahost.NewFromReader(consoleLogger, extension.NewHost(),
		strings.NewReader("function ("), "test.lua")
	assert.Error(t, err)
}

func TestLogger(t *testing.T) {
	script := `
		local logger = require("logger")
		logger.info("_test log entry_", {})
	`

	output := &strings.Builder{}
	logger := zerolog.New(output)

	_, err := luahost.NewFromReader(logger, extension.NewHost(), strings.NewReader(script), "test.lua")
	require.NoError(t, err)

	assert.Contains(t, output.String(), "_test log entry_")
}

func TestInvalidAfterFunction(t *testing.T) {
	script := `
		function mailman.after.message_stored(ev)
		end
	`
	_, err := luahost.NewFromReader(consoleLogger, extension.NewHost(),
		strings.NewReader(script), "test.lua")
	assert.ErrorContains(t, err, "invalid mailman.after index")
}

func TestAfterConfigSaved(t *testing.T) {
	script := `
		async = true

		function mailman.after.config_saved(ev)
			assert_eq(ev.service, "postfix")
			assert_eq(ev.file, "main.cf")
			assert_eq(ev.path, "/etc/postfix/main.cf")
			assert_eq(ev.size, 42)
			assert_eq(ev.time, 981173106)
			notify:send(test_ok)
		end
	`
	extHost := extension.NewHost()
	luaHost, err := luahost.NewFromReader(consoleLogger, extHost,
		strings.NewReader(test.LuaInit+script), "test.lua")
	require.NoError(t, err)
	assert.Equal(t, []string{"after.config_saved"}, luaHost.Functions)
	notify := luaHost.CreateChannel("notify")

	extHost.Events.AfterConfigSaved.Emit(&event.ConfigSaved{
		Service: "postfix",
		File:    "main.cf",
		Path:    "/etc/postfix/main.cf",
		Size:    42,
		Time:    time.Date(2001, time.February, 3, 4, 5, 6, 0, time.UTC),
	})
	test.AssertNotified(t, notify)
}

func TestAfterServiceActions(t *testing.T) {
	script := `
		async = true

		function mailman.after.service_restarted(ev)
			assert_eq(ev.service, "Postfix")
			assert_eq(ev.action, "restart")
			assert_eq(ev.source, "dashboard")
			notify:send(test_ok)
		end

		function mailman.after.service_reloaded(ev)
			assert_eq(ev.service, "Dovecot")
			assert_eq(ev.action, "reload")
			assert_eq(ev.source, "editor")
			notify:send(test_ok)
		end
	`
	extHost := extension.NewHost()
	luaHost, err := luahost.NewFromReader(consoleLogger, extHost,
		strings.NewReader(test.LuaInit+script), "test.lua")
	require.NoError(t, err)
	notify := luaHost.CreateChannel("notify")

	extHost.Events.AfterServiceRestarted.Emit(&event.ServiceAction{
		Service: "Postfix", Action: event.ActionRestart, Source: event.SourceDashboard})
	test.AssertNotified(t, notify)

	extHost.Events.AfterServiceReloaded.Emit(&event.ServiceAction{
		Service: "Dovecot", Action: event.ActionReload, Source: event.SourceEditor})
	test.AssertNotified(t, notify)
}

func TestAfterStatusRefreshed(t *testing.T) {
	script := `
		async = true

		function mailman.after.status_refreshed(ev)
			assert_eq(ev.services, {"Postfix", "ClamAV"})
			notify:send(test_ok)
		end
	`
	extHost := extension.NewHost()
	luaHost, err := luahost.NewFromReader(consoleLogger, extHost,
		strings.NewReader(test.LuaInit+script), "test.lua")
	require.NoError(t, err)
	notify := luaHost.CreateChannel("notify")

	extHost.Events.AfterStatusRefreshed.Emit(&event.StatusRefreshed{
		Services: []string{"Postfix", "ClamAV"}})
	test.AssertNotified(t, notify)
}

func TestNewMissingScript(t *testing.T) {
	h, err := luahost.New(config.Lua{Path: filepath.Join(t.TempDir(), "none.lua")},
		extension.NewHost())
	require.NoError(t, err)
	assert.Nil(t, h)

	h, err = luahost.New(config.Lua{}, extension.NewHost())
	require.NoError(t, err)
	assert.Nil(t, h)

	_, err = luahost.New(config.Lua{Path: t.TempDir()}, extension.NewHost())
	assert.Error(t, err, "directories are rejected")
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mailman.lua")
	require.NoError(t, os.WriteFile(path, []byte(`
		function mailman.after.status_refreshed(ev) end
	`), 0o600))

	extHost := extension.NewHost()
	h, err := luahost.New(config.Lua{Path: path}, extHost)
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, []string{"after.status_refreshed"}, h.Functions)
	assert.Equal(t, []string{"lua"}, extHost.Events.AfterStatusRefreshed.Listeners())
}
