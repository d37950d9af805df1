package test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

// LuaInit defines assertion helpers for Lua hook scripts under test.  Scripts running inside an
// event listener set `async = true`; failures are then logged and recorded in `test_ok`, which the
// script sends back over its notify channel, instead of raising an error in the listener.
const LuaInit = `
	local logger = require("logger")

	async = false
	test_ok = true

	local function fail(message)
		if async then
			logger.error(message, {from = "lua test"})
			test_ok = false
			return
		end
		error(message, 3)
	end

	-- Compares plain values, or list tables element by element.
	function assert_eq(got, want)
		if type(got) ~= "table" or type(want) ~= "table" then
			if got ~= want then
				fail(string.format("got %q, wanted %q", tostring(got), tostring(want)))
			end
			return
		end
		if #got ~= #want then
			fail(string.format("got %d elements, wanted %d", #got, #want))
			return
		end
		for i = 1, #want do
			assert_eq(got[i], want[i])
		end
	end

	function assert_contains(got, want)
		if not string.find(got, want, 1, true) then
			fail(string.format("got %q, wanted it to contain %q", got, want))
		end
	end
`

// LuaTimeout is how long AssertNotified waits for a script to report back.
const LuaTimeout = 2 * time.Second

// AssertNotified waits for the script to send test_ok on notify, failing unless it is truthy.
func AssertNotified(t *testing.T, notify chan lua.LValue) {
	t.Helper()
	select {
	case lv := <-notify:
		require.True(t, lua.LVAsBool(lv), "Lua hook reported failed assertions")
	case <-time.After(LuaTimeout):
		require.FailNow(t, "Lua hook was not called", "waited %v", LuaTimeout)
	}
}
