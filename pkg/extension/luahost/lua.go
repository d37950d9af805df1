// Package luahost runs an optional Lua script whose mailman.after functions are called when
// dashboard actions complete.
package luahost

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/runic/mailman/pkg/config"
	"github.com/runic/mailman/pkg/extension"
	"github.com/runic/mailman/pkg/extension/event"
)

const listenerName = "lua"

// Host of Lua extensions.
type Host struct {
	Functions  []string // Functions detected in lua script.
	extHost    *extension.Host
	pool       *statePool
	logContext zerolog.Context
}

// New constructs a new Lua Host, pre-compiling the source.  Returns a nil Host without error when
// the script does not exist.
func New(conf config.Lua, extHost *extension.Host) (*Host, error) {
	scriptPath := conf.Path
	if scriptPath == "" {
		return nil, nil
	}

	logContext := log.With().Str("module", "lua")
	logger := logContext.Str("phase", "startup").Str("path", scriptPath).Logger()

	// Pre-load, parse, and compile script.
	if fi, err := os.Stat(scriptPath); err != nil {
		logger.Info().Msg("Script file not found")
		return nil, nil
	} else if fi.IsDir() {
		return nil, fmt.Errorf("lua script %v is a directory", scriptPath)
	}

	logger.Info().Msg("Loading script")
	file, err := os.Open(scriptPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return NewFromReader(logContext.Logger(), extHost, bufio.NewReader(file), scriptPath)
}

// NewFromReader constructs a new Lua Host, loading Lua source from the provided reader.
// The provided path is used in logging and error messages.
func NewFromReader(logger zerolog.Logger, extHost *extension.Host, r io.Reader, path string) (
	*Host, error) {
	logContext := logger.With().Str("module", "lua").Str("path", path)

	// Pre-parse, and compile script.
	chunk, err := parse.Parse(r, path)
	if err != nil {
		return nil, err
	}
	proto, err := lua.Compile(chunk, path)
	if err != nil {
		return nil, err
	}

	// Build the pool and confirm LState is retrievable.
	pool := newStatePool(logger, proto)
	h := &Host{extHost: extHost, pool: pool, logContext: logContext}
	ls, err := pool.getState()
	if err != nil {
		return nil, err
	}
	h.wireFunctions(ls)
	pool.putState(ls)

	return h, nil
}

// CreateChannel creates a channel and places it into the named global variable
// in newly created LStates.
func (h *Host) CreateChannel(name string) chan lua.LValue {
	return h.pool.createChannel(name)
}

// wireFunctions registers extension listeners for the mailman.after functions defined by the
// script.
func (h *Host) wireFunctions(ls *lua.LState) {
	logger := h.logContext.Str("phase", "startup").Logger()
	mm, err := getMailman(ls)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to get mailman object")
		return
	}

	events := h.extHost.Events
	after := &mm.After
	for _, name := range afterFuncNames {
		fn, _ := after.field(name)
		if *fn == nil {
			continue
		}
		h.Functions = append(h.Functions, "after."+name)
		switch name {
		case "config_saved":
			events.AfterConfigSaved.AddListener(listenerName, h.handleAfterConfigSaved)
		case "service_restarted":
			events.AfterServiceRestarted.AddListener(listenerName, h.handleAfterServiceRestarted)
		case "service_reloaded":
			events.AfterServiceReloaded.AddListener(listenerName, h.handleAfterServiceReloaded)
		case "status_refreshed":
			events.AfterStatusRefreshed.AddListener(listenerName, h.handleAfterStatusRefreshed)
		}
	}
	if len(h.Functions) > 0 {
		logger.Info().Strs("functions", h.Functions).Msg("Lua functions registered")
	}
}

func (h *Host) handleAfterConfigSaved(ev event.ConfigSaved) {
	h.callAfter("config_saved", func(ls *lua.LState) lua.LValue {
		return wrapConfigSaved(ls, &ev)
	})
}

func (h *Host) handleAfterServiceRestarted(ev event.ServiceAction) {
	h.callAfter("service_restarted", func(ls *lua.LState) lua.LValue {
		return wrapServiceAction(ls, &ev)
	})
}

func (h *Host) handleAfterServiceReloaded(ev event.ServiceAction) {
	h.callAfter("service_reloaded", func(ls *lua.LState) lua.LValue {
		return wrapServiceAction(ls, &ev)
	})
}

func (h *Host) handleAfterStatusRefreshed(ev event.StatusRefreshed) {
	h.callAfter("status_refreshed", func(ls *lua.LState) lua.LValue {
		return wrapStatusRefreshed(ls, &ev)
	})
}

// callAfter checks out an LState and calls mailman.after.<name> with the wrapped event.
func (h *Host) callAfter(name string, wrap func(*lua.LState) lua.LValue) {
	logger := h.logContext.Str("event", "after."+name).Logger()
	ls, err := h.pool.getState()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to get Lua state instance from pool")
		return
	}
	defer h.pool.putState(ls)

	mm, err := getMailman(ls)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to obtain Lua mailman object")
		return
	}
	fn, _ := mm.After.field(name)
	if *fn == nil {
		return
	}

	// Call lua function.
	if err := ls.CallByParam(lua.P{Fn: *fn, NRet: 0, Protect: true}, wrap(ls)); err != nil {
		logger.Error().Err(err).Msg("Failed to call Lua function")
	}
}
