package luahost

import (
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/runic/mailman/pkg/extension/event"
)

const (
	configSavedName     = "config_saved"
	serviceActionName   = "service_action"
	statusRefreshedName = "status_refreshed"
)

func registerConfigSavedType(ls *lua.LState) {
	mt := ls.NewTypeMetatable(configSavedName)
	ls.SetGlobal(configSavedName, mt)

	// Static attributes.
	ls.SetField(mt, "new", ls.NewFunction(func(ls *lua.LState) int {
		ls.Push(wrapConfigSaved(ls, &event.ConfigSaved{}))
		return 1
	}))

	// Methods.
	ls.SetField(mt, "__index", ls.NewFunction(configSavedIndex))
	ls.SetField(mt, "__newindex", ls.NewFunction(configSavedNewIndex))
}

func wrapConfigSaved(ls *lua.LState, val *event.ConfigSaved) *lua.LUserData {
	ud := ls.NewUserData()
	ud.Value = val
	ls.SetMetatable(ud, ls.GetTypeMetatable(configSavedName))

	return ud
}

func checkConfigSaved(ls *lua.LState, pos int) *event.ConfigSaved {
	ud := ls.CheckUserData(pos)
	if v, ok := ud.Value.(*event.ConfigSaved); ok {
		return v
	}
	ls.ArgError(1, configSavedName+" expected")
	return nil
}

// Gets a field value from ConfigSaved user object.  This emulates a Lua table, allowing
// `ev.service` instead of a Lua object syntax of `ev:service()`.
func configSavedIndex(ls *lua.LState) int {
	ev := checkConfigSaved(ls, 1)
	field := ls.CheckString(2)

	switch field {
	case "service":
		ls.Push(lua.LString(ev.Service))
	case "file":
		ls.Push(lua.LString(ev.File))
	case "path":
		ls.Push(lua.LString(ev.Path))
	case "size":
		ls.Push(lua.LNumber(ev.Size))
	case "time":
		ls.Push(lua.LNumber(ev.Time.Unix()))
	default:
		// Unknown field.
		ls.Push(lua.LNil)
	}

	return 1
}

// Sets a field value on ConfigSaved user object.
func configSavedNewIndex(ls *lua.LState) int {
	ev := checkConfigSaved(ls, 1)
	index := ls.CheckString(2)

	switch index {
	case "service":
		ev.Service = ls.CheckString(3)
	case "file":
		ev.File = ls.CheckString(3)
	case "path":
		ev.Path = ls.CheckString(3)
	case "size":
		ev.Size = ls.CheckInt64(3)
	case "time":
		ev.Time = time.Unix(ls.CheckInt64(3), 0)
	default:
		ls.RaiseError("invalid index %q", index)
	}

	return 0
}

func registerServiceActionType(ls *lua.LState) {
	mt := ls.NewTypeMetatable(serviceActionName)
	ls.SetGlobal(serviceActionName, mt)

	// Static attributes.
	ls.SetField(mt, "new", ls.NewFunction(func(ls *lua.LState) int {
		ls.Push(wrapServiceAction(ls, &event.ServiceAction{}))
		return 1
	}))

	// Methods.
	ls.SetField(mt, "__index", ls.NewFunction(serviceActionIndex))
	ls.SetField(mt, "__newindex", ls.NewFunction(serviceActionNewIndex))
}

func wrapServiceAction(ls *lua.LState, val *event.ServiceAction) *lua.LUserData {
	ud := ls.NewUserData()
	ud.Value = val
	ls.SetMetatable(ud, ls.GetTypeMetatable(serviceActionName))

	return ud
}

func checkServiceAction(ls *lua.LState, pos int) *event.ServiceAction {
	ud := ls.CheckUserData(pos)
	if v, ok := ud.Value.(*event.ServiceAction); ok {
		return v
	}
	ls.ArgError(1, serviceActionName+" expected")
	return nil
}

func serviceActionIndex(ls *lua.LState) int {
	ev := checkServiceAction(ls, 1)
	field := ls.CheckString(2)

	switch field {
	case "service":
		ls.Push(lua.LString(ev.Service))
	case "action":
		ls.Push(lua.LString(ev.Action))
	case "source":
		ls.Push(lua.LString(ev.Source))
	case "time":
		ls.Push(lua.LNumber(ev.Time.Unix()))
	default:
		// Unknown field.
		ls.Push(lua.LNil)
	}

	return 1
}

func serviceActionNewIndex(ls *lua.LState) int {
	ev := checkServiceAction(ls, 1)
	index := ls.CheckString(2)

	switch index {
	case "service":
		ev.Service = ls.CheckString(3)
	case "action":
		ev.Action = ls.CheckString(3)
	case "source":
		ev.Source = ls.CheckString(3)
	case "time":
		ev.Time = time.Unix(ls.CheckInt64(3), 0)
	default:
		ls.RaiseError("invalid index %q", index)
	}

	return 0
}

func registerStatusRefreshedType(ls *lua.LState) {
	mt := ls.NewTypeMetatable(statusRefreshedName)
	ls.SetGlobal(statusRefreshedName, mt)

	ls.SetField(mt, "__index", ls.NewFunction(statusRefreshedIndex))
}

func wrapStatusRefreshed(ls *lua.LState, val *event.StatusRefreshed) *lua.LUserData {
	ud := ls.NewUserData()
	ud.Value = val
	ls.SetMetatable(ud, ls.GetTypeMetatable(statusRefreshedName))

	return ud
}

func checkStatusRefreshed(ls *lua.LState, pos int) *event.StatusRefreshed {
	ud := ls.CheckUserData(pos)
	if v, ok := ud.Value.(*event.StatusRefreshed); ok {
		return v
	}
	ls.ArgError(1, statusRefreshedName+" expected")
	return nil
}

// Read-only, refresh results are not meant to be altered by scripts.
func statusRefreshedIndex(ls *lua.LState) int {
	ev := checkStatusRefreshed(ls, 1)
	field := ls.CheckString(2)

	switch field {
	case "services":
		lt := &lua.LTable{}
		for _, name := range ev.Services {
			lt.Append(lua.LString(name))
		}
		ls.Push(lt)
	case "time":
		ls.Push(lua.LNumber(ev.Time.Unix()))
	default:
		// Unknown field.
		ls.Push(lua.LNil)
	}

	return 1
}
