package luahost

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

const (
	mailmanName      = "mailman"
	mailmanAfterName = "mailman_after"
)

// Mailman is the Go side of the `mailman` global.
type Mailman struct {
	After MailmanAfterFuncs
}

// MailmanAfterFuncs holds the script functions called after dashboard actions complete.
type MailmanAfterFuncs struct {
	ConfigSaved      *lua.LFunction
	ServiceRestarted *lua.LFunction
	ServiceReloaded  *lua.LFunction
	StatusRefreshed  *lua.LFunction
}

// afterFuncNames lists the settable mailman.after fields.
var afterFuncNames = []string{
	"config_saved", "service_restarted", "service_reloaded", "status_refreshed",
}

func (a *MailmanAfterFuncs) field(name string) (**lua.LFunction, bool) {
	switch name {
	case "config_saved":
		return &a.ConfigSaved, true
	case "service_restarted":
		return &a.ServiceRestarted, true
	case "service_reloaded":
		return &a.ServiceReloaded, true
	case "status_refreshed":
		return &a.StatusRefreshed, true
	}
	return nil, false
}

func registerMailmanTypes(ls *lua.LState) {
	// mailman type.
	mt := ls.NewTypeMetatable(mailmanName)
	ls.SetField(mt, "__index", ls.NewFunction(mailmanIndex))

	// mailman.after type.
	mt = ls.NewTypeMetatable(mailmanAfterName)
	ls.SetField(mt, "__index", ls.NewFunction(mailmanAfterIndex))
	ls.SetField(mt, "__newindex", ls.NewFunction(mailmanAfterNewIndex))

	// mailman global.
	ud := wrapMailman(ls, &Mailman{})
	ls.SetGlobal(mailmanName, ud)
}

func wrapMailman(ls *lua.LState, val *Mailman) *lua.LUserData {
	ud := ls.NewUserData()
	ud.Value = val
	ls.SetMetatable(ud, ls.GetTypeMetatable(mailmanName))

	return ud
}

func wrapMailmanAfter(ls *lua.LState, val *MailmanAfterFuncs) *lua.LUserData {
	ud := ls.NewUserData()
	ud.Value = val
	ls.SetMetatable(ud, ls.GetTypeMetatable(mailmanAfterName))

	return ud
}

func getMailman(ls *lua.LState) (*Mailman, error) {
	lv := ls.GetGlobal(mailmanName)
	if lv == nil {
		return nil, errors.New("mailman object was nil")
	}

	ud, ok := lv.(*lua.LUserData)
	if !ok {
		return nil, fmt.Errorf("mailman object was type %s instead of UserData", lv.Type())
	}

	val, ok := ud.Value.(*Mailman)
	if !ok {
		return nil, fmt.Errorf("mailman object (%v) could not be cast", ud.Value)
	}

	return val, nil
}

func checkMailman(ls *lua.LState, pos int) *Mailman {
	ud := ls.CheckUserData(pos)
	if val, ok := ud.Value.(*Mailman); ok {
		return val
	}
	ls.ArgError(1, mailmanName+" expected")
	return nil
}

func checkMailmanAfter(ls *lua.LState, pos int) *MailmanAfterFuncs {
	ud := ls.CheckUserData(pos)
	if val, ok := ud.Value.(*MailmanAfterFuncs); ok {
		return val
	}
	ls.ArgError(1, mailmanAfterName+" expected")
	return nil
}

// mailman getter.
func mailmanIndex(ls *lua.LState) int {
	mm := checkMailman(ls, 1)
	field := ls.CheckString(2)

	switch field {
	case "after":
		ls.Push(wrapMailmanAfter(ls, &mm.After))
	default:
		// Unknown field.
		ls.Push(lua.LNil)
	}

	return 1
}

// mailman.after getter.
func mailmanAfterIndex(ls *lua.LState) int {
	after := checkMailmanAfter(ls, 1)
	field := ls.CheckString(2)

	if fn, ok := after.field(field); ok {
		ls.Push(funcOrNil(*fn))
	} else {
		ls.Push(lua.LNil)
	}

	return 1
}

// mailman.after setter.
func mailmanAfterNewIndex(ls *lua.LState) int {
	after := checkMailmanAfter(ls, 1)
	index := ls.CheckString(2)

	fn, ok := after.field(index)
	if !ok {
		ls.RaiseError("invalid mailman.after index %q", index)
		return 0
	}
	*fn = ls.CheckFunction(3)

	return 0
}

func funcOrNil(f *lua.LFunction) lua.LValue {
	if f == nil {
		return lua.LNil
	}

	return f
}
