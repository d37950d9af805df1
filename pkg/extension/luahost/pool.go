package luahost

import (
	"net/http"
	"sync"
	"time"

	"github.com/cjoudrey/gluahttp"
	"github.com/cosmotek/loguago"
	json "github.com/inbucket/gopher-json"
	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"
)

const (
	// httpTimeout bounds requests made by scripts through the http module.
	httpTimeout = 10 * time.Second

	// maxIdleStates caps the LStates kept for reuse; extras are closed on return.
	maxIdleStates = 8
)

// statePool hands out LStates that have already run the compiled script, so each is ready to have
// its mailman.after functions called.
type statePool struct {
	mu         sync.Mutex
	funcProto  *lua.FunctionProto
	states     []*lua.LState
	gens       map[*lua.LState]int        // Channel generation each live LState was built with.
	gen        int                        // Bumped by createChannel.
	channels   map[string]chan lua.LValue // Globals set in every new LState.
	logger     zerolog.Logger             // Exported to scripts as the logger module.
	httpClient *http.Client
	created    int
}

func newStatePool(logger zerolog.Logger, funcProto *lua.FunctionProto) *statePool {
	return &statePool{
		funcProto:  funcProto,
		gens:       make(map[*lua.LState]int),
		channels:   make(map[string]chan lua.LValue),
		logger:     logger,
		httpClient: &http.Client{Timeout: httpTimeout},
	}
}

// newState builds an LState with the preloaded modules, channels and mailman types, then runs the
// script in it.  Lock must be held.
func (lp *statePool) newState() (*lua.LState, error) {
	ls := lua.NewState()
	ls.PreloadModule("http", gluahttp.NewHttpModule(lp.httpClient).Loader)
	ls.PreloadModule("json", json.Loader)
	ls.PreloadModule("logger", loguago.NewLogger(lp.logger).Loader)
	for name, ch := range lp.channels {
		ls.SetGlobal(name, lua.LChannel(ch))
	}
	registerMailmanTypes(ls)
	registerConfigSavedType(ls)
	registerServiceActionType(ls)
	registerStatusRefreshedType(ls)

	ls.Push(ls.NewFunctionFromProto(lp.funcProto))
	if err := ls.PCall(0, lua.MultRet, nil); err != nil {
		ls.Close()
		return nil, err
	}
	lp.created++
	lp.gens[ls] = lp.gen
	return ls, nil
}

// getState pops an idle LState, or creates one when none are idle.
func (lp *statePool) getState() (*lua.LState, error) {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	n := len(lp.states)
	if n == 0 {
		return lp.newState()
	}
	ls := lp.states[n-1]
	lp.states = lp.states[:n-1]
	return ls, nil
}

// putState clears the stack of ls and makes it available again.  Closed states, states built before
// the latest createChannel, and states beyond maxIdleStates are dropped.
func (lp *statePool) putState(ls *lua.LState) {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	if ls.IsClosed() {
		delete(lp.gens, ls)
		return
	}
	if lp.gens[ls] != lp.gen || len(lp.states) >= maxIdleStates {
		delete(lp.gens, ls)
		ls.Close()
		return
	}
	ls.Pop(ls.GetTop())
	lp.states = append(lp.states, ls)
}

// createChannel creates a buffered channel published as the named global in every LState handed
// out from now on.  Idle states are closed; states currently checked out are closed when returned.
func (lp *statePool) createChannel(name string) chan lua.LValue {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	ch := make(chan lua.LValue, 10)
	lp.channels[name] = ch
	lp.gen++
	for _, ls := range lp.states {
		delete(lp.gens, ls)
		ls.Close()
	}
	lp.states = lp.states[:0]
	return ch
}
