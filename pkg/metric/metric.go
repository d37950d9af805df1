// Package metric publishes expvar counters along with a rolling per-minute history.
package metric

import (
	"container/list"
	"expvar"
	"strings"
	"sync"
	"time"
)

// historyLen is one hour of samples plus one, the chart on the client tracks deltas between
// values and there is nothing to compare the first value against.
const historyLen = 61

// TickerFunc is the function signature accepted by AddTickerFunc, will be called once per minute.
type TickerFunc func()

var tickerFuncChan = make(chan TickerFunc)

func init() {
	go metricsTicker()
}

// AddTickerFunc adds a new function callback to the list of metrics TickerFuncs that get
// called each minute.
func AddTickerFunc(f TickerFunc) {
	tickerFuncChan <- f
}

// Push adds the metric to the end of the list and returns a comma separated string of the
// previous entries.
func Push(history *list.List, ev expvar.Var) string {
	history.PushBack(ev.String())
	if history.Len() > historyLen {
		history.Remove(history.Front())
	}
	return joinStringList(history)
}

// Counter is an expvar total paired with its minute history, published as <name>Total and
// <name>Hist in an expvar map.
type Counter struct {
	total   *expvar.Int
	mu      sync.Mutex
	history *list.List
	hist    *expvar.String
}

// NewCounter registers a counter in m and starts sampling it once per minute.
func NewCounter(m *expvar.Map, name string) *Counter {
	c := &Counter{
		total:   new(expvar.Int),
		history: list.New(),
		hist:    new(expvar.String),
	}
	m.Set(name+"Total", c.total)
	m.Set(name+"Hist", c.hist)
	AddTickerFunc(c.sample)
	return c
}

// Add increments the counter by delta.
func (c *Counter) Add(delta int64) {
	c.total.Add(delta)
}

// Value returns the current total.
func (c *Counter) Value() int64 {
	return c.total.Value()
}

// History returns the sampled values, oldest first.
func (c *Counter) History() string {
	return c.hist.Value()
}

func (c *Counter) sample() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hist.Set(Push(c.history, c.total))
}

// metricsTicker calls the current list of TickerFuncs once per minute.
func metricsTicker() {
	funcs := make([]TickerFunc, 0)
	ticker := time.NewTicker(time.Minute)

	for {
		select {
		case <-ticker.C:
			for _, f := range funcs {
				f()
			}
		case f := <-tickerFuncChan:
			funcs = append(funcs, f)
		}
	}
}

// joinStringList joins a List containing strings by commas.
func joinStringList(listOfStrings *list.List) string {
	if listOfStrings.Len() == 0 {
		return ""
	}
	s := make([]string, 0, listOfStrings.Len())
	for e := listOfStrings.Front(); e != nil; e = e.Next() {
		s = append(s, e.Value.(string))
	}
	return strings.Join(s, ",")
}
