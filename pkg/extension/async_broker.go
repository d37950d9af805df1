package extension

import (
	"fmt"
	"slices"
	"sync"
	"time"
)

type asyncListener[E any] struct {
	name string
	fn   func(E)
}

// AsyncEventBroker maintains an ordered list of named listeners for one event type.  Each event is
// delivered to every listener on its own goroutine, and no result is returned.
type AsyncEventBroker[E any] struct {
	mu        sync.RWMutex
	listeners []asyncListener[E]
	inflight  sync.WaitGroup
}

// Emit sends a copy of the event to each registered listener.  A nil event is ignored.
func (eb *AsyncEventBroker[E]) Emit(event *E) {
	if event == nil {
		return
	}
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, l := range eb.listeners {
		eb.inflight.Add(1)
		go func(fn func(E), ev E) {
			defer eb.inflight.Done()
			fn(ev)
		}(l.fn, *event)
	}
}

// Wait blocks until every listener call started by Emit has returned.
func (eb *AsyncEventBroker[E]) Wait() {
	eb.inflight.Wait()
}

// Listeners returns the names of the registered listeners, in priority order.
func (eb *AsyncEventBroker[E]) Listeners() []string {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	names := make([]string, len(eb.listeners))
	for i, l := range eb.listeners {
		names[i] = l.name
	}
	return names
}

// AddListener registers the named listener, replacing one with a duplicate name if present.
// Listeners should be added in order of priority, most significant first.
func (eb *AsyncEventBroker[E]) AddListener(name string, listener func(E)) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.lockedRemoveListener(name)
	eb.listeners = append(eb.listeners, asyncListener[E]{name, listener})
}

// RemoveListener unregisters the named listener.
func (eb *AsyncEventBroker[E]) RemoveListener(name string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.lockedRemoveListener(name)
}

func (eb *AsyncEventBroker[E]) lockedRemoveListener(name string) {
	eb.listeners = slices.DeleteFunc(eb.listeners, func(l asyncListener[E]) bool {
		return l.name == name
	})
}

// AsyncTestListener registers a listener buffering up to capacity events, and returns a func that
// waits up to two seconds for the next one.  The listener is removed once capacity events have
// been read.
func (eb *AsyncEventBroker[E]) AsyncTestListener(name string, capacity int) func() (*E, error) {
	return eb.AsyncTestListenerTimeout(name, capacity, 2*time.Second)
}

// AsyncTestListenerTimeout is AsyncTestListener with a caller supplied timeout.
func (eb *AsyncEventBroker[E]) AsyncTestListenerTimeout(name string, capacity int,
	timeout time.Duration) func() (*E, error) {
	events := make(chan E, capacity)
	eb.AddListener(name, func(ev E) { events <- ev })

	read := 0
	return func() (*E, error) {
		read++
		if read >= capacity {
			defer eb.RemoveListener(name)
		}
		select {
		case ev := <-events:
			return &ev, nil
		case <-time.After(timeout):
			return nil, fmt.Errorf("timeout waiting for %s event", name)
		}
	}
}
