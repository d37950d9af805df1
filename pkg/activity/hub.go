package activity

import (
	"container/ring"
	"context"

	"github.com/runic/mailman/pkg/extension"
	"github.com/runic/mailman/pkg/extension/event"
)

// Length of hub operation queue
const opChanLen = 100

// Listener receives the contents of the history buffer, followed by new items
type Listener interface {
	Receive(item Item) error
}

// Hub relays activity items on to its listeners
type Hub struct {
	// history buffer, points next Item to write.  Proceeding non-nil entry is oldest Item
	history   *ring.Ring
	listeners map[Listener]struct{} // listeners interested in new items
	opChan    chan func(h *Hub)     // operations queued for this actor
}

// New constructs a new Hub which will cache historyLen items in memory for playback to future
// listeners, starting with seed (oldest first).  Items are not processed until Start is called.
func New(historyLen int, extHost *extension.Host, seed ...Item) *Hub {
	if historyLen < 1 {
		historyLen = 1
	}
	hub := &Hub{
		history:   ring.New(historyLen),
		listeners: make(map[Listener]struct{}),
		opChan:    make(chan func(h *Hub), opChanLen),
	}
	for _, item := range seed {
		hub.history.Value = item
		hub.history = hub.history.Next()
	}

	if extHost != nil {
		ev := extHost.Events
		ev.AfterConfigSaved.AddListener("activity", func(e event.ConfigSaved) {
			hub.Dispatch(configSavedItem(e))
		})
		ev.AfterServiceRestarted.AddListener("activity", func(e event.ServiceAction) {
			hub.Dispatch(serviceActionItem(e))
		})
		ev.AfterServiceReloaded.AddListener("activity", func(e event.ServiceAction) {
			hub.Dispatch(serviceActionItem(e))
		})
		ev.AfterStatusRefreshed.AddListener("activity", func(e event.StatusRefreshed) {
			hub.Dispatch(statusRefreshedItem(e))
		})
	}

	return hub
}

// Start Hub processing loop, it runs until ctx is canceled.
func (hub *Hub) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case op := <-hub.opChan:
			op(hub)
		}
	}
}

// Dispatch queues an item for broadcast by the hub.  The item will be placed into the history
// buffer and then relayed to all registered listeners.
func (hub *Hub) Dispatch(item Item) {
	hub.opChan <- func(h *Hub) {
		// Add to history buffer
		h.history.Value = item
		h.history = h.history.Next()

		// Deliver item to all listeners, removing listeners if they return an error
		for l := range h.listeners {
			if err := l.Receive(item); err != nil {
				delete(h.listeners, l)
			}
		}
	}
}

// AddListener registers a listener to receive broadcasted items.
func (hub *Hub) AddListener(l Listener) {
	hub.opChan <- func(h *Hub) {
		// Playback log
		failed := false
		h.history.Do(func(v any) {
			if v != nil && !failed {
				failed = l.Receive(v.(Item)) != nil
			}
		})
		if failed {
			return
		}

		// Add to listeners
		h.listeners[l] = struct{}{}
	}
}

// RemoveListener deletes a listener registration, it will cease to receive items.
func (hub *Hub) RemoveListener(l Listener) {
	hub.opChan <- func(h *Hub) {
		delete(h.listeners, l)
	}
}

// Recent returns up to n history items, newest first.  n <= 0 returns the whole history.
func (hub *Hub) Recent(ctx context.Context, n int) ([]Item, error) {
	result := make(chan []Item, 1)
	op := func(h *Hub) {
		items := make([]Item, 0, h.history.Len())
		// Walk backwards from the newest entry.
		for r := h.history.Prev(); len(items) < h.history.Len(); r = r.Prev() {
			if r.Value == nil {
				break
			}
			items = append(items, r.Value.(Item))
		}
		if n > 0 && len(items) > n {
			items = items[:n]
		}
		result <- items
	}
	select {
	case hub.opChan <- op:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case items := <-result:
		return items, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Sync blocks until the hub has processed its queue up to this point, useful for unit tests.
func (hub *Hub) Sync() {
	done := make(chan struct{})
	hub.opChan <- func(h *Hub) {
		close(done)
	}
	<-done
}
