package extension

import (
	"github.com/runic/mailman/pkg/extension/event"
)

// Host defines extension points for Runic Mailman.
type Host struct {
	Events *Events
}

// Events defines all the event types supported by the extension host.
//
// After-events allow extensions to take an action after an editor or dashboard action has
// completed.  They are processed asynchronously with respect to the request that caused them.
type Events struct {
	AfterConfigSaved      AsyncEventBroker[event.ConfigSaved]
	AfterServiceRestarted AsyncEventBroker[event.ServiceAction]
	AfterServiceReloaded  AsyncEventBroker[event.ServiceAction]
	AfterStatusRefreshed  AsyncEventBroker[event.StatusRefreshed]
}

// NewHost creates a new extension host.
func NewHost() *Host {
	return &Host{Events: &Events{}}
}

// AfterServiceAction returns the broker for the named service action, or nil if the action is not
// known.
func (e *Events) AfterServiceAction(action string) *AsyncEventBroker[event.ServiceAction] {
	switch action {
	case event.ActionRestart:
		return &e.AfterServiceRestarted
	case event.ActionReload:
		return &e.AfterServiceReloaded
	}
	return nil
}

// Wait blocks until all in-flight after-event listener calls have returned.
func (h *Host) Wait() {
	e := h.Events
	e.AfterConfigSaved.Wait()
	e.AfterServiceRestarted.Wait()
	e.AfterServiceReloaded.Wait()
	e.AfterStatusRefreshed.Wait()
}
