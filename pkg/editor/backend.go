package editor

import (
	"context"
	"time"

	"github.com/runic/mailman/pkg/action"
	"github.com/runic/mailman/pkg/catalog"
	"github.com/runic/mailman/pkg/extension"
	"github.com/runic/mailman/pkg/extension/event"
)

// Backend applies editor changes to the mail server.
type Backend interface {
	// Save persists the content of f.
	Save(ctx context.Context, f catalog.ConfigFile) error
	// Restart restarts the service with the given catalogue id.
	Restart(ctx context.Context, service string) error
}

// MockBackend stands in for a real mail server: it waits a fixed delay, then updates the catalogue
// store.  Restart has no effect besides the after-restart event.
type MockBackend struct {
	Store        catalog.Store
	ExtHost      *extension.Host // Optional.
	SaveDelay    time.Duration
	RestartDelay time.Duration
}

var _ Backend = &MockBackend{}

// Save implements Backend.
func (b *MockBackend) Save(ctx context.Context, f catalog.ConfigFile) error {
	if err := action.Delay(b.SaveDelay)(ctx); err != nil {
		return err
	}
	return b.Store.Update(f.Service, f.Name, f.Content)
}

// Restart implements Backend.
func (b *MockBackend) Restart(ctx context.Context, service string) error {
	svc, err := b.Store.Service(service)
	if err != nil {
		return err
	}
	if err := action.Delay(b.RestartDelay)(ctx); err != nil {
		return err
	}
	if b.ExtHost != nil {
		b.ExtHost.Events.AfterServiceRestarted.Emit(&event.ServiceAction{
			Service: svc.Name,
			Action:  event.ActionRestart,
			Source:  event.SourceEditor,
			Time:    time.Now(),
		})
	}
	return nil
}
