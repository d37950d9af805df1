package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/runic/mailman/pkg/action"
	"github.com/runic/mailman/pkg/activity"
	"github.com/runic/mailman/pkg/extension"
	"github.com/runic/mailman/pkg/extension/event"
)

// ErrUnknownService indicates a service name that is not on the board.
var ErrUnknownService = errors.New("unknown service")

// Hook performs an action on the named service.
type Hook func(ctx context.Context, name string) error

// Hooks are the service actions triggered from the board.  Nil hooks do nothing.
type Hooks struct {
	Restart Hook
	Reload  Hook
}

// ActivitySource supplies recent activity for the overview.
type ActivitySource interface {
	Recent(ctx context.Context, n int) ([]activity.Item, error)
}

// recentLimit is the number of activity items shown on the home page.
const recentLimit = 4

// Board is the shared service status board.
type Board struct {
	mu         sync.RWMutex
	services   []ServiceStatus
	components []Component
	stats      MailStats

	refreshing   action.Flag
	refreshDelay time.Duration
	hooks        Hooks
	activity     ActivitySource // Optional.
	extHost      *extension.Host
}

// Option configures a Board.
type Option func(*Board)

// WithHooks sets the restart and reload hooks.
func WithHooks(h Hooks) Option {
	return func(b *Board) { b.hooks = h }
}

// WithActivity sets the source of overview activity.
func WithActivity(src ActivitySource) Option {
	return func(b *Board) { b.activity = src }
}

// WithServices replaces the seeded service statuses.
func WithServices(s []ServiceStatus) Option {
	return func(b *Board) { b.services = append([]ServiceStatus(nil), s...) }
}

// NewBoard returns a board seeded with the default statuses.  extHost may be nil.
func NewBoard(refreshDelay time.Duration, extHost *extension.Host, opts ...Option) *Board {
	b := &Board{
		services:     SeedStatus(),
		components:   SeedComponents(),
		stats:        SeedStats(),
		refreshDelay: refreshDelay,
		extHost:      extHost,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Services returns a copy of the service statuses.
func (b *Board) Services() []ServiceStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]ServiceStatus(nil), b.services...)
}

// Service returns the status of the named service.
func (b *Board) Service(name string) (ServiceStatus, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.services {
		if s.Name == name {
			return s, nil
		}
	}
	return ServiceStatus{}, fmt.Errorf("%w: %q", ErrUnknownService, name)
}

// Refreshing reports whether a refresh is in progress.
func (b *Board) Refreshing() bool {
	return b.refreshing.Busy()
}

// Refresh simulates polling every service.  The statuses are left unchanged.
func (b *Board) Refresh(ctx context.Context) error {
	err := action.Run(ctx, &b.refreshing, action.Delay(b.refreshDelay))
	if err != nil {
		return err
	}
	services := b.Services()
	names := make([]string, 0, len(services))
	for _, s := range services {
		names = append(names, s.Name)
	}
	log.Debug().Str("module", "dashboard").Int("services", len(names)).Msg("Status refreshed")
	b.emit(func(ev *extension.Events) {
		ev.AfterStatusRefreshed.Emit(&event.StatusRefreshed{Services: names, Time: time.Now()})
	})
	return nil
}

// Restart invokes the restart hook for the named service.
func (b *Board) Restart(ctx context.Context, name string) error {
	return b.serviceAction(ctx, name, event.ActionRestart, b.hooks.Restart)
}

// Reload invokes the reload hook for the named service.
func (b *Board) Reload(ctx context.Context, name string) error {
	return b.serviceAction(ctx, name, event.ActionReload, b.hooks.Reload)
}

func (b *Board) serviceAction(ctx context.Context, name, act string, hook Hook) error {
	if _, err := b.Service(name); err != nil {
		return err
	}
	if hook != nil {
		if err := hook(ctx, name); err != nil {
			return fmt.Errorf("%s %s: %w", act, name, err)
		}
	}
	log.Info().Str("module", "dashboard").Str("service", name).Str("action", act).
		Msg("Service action")
	b.emit(func(ev *extension.Events) {
		ev.AfterServiceAction(act).Emit(&event.ServiceAction{
			Service: name,
			Action:  act,
			Source:  event.SourceDashboard,
			Time:    time.Now(),
		})
	})
	return nil
}

func (b *Board) emit(f func(*extension.Events)) {
	if b.extHost != nil {
		f(b.extHost.Events)
	}
}

// Overview returns the home page data.
func (b *Board) Overview(ctx context.Context) (Overview, error) {
	b.mu.RLock()
	o := Overview{
		Components: append([]Component(nil), b.components...),
		Stats:      b.stats,
	}
	b.mu.RUnlock()
	if b.activity == nil {
		return o, nil
	}
	recent, err := b.activity.Recent(ctx, recentLimit)
	if err != nil {
		return o, err
	}
	o.Recent = recent
	return o, nil
}
