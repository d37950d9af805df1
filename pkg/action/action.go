// Package action models the Idle -> Busy -> Idle lifecycle shared by the save, restart and
// refresh operations of the dashboard.
package action

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrBusy indicates the action is already in progress.
var ErrBusy = errors.New("action already in progress")

// Task is one unit of asynchronous work standing in for a backend round trip.
type Task func(ctx context.Context) error

// Flag is a single-step lockout; the zero value is idle.
type Flag struct {
	mu   sync.Mutex
	busy bool
}

// Begin transitions the flag from idle to busy, returning false if it was already busy.
func (f *Flag) Begin() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return false
	}
	f.busy = true
	return true
}

// End returns the flag to idle.
func (f *Flag) End() {
	f.mu.Lock()
	f.busy = false
	f.mu.Unlock()
}

// Busy reports whether an action is in progress.
func (f *Flag) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

// Run executes task while holding flag busy.  The task is detached from cancellation of ctx, once
// started it always runs to completion.
func Run(ctx context.Context, flag *Flag, task Task) error {
	if !flag.Begin() {
		return ErrBusy
	}
	defer flag.End()
	if task == nil {
		return nil
	}
	return task(context.WithoutCancel(ctx))
}

// Delay returns a Task that completes after d.
func Delay(d time.Duration) Task {
	return func(ctx context.Context) error {
		if d <= 0 {
			return nil
		}
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
