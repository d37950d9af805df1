package action

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagBeginEnd(t *testing.T) {
	var f Flag
	assert.False(t, f.Busy())
	assert.True(t, f.Begin())
	assert.True(t, f.Busy())
	assert.False(t, f.Begin(), "second Begin should be refused")
	f.End()
	assert.False(t, f.Busy())
	assert.True(t, f.Begin())
}

func TestRunRefusesReentry(t *testing.T) {
	var f Flag
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error)

	go func() {
		done <- Run(context.Background(), &f, func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	err := Run(context.Background(), &f, Delay(0))
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, f.Busy())
}

func TestRunIgnoresCancel(t *testing.T) {
	var f Flag
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Run(ctx, &f, Delay(20*time.Millisecond))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestRunReturnsTaskError(t *testing.T) {
	var f Flag
	want := errors.New("backend down")
	err := Run(context.Background(), &f, func(context.Context) error { return want })
	assert.ErrorIs(t, err, want)
	assert.False(t, f.Busy(), "flag must return to idle after failure")
}
