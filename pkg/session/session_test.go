package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runic/mailman/pkg/catalog"
	"github.com/runic/mailman/pkg/catalog/mem"
	"github.com/runic/mailman/pkg/config"
	"github.com/runic/mailman/pkg/editor"
	"github.com/runic/mailman/pkg/wizard"
)

func testFactory() Factory {
	store := mem.New(catalog.DefaultSeed(), nil)
	return func(string) (*wizard.Wizard, *editor.Editor) {
		return wizard.New(wizard.ServerDetails{Hostname: "mx"}),
			editor.New(store, &editor.MockBackend{Store: store}, time.Second)
	}
}

// clock is a settable time source.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestOpen(t *testing.T) {
	r := NewRegistry(testFactory())

	s, created := r.Open("")
	require.True(t, created)
	assert.NotEmpty(t, s.ID)
	require.NotNil(t, s.Wizard)
	require.NotNil(t, s.Editor)

	again, created := r.Open(s.ID)
	assert.False(t, created)
	assert.Same(t, s, again)

	other, created := r.Open("forged-or-expired")
	assert.True(t, created)
	assert.NotEqual(t, "forged-or-expired", other.ID, "unknown ids are never adopted")
	assert.Equal(t, 2, r.Len())

	r.Remove(s.ID)
	_, ok := r.Lookup(s.ID)
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len())
}

func TestSessionsAreIndependent(t *testing.T) {
	r := NewRegistry(testFactory())
	a, _ := r.Open("")
	b, _ := r.Open("")
	a.Wizard.Next()
	require.NoError(t, a.Editor.SelectService("dovecot"))

	assert.Equal(t, 1, a.Wizard.Current())
	assert.Equal(t, 0, b.Wizard.Current())
	svc, _ := b.Editor.Selection()
	assert.Equal(t, "postfix", svc)
}

func TestReaperDoScan(t *testing.T) {
	c := &clock{t: time.Now()}
	r := NewRegistry(testFactory())
	r.now = c.now

	old, _ := r.Open("")
	c.t = c.t.Add(90 * time.Minute)
	fresh, _ := r.Open("")
	c.t = c.t.Add(31 * time.Minute)

	reaper := NewReaper(config.Session{MaxIdle: 2 * time.Hour, ReapInterval: time.Minute}, r)
	assert.Equal(t, 1, reaper.DoScan())

	_, ok := r.Lookup(old.ID)
	assert.False(t, ok)
	_, ok = r.Lookup(fresh.ID)
	assert.True(t, ok)

	// Lookup refreshed the surviving session.
	c.t = c.t.Add(time.Hour + 59*time.Minute)
	assert.Equal(t, 0, reaper.DoScan())
}

func TestReaperStartJoin(t *testing.T) {
	r := NewRegistry(testFactory())
	ctx, cancel := context.WithCancel(context.Background())
	reaper := NewReaper(config.Session{MaxIdle: time.Hour, ReapInterval: 10 * time.Millisecond}, r)
	reaper.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		reaper.Join()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not shut down")
	}
}

func TestReaperDisabled(t *testing.T) {
	reaper := NewReaper(config.Session{}, NewRegistry(testFactory()))
	reaper.Start(context.Background())
	reaper.Join() // Returns immediately.
}

func TestRegistryLimitEvictsLeastRecentlySeen(t *testing.T) {
	c := &clock{t: time.Now()}
	r := NewRegistry(testFactory(), WithLimit(2))
	r.now = c.now

	a, _ := r.Open("")
	c.t = c.t.Add(time.Minute)
	b, _ := r.Open("")
	c.t = c.t.Add(time.Minute)
	_, ok := r.Lookup(a.ID) // a is now more recent than b.
	require.True(t, ok)
	c.t = c.t.Add(time.Minute)

	for range 5 {
		r.Open("")
		c.t = c.t.Add(time.Minute)
		assert.LessOrEqual(t, r.Len(), 2)
	}
	_, ok = r.Lookup(b.ID)
	assert.False(t, ok, "least recently seen session dropped first")
}
