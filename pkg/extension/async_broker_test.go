package extension_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/runic/mailman/pkg/extension"
	"github.com/runic/mailman/pkg/extension/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Simple smoke test without using AsyncTestListener.
func TestAsyncBrokerEmitCallsOneListener(t *testing.T) {
	broker := &extension.AsyncEventBroker[event.ConfigSaved]{}

	events := make(chan event.ConfigSaved, 1)
	broker.AddListener("x", func(ev event.ConfigSaved) {
		events <- ev
	})

	want := event.ConfigSaved{Service: "postfix", File: "main.cf", Size: 42}
	broker.Emit(&want)

	select {
	case got := <-events:
		assert.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for event")
	}
}

func TestAsyncBrokerEmitCallsMultipleListeners(t *testing.T) {
	broker := &extension.AsyncEventBroker[event.ServiceAction]{}

	first := broker.AsyncTestListener("first", 1)
	second := broker.AsyncTestListener("second", 1)
	assert.Equal(t, []string{"first", "second"}, broker.Listeners())

	want := event.ServiceAction{Service: "Dovecot", Action: event.ActionReload}
	broker.Emit(&want)

	firstGot, err := first()
	require.NoError(t, err)
	assert.Equal(t, want, *firstGot)

	secondGot, err := second()
	require.NoError(t, err)
	assert.Equal(t, want, *secondGot)
}

func TestAsyncBrokerAddingDuplicateNameReplacesPrevious(t *testing.T) {
	broker := &extension.AsyncEventBroker[event.StatusRefreshed]{}

	first := broker.AsyncTestListenerTimeout("dup", 1, 100*time.Millisecond)
	second := broker.AsyncTestListener("dup", 1)
	assert.Equal(t, []string{"dup"}, broker.Listeners())

	want := event.StatusRefreshed{Services: []string{"Postfix"}}
	broker.Emit(&want)

	firstGot, err := first()
	require.Error(t, err)
	assert.Nil(t, firstGot)

	secondGot, err := second()
	require.NoError(t, err)
	assert.Equal(t, want, *secondGot)
}

func TestAsyncBrokerRemovingListenerSuccessful(t *testing.T) {
	broker := &extension.AsyncEventBroker[event.ConfigSaved]{}

	first := broker.AsyncTestListenerTimeout("1", 1, 100*time.Millisecond)
	second := broker.AsyncTestListener("2", 1)
	broker.RemoveListener("1")

	want := event.ConfigSaved{Service: "rspamd"}
	broker.Emit(&want)

	firstGot, err := first()
	require.Error(t, err)
	assert.Nil(t, firstGot)

	secondGot, err := second()
	require.NoError(t, err)
	assert.Equal(t, want, *secondGot)
}

func TestAsyncBrokerRemovingMissingListener(t *testing.T) {
	broker := &extension.AsyncEventBroker[event.ConfigSaved]{}
	broker.RemoveListener("doesn't crash")
	broker.Emit(nil)
}

func TestHostServiceActionBroker(t *testing.T) {
	host := extension.NewHost()
	assert.Same(t, &host.Events.AfterServiceRestarted,
		host.Events.AfterServiceAction(event.ActionRestart))
	assert.Same(t, &host.Events.AfterServiceReloaded,
		host.Events.AfterServiceAction(event.ActionReload))
	assert.Nil(t, host.Events.AfterServiceAction("stop"))
}

func TestAsyncBrokerWaitForListeners(t *testing.T) {
	broker := &extension.AsyncEventBroker[string]{}
	release := make(chan struct{})
	var got atomic.Int32
	broker.AddListener("slow", func(string) {
		<-release
		got.Add(1)
	})

	s := "hello"
	broker.Emit(&s)
	broker.Emit(&s)
	waited := make(chan struct{})
	go func() {
		broker.Wait()
		close(waited)
	}()
	select {
	case <-waited:
		t.Fatal("Wait returned before listeners finished")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-waited
	assert.Equal(t, int32(2), got.Load())
}
