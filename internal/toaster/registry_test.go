package toaster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/toaster/internal/core/toast"
)

func blank(id string) toast.Notification {
	return toast.Notification{
		ID:        id,
		Kind:      toast.KindBlank,
		Message:   toast.Static("msg " + id),
		CreatedAt: t0,
		Visible:   true,
		Duration:  toast.Forever,
	}
}

func TestRegistry_DispatchNotifiesMatchingSubscribers(t *testing.T) {
	_, reg, _ := newTestToaster(t)

	var defaultSnaps, modalSnaps []Snapshot
	reg.Subscribe("", func(s Snapshot) { defaultSnaps = append(defaultSnaps, s) })
	reg.Subscribe("modal", func(s Snapshot) { modalSnaps = append(modalSnaps, s) })

	reg.Dispatch("", toast.Add(blank("1")))

	// Subscribers run before Dispatch returns.
	require.Len(t, defaultSnaps, 1)
	assert.Empty(t, modalSnaps)
	assert.Equal(t, toast.DefaultKey, defaultSnaps[0].Key)
	assert.Len(t, defaultSnaps[0].State.Toasts, 1)
}

func TestRegistry_SnapshotVersionsIncrease(t *testing.T) {
	_, reg, _ := newTestToaster(t)

	var versions []uint64
	reg.Subscribe("", func(s Snapshot) { versions = append(versions, s.Version) })

	reg.Dispatch("", toast.Add(blank("1")))
	reg.Dispatch("other", toast.Add(blank("2")))
	reg.Dispatch("", toast.Dismiss("1"))

	require.Len(t, versions, 2)
	assert.Less(t, versions[0], versions[1])
}

func TestRegistry_UnsubscribeDuringBroadcast(t *testing.T) {
	_, reg, _ := newTestToaster(t)

	var calls []string
	var self, later *Subscription

	self = reg.Subscribe("", func(Snapshot) {
		calls = append(calls, "self")
		self.Unsubscribe()
		later.Unsubscribe()
	})
	reg.Subscribe("", func(Snapshot) { calls = append(calls, "stays") })
	later = reg.Subscribe("", func(Snapshot) { calls = append(calls, "later") })

	reg.Dispatch("", toast.Add(blank("1")))
	reg.Dispatch("", toast.Add(blank("2")))

	assert.Equal(t, []string{"self", "stays", "stays"}, calls)
}

func TestRegistry_UnsubscribeIsIdempotent(t *testing.T) {
	_, reg, _ := newTestToaster(t)

	unsubscribed := 0
	reg.OnUnsubscribe(func(string) { unsubscribed++ })

	sub := reg.Subscribe("", func(Snapshot) {})
	sub.Unsubscribe()
	sub.Unsubscribe()
	reg.Unsubscribe(sub)
	reg.Unsubscribe(nil)

	assert.Equal(t, 1, unsubscribed)
}

func TestRegistry_SubscriberMayDispatch(t *testing.T) {
	_, reg, _ := newTestToaster(t)

	reg.Subscribe("", func(s Snapshot) {
		if len(s.State.Toasts) == 1 && s.State.Toasts[0].ID == "1" {
			reg.Dispatch("mirror", toast.Add(blank("1")))
		}
	})

	reg.Dispatch("", toast.Add(blank("1")))

	assert.Len(t, reg.State("mirror").Toasts, 1)
}

func TestRegistry_SubscriberPanicIsRecovered(t *testing.T) {
	_, reg, _ := newTestToaster(t)

	var panics []any
	reg.OnPanic(func(_ string, rec any) { panics = append(panics, rec) })

	called := false
	reg.Subscribe("", func(Snapshot) { panic("boom") })
	reg.Subscribe("", func(Snapshot) { called = true })

	reg.Dispatch("", toast.Add(blank("1")))

	assert.True(t, called)
	assert.Equal(t, []any{"boom"}, panics)
}

func TestRegistry_StoresAreLazy(t *testing.T) {
	_, reg, _ := newTestToaster(t)

	assert.Empty(t, reg.Keys())
	assert.Empty(t, reg.State("nowhere").Toasts)
	assert.Empty(t, reg.Keys(), "reading does not create a store")

	reg.Dispatch("b", toast.Add(blank("1")))
	reg.Dispatch("a", toast.Add(blank("2")))

	assert.Equal(t, []string{"a", "b"}, reg.Keys())
}

func TestRegistry_Broadcast(t *testing.T) {
	_, reg, _ := newTestToaster(t)

	reg.Dispatch("a", toast.Add(blank("1")))
	reg.Dispatch("b", toast.Add(blank("2")))

	reg.Broadcast(toast.Dismiss(""))

	for _, key := range []string{"a", "b"} {
		for _, n := range reg.State(key).Toasts {
			assert.True(t, n.Dismissed, "surface %s", key)
		}
	}
}

func TestRegistry_KeyOf(t *testing.T) {
	_, reg, _ := newTestToaster(t)

	reg.Dispatch("modal", toast.Add(blank("42")))

	assert.Equal(t, "modal", reg.KeyOf("42"))
	assert.Empty(t, reg.KeyOf("7"))
	assert.Empty(t, reg.KeyOf(""))
}

func TestRegistry_WithSettings(t *testing.T) {
	reg := NewRegistry(WithSettings(func(key string) toast.Settings {
		if key == "modal" {
			return toast.Settings{Limit: 1}
		}
		return toast.Settings{Limit: toast.DefaultLimit}
	}))
	t.Cleanup(reg.Close)

	for _, id := range []string{"1", "2", "3"} {
		reg.Dispatch("modal", toast.Add(blank(id)))
		reg.Dispatch("", toast.Add(blank(id)))
	}

	require.Len(t, reg.State("modal").Toasts, 1)
	assert.Equal(t, "3", reg.State("modal").Toasts[0].ID)
	assert.Len(t, reg.State("").Toasts, 3)
}

func TestRegistry_Close(t *testing.T) {
	tt, reg, sched := newTestToaster(t)

	tt.Notify(toast.Static("a"))
	tt.Notify(toast.Static("b"))
	tt.Dismiss("1", "")
	require.Positive(t, sched.Pending())

	called := false
	reg.Subscribe("", func(Snapshot) { called = true })

	reg.Close()

	assert.Zero(t, sched.Pending())

	reg.Dispatch("", toast.Add(blank("9")))
	assert.False(t, called, "dispatch after close is ignored")
	_, ok := reg.State("").Find("9")
	assert.False(t, ok)
}
