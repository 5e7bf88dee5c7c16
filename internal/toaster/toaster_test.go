package toaster

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/toaster/internal/core/toast"
	"github.com/colonyops/toaster/internal/core/toast/toasttest"
)

// memHistory is an in-memory toast.History for tests.
type memHistory struct {
	mu      sync.Mutex
	records []toast.Record
	err     error
}

func (m *memHistory) Save(_ context.Context, r toast.Record) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	r.ID = int64(len(m.records) + 1)
	m.records = append(m.records, r)
	return r.ID, nil
}

func (m *memHistory) List(_ context.Context, limit int) ([]toast.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]toast.Record, 0, len(m.records))
	for i := len(m.records) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *memHistory) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	return nil
}

func (m *memHistory) Get(_ context.Context, id int64) (toast.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id < 1 || int(id) > len(m.records) {
		return toast.Record{}, toast.ErrNotFound
	}
	return m.records[id-1], nil
}

func (m *memHistory) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.records)), nil
}

func TestToaster_NotifyDefaults(t *testing.T) {
	tt, reg, _ := newTestToaster(t)

	id := tt.Notify(toast.Static("hello"))
	require.Equal(t, "1", id)

	n := find(t, reg, toast.DefaultKey, id)
	assert.Equal(t, toast.KindBlank, n.Kind)
	assert.Equal(t, "hello", n.Text())
	assert.Equal(t, t0, n.CreatedAt)
	assert.True(t, n.Visible)
	assert.False(t, n.Dismissed)
	assert.Equal(t, 4*time.Second, n.Duration)
	assert.Empty(t, n.Position)
}

func TestToaster_Kinds(t *testing.T) {
	tt, reg, _ := newTestToaster(t)

	tests := []struct {
		id       string
		kind     toast.Kind
		duration time.Duration
	}{
		{tt.Success(toast.Static("s")), toast.KindSuccess, 2 * time.Second},
		{tt.Error(toast.Static("e")), toast.KindError, 4 * time.Second},
		{tt.Loading(toast.Static("l")), toast.KindLoading, toast.Forever},
		{tt.Custom(toast.Static("c")), toast.KindCustom, 4 * time.Second},
	}

	for _, tc := range tests {
		n := find(t, reg, "", tc.id)
		assert.Equal(t, tc.kind, n.Kind)
		assert.Equal(t, tc.duration, n.Duration, string(tc.kind))
	}

	// Newest first.
	toasts := reg.State("").Toasts
	require.Len(t, toasts, 4)
	assert.Equal(t, tests[3].id, toasts[0].ID)
}

func TestToaster_Options(t *testing.T) {
	tt, reg, _ := newTestToaster(t)

	id := tt.Error(toast.Static("e"),
		WithID("fixed"),
		WithKey("modal"),
		WithDuration(toast.Forever),
		WithPosition(toast.PositionBottomCenter),
		WithRemoveDelay(300*time.Millisecond),
		WithIcon("🔥"),
	)
	require.Equal(t, "fixed", id)
	assert.Empty(t, reg.State("").Toasts)

	n := find(t, reg, "modal", id)
	assert.Equal(t, toast.Forever, n.Duration)
	assert.Equal(t, toast.PositionBottomCenter, n.Position)
	assert.Equal(t, 300*time.Millisecond, n.RemoveDelay)
	assert.Equal(t, "🔥", n.Icon)
}

func TestToaster_ZeroDurationUsesKindDefault(t *testing.T) {
	tt, reg, sched := newTestToaster(t)

	id := tt.Success(toast.Static("saved"), WithDuration(0))
	assert.Equal(t, 2*time.Second, find(t, reg, "", id).Duration)

	sched.Advance(time.Second)
	assert.True(t, find(t, reg, "", id).Visible, "zero must not dismiss at once")

	sched.Advance(time.Second)
	assert.True(t, find(t, reg, "", id).Dismissed)
}

func TestToaster_ConfiguredDurations(t *testing.T) {
	sched := toasttest.NewScheduler(t0)
	reg := NewRegistry(WithScheduler(sched))
	t.Cleanup(reg.Close)

	tt := New(reg, Config{Durations: map[toast.Kind]time.Duration{
		toast.KindSuccess: 10 * time.Second,
	}})

	id := tt.Success(toast.Static("ok"))
	assert.NotEmpty(t, id, "uuid ids by default")
	assert.Equal(t, 10*time.Second, find(t, reg, "", id).Duration)

	id = tt.Error(toast.Static("no"))
	assert.Equal(t, 4*time.Second, find(t, reg, "", id).Duration)
}

func TestToaster_ShowKeepsExistingSurface(t *testing.T) {
	tt, reg, _ := newTestToaster(t)

	id := tt.Loading(toast.Static("saving"), WithKey("modal"), WithPosition(toast.PositionTopLeft))
	reg.Dispatch("modal", toast.Update(toast.Notification{ID: id, Height: 40}, toast.FieldHeight))

	tt.Success(toast.Static("saved"), WithID(id))

	assert.Empty(t, reg.State("").Toasts)
	n := find(t, reg, "modal", id)
	assert.Equal(t, toast.KindSuccess, n.Kind)
	assert.Equal(t, 40, n.Height, "height survives replacement")
	assert.Equal(t, toast.PositionTopLeft, n.Position, "position survives replacement")
}

func TestToaster_DismissScope(t *testing.T) {
	tt, reg, _ := newTestToaster(t)

	a := tt.Loading(toast.Static("a"), WithKey("left"))
	b := tt.Loading(toast.Static("b"), WithKey("right"))

	tt.Dismiss(a, "right")
	assert.False(t, find(t, reg, "left", a).Dismissed, "keyed dismiss only touches its surface")

	tt.Dismiss(a, "")
	assert.True(t, find(t, reg, "left", a).Dismissed)
	assert.False(t, find(t, reg, "right", b).Dismissed)

	tt.Dismiss("unknown", "")
	assert.Len(t, reg.State("left").Toasts, 1)
}

func TestToaster_DismissAllAndRemoveAll(t *testing.T) {
	tt, reg, _ := newTestToaster(t)

	tt.Loading(toast.Static("a"), WithKey("left"))
	tt.Loading(toast.Static("b"), WithKey("left"))
	tt.Loading(toast.Static("c"), WithKey("right"))

	tt.DismissAll("left")
	for _, n := range reg.State("left").Toasts {
		assert.True(t, n.Dismissed)
	}
	assert.False(t, reg.State("right").Toasts[0].Dismissed)

	tt.RemoveAll("")
	assert.Empty(t, reg.State("left").Toasts)
	assert.Empty(t, reg.State("right").Toasts)
}

func TestToaster_RemoveKeyed(t *testing.T) {
	tt, reg, _ := newTestToaster(t)

	id := tt.Loading(toast.Static("a"), WithKey("left"))
	tt.Remove(id, "right")
	find(t, reg, "left", id)

	tt.Remove(id, "left")
	assert.Empty(t, reg.State("left").Toasts)
}

func TestToaster_RecordsHistory(t *testing.T) {
	sched := toasttest.NewScheduler(t0)
	reg := NewRegistry(WithScheduler(sched))
	t.Cleanup(reg.Close)

	hist := &memHistory{}
	tt := New(reg, Config{History: hist})

	tt.Success(toast.Static("saved"), WithKey("editor"), WithID("a"))
	tt.Error(toast.Computed(func(n toast.Notification) string { return "failed " + n.ID }), WithID("b"))

	records, err := hist.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "b", records[0].ToastID)
	assert.Equal(t, toast.DefaultKey, records[0].Surface)
	assert.Equal(t, toast.KindError, records[0].Kind)
	assert.Equal(t, "failed b", records[0].Message)

	assert.Equal(t, "editor", records[1].Surface)
	assert.Equal(t, t0, records[1].CreatedAt)
}

func TestToaster_HistoryErrorsDoNotBlock(t *testing.T) {
	_, reg, _ := newTestToaster(t)

	tt := New(reg, Config{History: &memHistory{err: errors.New("disk full")}})

	id := tt.Notify(toast.Static("still shown"))
	find(t, reg, "", id)
}
