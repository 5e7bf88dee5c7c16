package toaster

import (
	"slices"
	"sync"

	"github.com/colonyops/toaster/internal/core/toast"
)

// DefaultGutter is the spacing, in renderer units, between stacked notifications.
const DefaultGutter = 8

// Surface is a mounted consumer of one store: it tracks the latest state and
// exposes the controls a renderer needs.
type Surface struct {
	reg      *Registry
	key      string
	sub      *Subscription
	onChange func(Snapshot)

	mu   sync.Mutex
	snap Snapshot
}

// Mount subscribes a surface to key. onChange, if not nil, is called after
// every newer snapshot is received.
func (r *Registry) Mount(key string, onChange func(Snapshot)) *Surface {
	s := &Surface{
		reg:      r,
		key:      normalizeKey(key),
		onChange: onChange,
	}
	s.sub = r.Subscribe(s.key, s.receive)

	initial := r.Snapshot(s.key)
	s.mu.Lock()
	if initial.Version >= s.snap.Version {
		s.snap = initial
	}
	s.mu.Unlock()

	return s
}

func (s *Surface) receive(snap Snapshot) {
	s.mu.Lock()
	if snap.Version <= s.snap.Version {
		s.mu.Unlock()
		return
	}
	s.snap = snap
	s.mu.Unlock()

	if s.onChange != nil {
		s.onChange(snap)
	}
}

// Key returns the surface key.
func (s *Surface) Key() string {
	return s.key
}

// Snapshot returns the latest snapshot seen by the surface.
func (s *Surface) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Notifications returns a copy of the surface's notifications, most recent first.
func (s *Surface) Notifications() []toast.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.snap.State.Toasts)
}

// Paused reports whether the surface's countdowns are suspended.
func (s *Surface) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.State.Paused()
}

// Pause suspends every countdown on the surface, e.g. while the pointer
// hovers the notification area.
func (s *Surface) Pause() {
	s.reg.Pause(s.key)
}

// Resume restarts the countdowns suspended by Pause. Paused time is not
// counted against any notification.
func (s *Surface) Resume() {
	s.reg.Resume(s.key)
}

// UpdateHeight records the rendered height of the notification with id.
func (s *Surface) UpdateHeight(id string, height int) {
	s.reg.UpdateHeight(s.key, id, height)
}

// CalculateOffset returns the stacking offset of n among the surface's
// current notifications.
func (s *Surface) CalculateOffset(n toast.Notification, opts OffsetOptions) int {
	s.mu.Lock()
	toasts := s.snap.State.Toasts
	s.mu.Unlock()
	return CalculateOffset(toasts, n, opts)
}

// Close unsubscribes the surface. It is safe to call more than once.
func (s *Surface) Close() {
	s.sub.Unsubscribe()
}

// OffsetOptions controls CalculateOffset.
type OffsetOptions struct {
	// ReverseOrder stacks older notifications first.
	ReverseOrder bool
	// Gutter is the spacing added after each notification.
	Gutter int
	// DefaultPosition applies to notifications without a position.
	DefaultPosition toast.Position
}

// CalculateOffset returns the distance from the stack origin to target: the
// sum of height plus gutter of the visible, measured notifications sharing
// target's position that precede it (or follow it with ReverseOrder).
func CalculateOffset(toasts []toast.Notification, target toast.Notification, opts OffsetOptions) int {
	pos := target.Position.Or(opts.DefaultPosition)

	var relevant []toast.Notification
	for _, t := range toasts {
		if t.Position.Or(opts.DefaultPosition) == pos && t.Height > 0 {
			relevant = append(relevant, t)
		}
	}

	idx := slices.IndexFunc(relevant, func(t toast.Notification) bool { return t.ID == target.ID })

	before := 0
	for i, t := range relevant {
		if i < idx && t.Visible {
			before++
		}
	}

	visible := slices.DeleteFunc(slices.Clone(relevant), func(t toast.Notification) bool { return !t.Visible })

	var stacked []toast.Notification
	if opts.ReverseOrder {
		if before+1 < len(visible) {
			stacked = visible[before+1:]
		}
	} else {
		stacked = visible[:min(before, len(visible))]
	}

	offset := 0
	for _, t := range stacked {
		offset += t.Height + opts.Gutter
	}
	return offset
}

// Pause suspends every countdown on key.
func (r *Registry) Pause(key string) {
	r.Dispatch(key, toast.StartPause(r.Now()))
}

// Resume restarts the countdowns of key if it is paused.
func (r *Registry) Resume(key string) {
	if !r.State(key).Paused() {
		return
	}
	r.Dispatch(key, toast.EndPause(r.Now()))
}

// UpdateHeight records the rendered height of the notification with id on key.
func (r *Registry) UpdateHeight(key, id string, height int) {
	r.Dispatch(key, toast.Update(toast.Notification{ID: id, Height: height}, toast.FieldHeight))
}
