// Package toaster runs notification surfaces: a registry of per-key toast
// stores with subscribers and timers, and the facade used to show, dismiss
// and remove notifications.
package toaster

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/colonyops/toaster/internal/core/toast"
)

// SettingsFunc resolves the store settings for a surface key.
type SettingsFunc func(key string) toast.Settings

// Snapshot is the state of one surface after a dispatch. Version increases
// with every dispatch across the registry, so a consumer can discard a
// snapshot older than one it has already seen. The toast slice is shared and
// must not be modified.
type Snapshot struct {
	Key     string
	Version uint64
	State   toast.State
}

// Registry holds one toast store per surface key. Stores are created lazily
// on first use and live until the registry is closed.
type Registry struct {
	sched       toast.Scheduler
	settings    SettingsFunc
	removeDelay time.Duration

	mu      sync.Mutex
	stores  map[string]*store
	version uint64
	closed  bool

	subMu sync.Mutex
	subs  []*Subscription

	hooks hooks
}

type store struct {
	state   toast.State
	auto    map[string]*pendingTimer
	removal map[string]*pendingTimer
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithScheduler sets the clock and timer source.
func WithScheduler(s toast.Scheduler) RegistryOption {
	return func(r *Registry) {
		r.sched = s
	}
}

// WithSettings sets the per-surface settings resolver.
func WithSettings(fn SettingsFunc) RegistryOption {
	return func(r *Registry) {
		r.settings = fn
	}
}

// WithDefaultRemoveDelay sets the dismiss-to-remove delay used when a
// notification doesn't carry its own.
func WithDefaultRemoveDelay(d time.Duration) RegistryOption {
	return func(r *Registry) {
		r.removeDelay = d
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		sched:       toast.SystemScheduler,
		settings:    func(string) toast.Settings { return toast.Settings{Limit: toast.DefaultLimit} },
		removeDelay: toast.DefaultRemoveDelay,
		stores:      make(map[string]*store),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Now returns the registry clock reading.
func (r *Registry) Now() time.Time {
	return r.sched.Now()
}

// Dispatch applies a to the store for key and notifies the key's subscribers
// before returning. An empty key addresses toast.DefaultKey.
func (r *Registry) Dispatch(key string, a toast.Action) {
	r.dispatch(normalizeKey(key), a, nil)
}

// Broadcast dispatches a to every existing store.
func (r *Registry) Broadcast(a toast.Action) {
	for _, key := range r.Keys() {
		r.dispatch(key, a, nil)
	}
}

// dispatch runs the reducer under the lock. guard, when set, runs under the
// same lock and can veto the action.
func (r *Registry) dispatch(key string, a toast.Action, guard func(*store) bool) {
	snap, expired, ok := r.apply(key, a, guard)
	if !ok {
		return
	}

	r.hooks.runOnDispatch(key, a)
	r.notify(snap)

	for _, id := range expired {
		r.dispatch(key, toast.Dismiss(id), nil)
	}
}

func (r *Registry) apply(key string, a toast.Action, guard func(*store) bool) (Snapshot, []string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return Snapshot{}, nil, false
	}

	st := r.storeFor(key)
	if guard != nil && !guard(st) {
		return Snapshot{}, nil, false
	}

	st.state = toast.Reduce(st.state, a)
	r.version++
	expired := r.syncTimers(key, st)

	return Snapshot{Key: key, Version: r.version, State: st.state}, expired, true
}

// storeFor returns the store for key, creating it if needed. Must be called
// with r.mu held.
func (r *Registry) storeFor(key string) *store {
	st, ok := r.stores[key]
	if !ok {
		st = &store{
			state:   toast.NewState(r.settings(key)),
			auto:    make(map[string]*pendingTimer),
			removal: make(map[string]*pendingTimer),
		}
		r.stores[key] = st
	}
	return st
}

// State returns the current state of the store for key. Reading does not
// create the store.
func (r *Registry) State(key string) toast.State {
	key = normalizeKey(key)

	r.mu.Lock()
	defer r.mu.Unlock()

	if st, ok := r.stores[key]; ok {
		return st.state
	}
	return toast.NewState(r.settings(key))
}

// Snapshot returns the current state of key together with the registry version.
func (r *Registry) Snapshot(key string) Snapshot {
	key = normalizeKey(key)

	r.mu.Lock()
	defer r.mu.Unlock()

	state := toast.NewState(r.settings(key))
	if st, ok := r.stores[key]; ok {
		state = st.state
	}
	return Snapshot{Key: key, Version: r.version, State: state}
}

// Keys returns the keys of every existing store, sorted.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(r.stores))
	for k := range r.stores {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// KeyOf returns the key of the first store (in key order) holding a
// notification with id, or "" when none does.
func (r *Registry) KeyOf(id string) string {
	if id == "" {
		return ""
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(r.stores))
	for k := range r.stores {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		if _, ok := r.stores[k].state.Find(id); ok {
			return k
		}
	}
	return ""
}

// Close cancels every pending timer and drops all subscribers. Dispatches
// after Close are ignored.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	for _, st := range r.stores {
		st.cancelAll()
	}
	r.mu.Unlock()

	r.subMu.Lock()
	subs := r.subs
	r.subs = nil
	r.subMu.Unlock()

	for _, s := range subs {
		s.active.Store(false)
	}
}

// Subscription is a registered (key, callback) pair.
type Subscription struct {
	reg    *Registry
	key    string
	fn     func(Snapshot)
	active atomic.Bool
}

// Key returns the surface key the subscription listens to.
func (s *Subscription) Key() string {
	return s.key
}

// Unsubscribe removes the subscription. It is safe to call more than once and
// from inside the subscription's own callback.
func (s *Subscription) Unsubscribe() {
	s.reg.Unsubscribe(s)
}

// Subscribe registers fn for every dispatch on key. An empty key addresses
// toast.DefaultKey.
func (r *Registry) Subscribe(key string, fn func(Snapshot)) *Subscription {
	s := &Subscription{reg: r, key: normalizeKey(key), fn: fn}
	s.active.Store(true)

	r.subMu.Lock()
	r.subs = append(r.subs, s)
	r.subMu.Unlock()

	r.hooks.runOnSubscribe(s.key)
	return s
}

// Unsubscribe removes s from the registry.
func (r *Registry) Unsubscribe(s *Subscription) {
	if s == nil || !s.active.CompareAndSwap(true, false) {
		return
	}

	r.subMu.Lock()
	r.subs = slices.DeleteFunc(r.subs, func(other *Subscription) bool { return other == s })
	r.subMu.Unlock()

	r.hooks.runOnUnsubscribe(s.key)
}

// notify calls every subscriber of snap.Key on a copy of the subscriber list.
func (r *Registry) notify(snap Snapshot) {
	r.subMu.Lock()
	subs := make([]*Subscription, len(r.subs))
	copy(subs, r.subs)
	r.subMu.Unlock()

	for _, s := range subs {
		if s.key != snap.Key || !s.active.Load() {
			continue
		}
		r.call(s, snap)
	}
}

func (r *Registry) call(s *Subscription, snap Snapshot) {
	defer func() {
		if rec := recover(); rec != nil {
			r.hooks.runOnPanic(snap.Key, rec)
		}
	}()
	s.fn(snap)
}

func normalizeKey(key string) string {
	if key == "" {
		return toast.DefaultKey
	}
	return key
}
