package toaster

import (
	"sync"

	"github.com/colonyops/toaster/internal/core/toast"
)

// hooks holds observer callbacks for registry activity.
type hooks struct {
	mu            sync.RWMutex
	onDispatch    []func(string, toast.Action)
	onSubscribe   []func(string)
	onUnsubscribe []func(string)
	onPanic       []func(string, any)
}

// OnDispatch registers a hook that fires after an action was applied to a store.
func (r *Registry) OnDispatch(fn func(key string, a toast.Action)) {
	r.hooks.mu.Lock()
	r.hooks.onDispatch = append(r.hooks.onDispatch, fn)
	r.hooks.mu.Unlock()
}

// OnSubscribe registers a hook that fires after a subscriber is registered.
func (r *Registry) OnSubscribe(fn func(key string)) {
	r.hooks.mu.Lock()
	r.hooks.onSubscribe = append(r.hooks.onSubscribe, fn)
	r.hooks.mu.Unlock()
}

// OnUnsubscribe registers a hook that fires after a subscriber is removed.
func (r *Registry) OnUnsubscribe(fn func(key string)) {
	r.hooks.mu.Lock()
	r.hooks.onUnsubscribe = append(r.hooks.onUnsubscribe, fn)
	r.hooks.mu.Unlock()
}

// OnPanic registers a hook that fires when a subscriber panics.
func (r *Registry) OnPanic(fn func(key string, recovered any)) {
	r.hooks.mu.Lock()
	r.hooks.onPanic = append(r.hooks.onPanic, fn)
	r.hooks.mu.Unlock()
}

func (h *hooks) runOnDispatch(key string, a toast.Action) {
	h.mu.RLock()
	fns := make([]func(string, toast.Action), len(h.onDispatch))
	copy(fns, h.onDispatch)
	h.mu.RUnlock()
	for _, fn := range fns {
		fn(key, a)
	}
}

func (h *hooks) runOnSubscribe(key string) {
	h.mu.RLock()
	fns := make([]func(string), len(h.onSubscribe))
	copy(fns, h.onSubscribe)
	h.mu.RUnlock()
	for _, fn := range fns {
		fn(key)
	}
}

func (h *hooks) runOnUnsubscribe(key string) {
	h.mu.RLock()
	fns := make([]func(string), len(h.onUnsubscribe))
	copy(fns, h.onUnsubscribe)
	h.mu.RUnlock()
	for _, fn := range fns {
		fn(key)
	}
}

func (h *hooks) runOnPanic(key string, recovered any) {
	h.mu.RLock()
	fns := make([]func(string, any), len(h.onPanic))
	copy(fns, h.onPanic)
	h.mu.RUnlock()
	for _, fn := range fns {
		func() {
			defer func() { recover() }() //nolint:errcheck
			fn(key, recovered)
		}()
	}
}
