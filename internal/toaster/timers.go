package toaster

import (
	"time"

	"github.com/colonyops/toaster/internal/core/toast"
)

type pendingTimer struct {
	cancel func()
}

// syncTimers reconciles the store's timers with its state and returns the
// ids of visible notifications whose countdown already ran out. Must be
// called with r.mu held.
//
// Auto-dismiss timers are rebuilt from scratch on every change so a pause or
// an upsert never leaves a stale deadline behind. They are cancelled before
// any removal timer is scheduled.
func (r *Registry) syncTimers(key string, st *store) []string {
	for id, p := range st.auto {
		p.cancel()
		delete(st.auto, id)
	}

	present := make(map[string]struct{}, len(st.state.Toasts))
	for _, t := range st.state.Toasts {
		present[t.ID] = struct{}{}

		p, scheduled := st.removal[t.ID]
		switch {
		case t.Dismissed && !scheduled:
			st.removal[t.ID] = r.scheduleRemoval(key, t.ID, r.removeDelayFor(t))
		case !t.Dismissed && scheduled:
			p.cancel()
			delete(st.removal, t.ID)
		}
	}

	for id, p := range st.removal {
		if _, ok := present[id]; !ok {
			p.cancel()
			delete(st.removal, id)
		}
	}

	if st.state.Paused() {
		return nil
	}

	var expired []string
	now := r.sched.Now()
	for _, t := range st.state.Toasts {
		if !t.Visible || t.Dismissed || t.Duration == toast.Forever {
			continue
		}

		remaining := t.Remaining(now)
		if remaining < 0 {
			expired = append(expired, t.ID)
			continue
		}
		st.auto[t.ID] = r.scheduleDismiss(key, t.ID, remaining)
	}

	return expired
}

func (r *Registry) removeDelayFor(t toast.Notification) time.Duration {
	if t.RemoveDelay > 0 {
		return t.RemoveDelay
	}
	return r.removeDelay
}

func (r *Registry) scheduleDismiss(key, id string, d time.Duration) *pendingTimer {
	p := &pendingTimer{}
	p.cancel = r.sched.After(d, func() {
		r.dispatch(key, toast.Dismiss(id), func(st *store) bool {
			if st.auto[id] != p {
				return false
			}
			delete(st.auto, id)
			return true
		})
	})
	return p
}

func (r *Registry) scheduleRemoval(key, id string, d time.Duration) *pendingTimer {
	p := &pendingTimer{}
	p.cancel = r.sched.After(d, func() {
		r.dispatch(key, toast.Remove(id), func(st *store) bool {
			if st.removal[id] != p {
				return false
			}
			delete(st.removal, id)
			return true
		})
	})
	return p
}

// cancelAll stops every timer of the store. Must be called with r.mu held.
func (st *store) cancelAll() {
	for id, p := range st.auto {
		p.cancel()
		delete(st.auto, id)
	}
	for id, p := range st.removal {
		p.cancel()
		delete(st.removal, id)
	}
}

// PendingTimers returns the number of auto-dismiss and removal timers
// scheduled for key.
func (r *Registry) PendingTimers(key string) (auto, removal int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.stores[normalizeKey(key)]
	if !ok {
		return 0, 0
	}
	return len(st.auto), len(st.removal)
}
