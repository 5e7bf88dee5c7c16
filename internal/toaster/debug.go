package toaster

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/toaster/internal/core/toast"
)

// RegisterDebugLogger registers hooks that log registry activity at debug level.
func RegisterDebugLogger(r *Registry, logger zerolog.Logger) {
	r.OnDispatch(func(key string, a toast.Action) {
		e := logger.Debug().Str("surface", key).Stringer("action", a.Type)
		switch a.Type {
		case toast.ActionAdd, toast.ActionUpdate, toast.ActionUpsert:
			e = e.Str("toast_id", a.Toast.ID)
		case toast.ActionDismiss, toast.ActionRemove:
			e = e.Str("toast_id", a.ID)
		}
		e.Msg("action dispatched")
	})

	r.OnSubscribe(func(key string) {
		logger.Debug().Str("surface", key).Msg("surface subscribed")
	})

	r.OnUnsubscribe(func(key string) {
		logger.Debug().Str("surface", key).Msg("surface unsubscribed")
	})

	r.OnPanic(func(key string, recovered any) {
		logger.Error().
			Str("surface", key).
			Str("panic", fmt.Sprint(recovered)).
			Msg("subscriber panicked")
	})
}
