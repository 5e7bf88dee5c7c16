package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook copies surface and request_id from the event context onto log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	ctx := e.GetCtx()
	if ctx == nil || ctx == context.Background() {
		return
	}

	if surface := GetSurface(ctx); surface != "" {
		e.Str("surface", surface)
	}

	if requestID := GetRequestID(ctx); requestID != "" {
		e.Str("request_id", requestID)
	}
}
