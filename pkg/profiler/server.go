// Package profiler exposes net/http/pprof on a side listener so a running
// terminal or server surface can be profiled without touching its own router.
package profiler

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type Server struct {
	httpServer *http.Server
	listener   net.Listener
	addr       string
	log        zerolog.Logger
}

// New builds a profiler bound to addr. An addr with port 0 picks a free port.
func New(addr string, logger zerolog.Logger) *Server {
	r := chi.NewRouter()
	r.Get("/debug/pprof/cmdline", pprof.Cmdline)
	r.Get("/debug/pprof/profile", pprof.Profile)
	r.Get("/debug/pprof/symbol", pprof.Symbol)
	r.Post("/debug/pprof/symbol", pprof.Symbol)
	r.Get("/debug/pprof/trace", pprof.Trace)
	r.Get("/debug/pprof/*", pprof.Index)

	return &Server{
		httpServer: &http.Server{
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		addr: addr,
		log:  logger,
	}
}

// Start listens and serves in the background. It returns once the listener is
// bound or serving fails immediately.
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.listener = listener

	s.log.Info().Str("addr", listener.Addr().String()).Msg("starting profiler")

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("profiler failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down profiler")
	return s.httpServer.Shutdown(ctx)
}
