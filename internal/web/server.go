// Package web exposes notification surfaces over HTTP and WebSocket.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/colonyops/toaster/internal/core/toast"
	"github.com/colonyops/toaster/internal/toaster"
)

const shutdownTimeout = 5 * time.Second

// Config configures a Server.
type Config struct {
	// AllowedOrigins lists browser origins allowed for CORS and WebSocket
	// upgrades. "*" allows any origin. Requests without an Origin header are
	// always allowed.
	AllowedOrigins []string
	// Gutter is the spacing used when computing stack offsets. Zero uses
	// toaster.DefaultGutter and a negative value stacks without spacing.
	Gutter int
	// PositionFor returns the default position of notifications on a surface.
	PositionFor func(key string) toast.Position
	// Gatherer serves /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	// PingInterval is the WebSocket keepalive interval.
	PingInterval time.Duration
}

// Server serves the toaster HTTP API.
type Server struct {
	toaster  *toaster.Toaster
	reg      *toaster.Registry
	history  toast.History
	cfg      Config
	logger   zerolog.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	streams  map[*stream]struct{}
	hovering map[string]int // paused streams per surface key
}

// New creates a server. history may be nil when history is disabled.
func New(t *toaster.Toaster, history toast.History, cfg Config, logger zerolog.Logger) *Server {
	if cfg.PositionFor == nil {
		cfg.PositionFor = func(string) toast.Position { return "" }
	}
	switch {
	case cfg.Gutter == 0:
		cfg.Gutter = toaster.DefaultGutter
	case cfg.Gutter < 0:
		cfg.Gutter = 0
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}

	s := &Server{
		toaster: t,
		reg:     t.Registry(),
		history: history,
		cfg:     cfg,
		logger:  logger,
		streams:  make(map[*stream]struct{}),
		hovering: make(map[string]int),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return s.originAllowed(r.Header.Get("Origin")) },
	}
	return s
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.cors)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/surfaces", s.handleListSurfaces)

		r.Route("/surfaces/{key}", func(r chi.Router) {
			r.Use(surfaceContext)

			r.Get("/toasts", s.handleGetSurface)
			r.Post("/toasts", s.handleShow)
			r.Delete("/toasts", s.handleRemoveAll)
			r.Post("/dismiss", s.handleDismissAll)
			r.Post("/pause", s.handlePause)
			r.Post("/resume", s.handleResume)
			r.Get("/ws", s.handleStream)

			r.Route("/toasts/{id}", func(r chi.Router) {
				r.Post("/dismiss", s.handleDismiss)
				r.Delete("/", s.handleRemove)
				r.Put("/height", s.handleHeight)
			})
		})

		r.Get("/history", s.handleListHistory)
		r.Get("/history/{id}", s.handleGetHistory)
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and closes open streams.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.CloseStreams()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// CloseStreams closes every open WebSocket stream.
func (s *Server) CloseStreams() {
	s.mu.Lock()
	streams := make([]*stream, 0, len(s.streams))
	for st := range s.streams {
		streams = append(streams, st)
	}
	s.mu.Unlock()

	for _, st := range streams {
		st.close()
	}
}

// StreamCount returns the number of open WebSocket streams.
func (s *Server) StreamCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.streams)
}

func (s *Server) offsetOptions(key string, reverse bool) toaster.OffsetOptions {
	return toaster.OffsetOptions{
		ReverseOrder:    reverse,
		Gutter:          s.cfg.Gutter,
		DefaultPosition: s.cfg.PositionFor(key),
	}
}
