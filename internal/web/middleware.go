package web

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/colonyops/toaster/internal/core/logging"
)

type surfaceKeyCtx struct{}

// surfaceContext decodes the {key} route parameter. Keys may contain "/"
// when sent percent-encoded.
func surfaceContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, err := url.PathUnescape(chi.URLParam(r, "key"))
		if err != nil || strings.TrimSpace(key) == "" {
			writeError(w, http.StatusBadRequest, "invalid surface key")
			return
		}

		ctx := context.WithValue(r.Context(), surfaceKeyCtx{}, key)
		ctx = logging.WithSurface(ctx, key)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func surfaceKey(r *http.Request) string {
	key, _ := r.Context().Value(surfaceKeyCtx{}).(string)
	return key
}

// requestLogger logs every request with zerolog once it completes.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		r = r.WithContext(ctx)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.logger.Debug().
			Ctx(r.Context()).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// cors answers preflight requests and sets CORS headers for allowed origins.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-Id")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	if origin == "" {
		return true
	}
	return slices.Contains(s.cfg.AllowedOrigins, "*") || slices.Contains(s.cfg.AllowedOrigins, origin)
}
