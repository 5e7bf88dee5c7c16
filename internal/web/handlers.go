package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/colonyops/toaster/internal/core/toast"
	"github.com/colonyops/toaster/internal/toaster"
)

const maxBodyBytes = 64 << 10

// ShowRequest is the body of POST /api/surfaces/{key}/toasts.
type ShowRequest struct {
	Kind    toast.Kind `json:"kind"`
	Message string     `json:"message"`
	ID      string     `json:"id,omitempty"`
	// DurationMS overrides the kind default; zero keeps it and a negative
	// value never auto-dismisses.
	DurationMS    *int64         `json:"duration_ms,omitempty"`
	Position      toast.Position `json:"position,omitempty"`
	Icon          string         `json:"icon,omitempty"`
	RemoveDelayMS int64          `json:"remove_delay_ms,omitempty"`
}

// Validate checks the request and fills in the default kind.
func (req *ShowRequest) Validate() error {
	if req.Kind == "" {
		req.Kind = toast.KindBlank
	}
	if !req.Kind.Valid() {
		return fmt.Errorf("unknown kind %q", req.Kind)
	}
	if req.Message == "" {
		return errors.New("message is required")
	}
	if !req.Position.Valid() {
		return fmt.Errorf("unknown position %q", req.Position)
	}
	if req.RemoveDelayMS < 0 {
		return errors.New("remove_delay_ms must not be negative")
	}
	return nil
}

// Options converts the request into toaster options for key.
func (req *ShowRequest) Options(key string) []toaster.Option {
	opts := []toaster.Option{toaster.WithKey(key)}
	if req.ID != "" {
		opts = append(opts, toaster.WithID(req.ID))
	}
	if req.DurationMS != nil {
		d := time.Duration(*req.DurationMS) * time.Millisecond
		if *req.DurationMS < 0 {
			d = toast.Forever
		}
		opts = append(opts, toaster.WithDuration(d))
	}
	if req.Position != "" {
		opts = append(opts, toaster.WithPosition(req.Position))
	}
	if req.Icon != "" {
		opts = append(opts, toaster.WithIcon(req.Icon))
	}
	if req.RemoveDelayMS > 0 {
		opts = append(opts, toaster.WithRemoveDelay(time.Duration(req.RemoveDelayMS)*time.Millisecond))
	}
	return opts
}

// ShowResponse is returned when a notification is shown.
type ShowResponse struct {
	ID string `json:"id"`
}

// HeightRequest is the body of PUT /api/surfaces/{key}/toasts/{id}/height.
type HeightRequest struct {
	Height int `json:"height"`
}

func (s *Server) handleListSurfaces(w http.ResponseWriter, _ *http.Request) {
	keys := s.reg.Keys()
	list := SurfaceList{Surfaces: make([]SurfaceSummary, 0, len(keys))}
	for _, key := range keys {
		list.Surfaces = append(list.Surfaces, newSurfaceSummary(s.reg.Snapshot(key)))
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetSurface(w http.ResponseWriter, r *http.Request) {
	key := surfaceKey(r)
	reverse, _ := strconv.ParseBool(r.URL.Query().Get("reverse"))
	writeJSON(w, http.StatusOK, newSurfaceView(s.reg.Snapshot(key), s.offsetOptions(key, reverse)))
}

func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	var req ShowRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	key := surfaceKey(r)
	id := s.toaster.Show(req.Kind, toast.Static(req.Message), req.Options(key)...)

	s.logger.Info().Ctx(r.Context()).Str("toast_id", id).Str("kind", string(req.Kind)).Msg("notification shown")
	writeJSON(w, http.StatusCreated, ShowResponse{ID: id})
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	s.toaster.Dismiss(chi.URLParam(r, "id"), surfaceKey(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	s.toaster.Remove(chi.URLParam(r, "id"), surfaceKey(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDismissAll(w http.ResponseWriter, r *http.Request) {
	s.toaster.DismissAll(surfaceKey(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveAll(w http.ResponseWriter, r *http.Request) {
	s.toaster.RemoveAll(surfaceKey(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.reg.Pause(surfaceKey(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.reg.Resume(surfaceKey(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHeight(w http.ResponseWriter, r *http.Request) {
	var req HeightRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Height < 0 {
		writeError(w, http.StatusUnprocessableEntity, "height must not be negative")
		return
	}

	s.reg.UpdateHeight(surfaceKey(r), chi.URLParam(r, "id"), req.Height)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "history is disabled")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	records, err := s.history.List(r.Context(), limit)
	if err != nil {
		s.logger.Error().Ctx(r.Context()).Err(err).Msg("list history")
		writeError(w, http.StatusInternalServerError, "failed to list history")
		return
	}

	views := make([]HistoryView, 0, len(records))
	for _, rec := range records {
		views = append(views, newHistoryView(rec))
	}
	writeJSON(w, http.StatusOK, map[string][]HistoryView{"history": views})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "history is disabled")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	rec, err := s.history.Get(r.Context(), id)
	switch {
	case errors.Is(err, toast.ErrNotFound):
		writeError(w, http.StatusNotFound, "record not found")
	case err != nil:
		s.logger.Error().Ctx(r.Context()).Err(err).Int64("id", id).Msg("get history")
		writeError(w, http.StatusInternalServerError, "failed to get history record")
	default:
		writeJSON(w, http.StatusOK, newHistoryView(rec))
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
