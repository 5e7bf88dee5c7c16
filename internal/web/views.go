package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/colonyops/toaster/internal/core/toast"
	"github.com/colonyops/toaster/internal/toaster"
)

// ToastView is the wire form of a notification.
type ToastView struct {
	ID              string         `json:"id"`
	Kind            toast.Kind     `json:"kind"`
	Message         string         `json:"message"`
	CreatedAt       time.Time      `json:"created_at"`
	Visible         bool           `json:"visible"`
	Dismissed       bool           `json:"dismissed"`
	DurationMS      *int64         `json:"duration_ms"` // null never auto-dismisses
	PauseDurationMS int64          `json:"pause_duration_ms"`
	Position        toast.Position `json:"position,omitempty"`
	Height          int            `json:"height,omitempty"`
	Icon            string         `json:"icon,omitempty"`
	Offset          int            `json:"offset"`
}

// SurfaceView is the wire form of a surface snapshot.
type SurfaceView struct {
	Key     string      `json:"key"`
	Version uint64      `json:"version"`
	Paused  bool        `json:"paused"`
	Toasts  []ToastView `json:"toasts"`
}

// SurfaceSummary describes one known surface in GET /api/surfaces.
type SurfaceSummary struct {
	Key     string `json:"key"`
	Count   int    `json:"count"`
	Visible int    `json:"visible"`
	Paused  bool   `json:"paused"`
}

// SurfaceList is the body of GET /api/surfaces.
type SurfaceList struct {
	Surfaces []SurfaceSummary `json:"surfaces"`
}

func newSurfaceSummary(snap toaster.Snapshot) SurfaceSummary {
	sum := SurfaceSummary{
		Key:    snap.Key,
		Count:  len(snap.State.Toasts),
		Paused: snap.State.Paused(),
	}
	for _, n := range snap.State.Toasts {
		if n.Visible {
			sum.Visible++
		}
	}
	return sum
}

// HistoryView is the wire form of a history record.
type HistoryView struct {
	ID        int64      `json:"id"`
	ToastID   string     `json:"toast_id"`
	Surface   string     `json:"surface"`
	Kind      toast.Kind `json:"kind"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"created_at"`
}

func newSurfaceView(snap toaster.Snapshot, opts toaster.OffsetOptions) SurfaceView {
	toasts := snap.State.Toasts
	views := make([]ToastView, 0, len(toasts))
	for _, n := range toasts {
		v := ToastView{
			ID:              n.ID,
			Kind:            n.Kind,
			Message:         n.Text(),
			CreatedAt:       n.CreatedAt,
			Visible:         n.Visible,
			Dismissed:       n.Dismissed,
			PauseDurationMS: n.PauseDuration.Milliseconds(),
			Position:        n.Position.Or(opts.DefaultPosition),
			Height:          n.Height,
			Icon:            n.Icon,
			Offset:          toaster.CalculateOffset(toasts, n, opts),
		}
		if n.Duration != toast.Forever {
			ms := n.Duration.Milliseconds()
			v.DurationMS = &ms
		}
		views = append(views, v)
	}

	return SurfaceView{
		Key:     snap.Key,
		Version: snap.Version,
		Paused:  snap.State.Paused(),
		Toasts:  views,
	}
}

func newHistoryView(r toast.Record) HistoryView {
	return HistoryView{
		ID:        r.ID,
		ToastID:   r.ToastID,
		Surface:   r.Surface,
		Kind:      r.Kind,
		Message:   r.Message,
		CreatedAt: r.CreatedAt,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
