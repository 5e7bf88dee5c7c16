// Package toast defines transient notifications ("toasts") and the pure
// reducer that manages the notification list of a single surface.
package toast

import (
	"math"
	"time"
)

// Kind is the semantic type of a notification.
type Kind string

const (
	KindBlank   Kind = "blank"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindLoading Kind = "loading"
	KindCustom  Kind = "custom"
)

// Kinds lists every supported kind in display order.
var Kinds = []Kind{KindBlank, KindSuccess, KindError, KindLoading, KindCustom}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindBlank, KindSuccess, KindError, KindLoading, KindCustom:
		return true
	}
	return false
}

// Position is a placement hint for renderers.
type Position string

const (
	PositionTopLeft      Position = "top-left"
	PositionTopCenter    Position = "top-center"
	PositionTopRight     Position = "top-right"
	PositionBottomLeft   Position = "bottom-left"
	PositionBottomCenter Position = "bottom-center"
	PositionBottomRight  Position = "bottom-right"
)

// Valid reports whether p is a known position. The empty position is valid
// and means "use the surface default".
func (p Position) Valid() bool {
	switch p {
	case "", PositionTopLeft, PositionTopCenter, PositionTopRight,
		PositionBottomLeft, PositionBottomCenter, PositionBottomRight:
		return true
	}
	return false
}

// Or returns p, or fallback when p is empty.
func (p Position) Or(fallback Position) Position {
	if p == "" {
		return fallback
	}
	return p
}

const (
	// DefaultKey is the surface used when no key is given.
	DefaultKey = "default"
	// DefaultLimit caps the number of notifications kept per surface.
	DefaultLimit = 20
	// DefaultRemoveDelay is the time between dismissal and removal.
	DefaultRemoveDelay = time.Second
	// Forever disables auto-dismiss.
	Forever time.Duration = math.MaxInt64
)

// DefaultDuration returns the auto-dismiss duration for k when none is configured.
func DefaultDuration(k Kind) time.Duration {
	switch k {
	case KindSuccess:
		return 2 * time.Second
	case KindLoading:
		return Forever
	default:
		return 4 * time.Second
	}
}

// Message is the content of a notification. It is either a Static value or a
// Computed function of the notification's current state.
type Message interface {
	Render(n Notification) string
}

// Static is a fixed message.
type Static string

func (s Static) Render(Notification) string { return string(s) }

// Computed renders the message from the current notification state.
type Computed func(n Notification) string

func (c Computed) Render(n Notification) string {
	if c == nil {
		return ""
	}
	return c(n)
}

// Notification is a single toast.
type Notification struct {
	ID            string
	Kind          Kind
	Message       Message
	CreatedAt     time.Time
	Visible       bool
	Dismissed     bool
	Duration      time.Duration
	PauseDuration time.Duration
	Position      Position
	RemoveDelay   time.Duration
	Height        int
	Icon          string
}

// Text renders the notification's message.
func (n Notification) Text() string {
	if n.Message == nil {
		return ""
	}
	return n.Message.Render(n)
}

// Remaining returns the time left before n auto-dismisses, measured at now.
// Notifications that never expire return Forever.
func (n Notification) Remaining(now time.Time) time.Duration {
	if n.Duration == Forever {
		return Forever
	}
	return n.Duration + n.PauseDuration - now.Sub(n.CreatedAt)
}

// Settings are per-surface store settings.
type Settings struct {
	Limit int
}

// State is the notification list of one surface.
type State struct {
	// Toasts is ordered most recent first.
	Toasts   []Notification
	PausedAt time.Time
	Settings Settings
}

// NewState returns an empty state using settings.
func NewState(settings Settings) State {
	return State{Settings: settings}
}

// Paused reports whether the surface's countdowns are suspended.
func (s State) Paused() bool {
	return !s.PausedAt.IsZero()
}

// Find returns the notification with id.
func (s State) Find(id string) (Notification, bool) {
	for _, t := range s.Toasts {
		if t.ID == id {
			return t, true
		}
	}
	return Notification{}, false
}
