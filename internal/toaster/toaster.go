package toaster

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/colonyops/toaster/internal/core/toast"
)

// IDFunc generates notification ids.
type IDFunc func() string

// Config configures a Toaster.
type Config struct {
	// IDFunc generates ids for notifications created without WithID.
	// Defaults to random UUIDs.
	IDFunc IDFunc
	// Durations overrides the per-kind auto-dismiss durations.
	Durations map[toast.Kind]time.Duration
	// History, when set, records every shown notification.
	History toast.History
	Logger  zerolog.Logger
}

// Toaster is the facade used to show, dismiss and remove notifications.
// Its methods never fail: unknown ids are ignored and history failures are
// logged.
type Toaster struct {
	reg       *Registry
	newID     IDFunc
	durations map[toast.Kind]time.Duration
	history   toast.History
	logger    zerolog.Logger
}

// New creates a Toaster dispatching to reg.
func New(reg *Registry, cfg Config) *Toaster {
	t := &Toaster{
		reg:       reg,
		newID:     cfg.IDFunc,
		durations: cfg.Durations,
		history:   cfg.History,
		logger:    cfg.Logger,
	}
	if t.newID == nil {
		t.newID = uuid.NewString
	}
	return t
}

// Registry returns the registry the toaster dispatches to.
func (t *Toaster) Registry() *Registry {
	return t.reg
}

// Option customizes a single notification.
type Option func(*options)

type options struct {
	id          string
	key         string
	duration    time.Duration
	position    toast.Position
	removeDelay time.Duration
	icon        string
}

// WithID sets the notification id. Showing a notification with the id of an
// existing one replaces it in place.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithKey selects the surface the notification is shown on.
func WithKey(key string) Option {
	return func(o *options) { o.key = key }
}

// WithDuration overrides the auto-dismiss duration. Use toast.Forever to keep
// the notification until it is dismissed. Zero keeps the kind default.
func WithDuration(d time.Duration) Option {
	return func(o *options) { o.duration = d }
}

// WithPosition overrides the surface's default position.
func WithPosition(p toast.Position) Option {
	return func(o *options) { o.position = p }
}

// WithRemoveDelay overrides the delay between dismissal and removal.
func WithRemoveDelay(d time.Duration) Option {
	return func(o *options) { o.removeDelay = d }
}

// WithIcon sets an icon override for renderers.
func WithIcon(icon string) Option {
	return func(o *options) { o.icon = icon }
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Notify shows a blank notification and returns its id.
func (t *Toaster) Notify(msg toast.Message, opts ...Option) string {
	return t.Show(toast.KindBlank, msg, opts...)
}

// Success shows a success notification and returns its id.
func (t *Toaster) Success(msg toast.Message, opts ...Option) string {
	return t.Show(toast.KindSuccess, msg, opts...)
}

// Error shows an error notification and returns its id.
func (t *Toaster) Error(msg toast.Message, opts ...Option) string {
	return t.Show(toast.KindError, msg, opts...)
}

// Loading shows a loading notification, which never auto-dismisses unless a
// duration is given, and returns its id.
func (t *Toaster) Loading(msg toast.Message, opts ...Option) string {
	return t.Show(toast.KindLoading, msg, opts...)
}

// Custom shows a custom notification and returns its id.
func (t *Toaster) Custom(msg toast.Message, opts ...Option) string {
	return t.Show(toast.KindCustom, msg, opts...)
}

// Show creates or replaces a notification of kind and returns its id. The
// surface is the one given by WithKey, else the one already holding the id,
// else toast.DefaultKey.
func (t *Toaster) Show(kind toast.Kind, msg toast.Message, opts ...Option) string {
	o := collect(opts)

	id := o.id
	if id == "" {
		id = t.newID()
	}

	key := o.key
	if key == "" {
		key = t.reg.KeyOf(id)
	}
	key = normalizeKey(key)

	n := toast.Notification{
		ID:        id,
		Kind:      kind,
		Message:   msg,
		CreatedAt: t.reg.Now(),
		Visible:   true,
		Duration:  t.duration(kind),
	}
	fields := toast.FieldsShow | toast.FieldDuration

	if o.duration != 0 {
		n.Duration = o.duration
	}
	if o.position != "" {
		n.Position = o.position
		fields |= toast.FieldPosition
	}
	if o.removeDelay > 0 {
		n.RemoveDelay = o.removeDelay
		fields |= toast.FieldRemoveDelay
	}
	if o.icon != "" {
		n.Icon = o.icon
		fields |= toast.FieldIcon
	}

	t.reg.Dispatch(key, toast.Upsert(n, fields))
	t.record(key, n)

	return id
}

// Dismiss starts the exit of the notification with id on key. An empty id
// dismisses every notification; an empty key applies to every surface.
func (t *Toaster) Dismiss(id, key string) {
	t.send(key, toast.Dismiss(id))
}

// DismissAll dismisses every notification on key, or on every surface when
// key is empty.
func (t *Toaster) DismissAll(key string) {
	t.Dismiss("", key)
}

// Remove deletes the notification with id immediately, skipping the exit
// delay. Empty id and key widen the scope as for Dismiss.
func (t *Toaster) Remove(id, key string) {
	t.send(key, toast.Remove(id))
}

// RemoveAll clears key, or every surface when key is empty.
func (t *Toaster) RemoveAll(key string) {
	t.Remove("", key)
}

func (t *Toaster) send(key string, a toast.Action) {
	if key == "" {
		t.reg.Broadcast(a)
		return
	}
	t.reg.Dispatch(key, a)
}

func (t *Toaster) duration(kind toast.Kind) time.Duration {
	if d, ok := t.durations[kind]; ok && d > 0 {
		return d
	}
	return toast.DefaultDuration(kind)
}

func (t *Toaster) record(key string, n toast.Notification) {
	if t.history == nil {
		return
	}

	_, err := t.history.Save(context.Background(), toast.Record{
		ToastID:   n.ID,
		Surface:   key,
		Kind:      n.Kind,
		Message:   n.Text(),
		CreatedAt: n.CreatedAt,
	})
	if err != nil {
		t.logger.Error().Err(err).Str("toast_id", n.ID).Msg("failed to record notification")
	}
}
