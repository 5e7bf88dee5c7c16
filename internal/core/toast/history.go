package toast

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a history record does not exist.
var ErrNotFound = errors.New("not found")

// Record is one entry of the notification history: a notification as it was
// shown at a point in time.
type Record struct {
	ID        int64
	ToastID   string
	Surface   string
	Kind      Kind
	Message   string
	CreatedAt time.Time
}

// History persists shown notifications to durable storage.
type History interface {
	Save(ctx context.Context, r Record) (int64, error)
	// Get returns the record with id, or ErrNotFound.
	Get(ctx context.Context, id int64) (Record, error)
	// List returns up to limit records, newest first. A limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]Record, error)
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}
