package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/toaster/internal/core/toast"
	"github.com/colonyops/toaster/internal/data/db"
)

// HistoryStore implements toast.History using SQLite.
type HistoryStore struct {
	db        *db.DB
	retention int
}

var _ toast.History = (*HistoryStore)(nil)

// NewHistoryStore creates a SQLite-backed history. retention caps the number
// of rows kept; 0 keeps everything.
func NewHistoryStore(db *db.DB, retention int) *HistoryStore {
	return &HistoryStore{db: db, retention: retention}
}

// Save records a shown notification and returns its row ID, trimming the
// oldest rows beyond the retention cap in the same transaction.
func (s *HistoryStore) Save(ctx context.Context, r toast.Record) (int64, error) {
	var id int64
	err := s.db.WithTx(ctx, func(q *db.Queries) error {
		var err error
		id, err = q.InsertHistory(ctx, db.InsertHistoryParams{
			ToastID:   r.ToastID,
			Surface:   r.Surface,
			Kind:      string(r.Kind),
			Message:   r.Message,
			CreatedAt: r.CreatedAt.UnixNano(),
		})
		if err != nil {
			return fmt.Errorf("insert history: %w", err)
		}

		if s.retention > 0 {
			if _, err := q.TrimHistory(ctx, int64(s.retention)); err != nil {
				return fmt.Errorf("trim history: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

// Get returns the record with id. Returns toast.ErrNotFound if not found.
func (s *HistoryStore) Get(ctx context.Context, id int64) (toast.Record, error) {
	row, err := s.db.Queries().GetHistory(ctx, id)
	if IsNotFoundError(err) {
		return toast.Record{}, toast.ErrNotFound
	}
	if err != nil {
		return toast.Record{}, fmt.Errorf("get history: %w", err)
	}
	return rowToRecord(row), nil
}

// List returns up to limit records ordered by newest first. A limit <= 0
// returns every record.
func (s *HistoryStore) List(ctx context.Context, limit int) ([]toast.Record, error) {
	n := int64(limit)
	if limit <= 0 {
		n = -1
	}

	rows, err := s.db.Queries().ListHistory(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	result := make([]toast.Record, 0, len(rows))
	for _, row := range rows {
		result = append(result, rowToRecord(row))
	}
	return result, nil
}

// Clear deletes all records.
func (s *HistoryStore) Clear(ctx context.Context) error {
	if err := s.db.Queries().DeleteAllHistory(ctx); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Count returns the total number of records.
func (s *HistoryStore) Count(ctx context.Context) (int64, error) {
	count, err := s.db.Queries().CountHistory(ctx)
	if err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return count, nil
}

// SweepOlderThan deletes records created before cutoff and returns how many
// were removed.
func (s *HistoryStore) SweepOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := s.db.Queries().DeleteHistoryBefore(ctx, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("sweep history: %w", err)
	}
	return n, nil
}

func rowToRecord(row db.HistoryEntry) toast.Record {
	return toast.Record{
		ID:        row.ID,
		ToastID:   row.ToastID,
		Surface:   row.Surface,
		Kind:      toast.Kind(row.Kind),
		Message:   row.Message,
		CreatedAt: time.Unix(0, row.CreatedAt),
	}
}
