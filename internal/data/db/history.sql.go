package db

import "context"

// HistoryEntry is a row of the history table. Timestamps are unix nanoseconds.
type HistoryEntry struct {
	ID        int64
	ToastID   string
	Surface   string
	Kind      string
	Message   string
	CreatedAt int64
}

// InsertHistoryParams are the columns written by InsertHistory.
type InsertHistoryParams struct {
	ToastID   string
	Surface   string
	Kind      string
	Message   string
	CreatedAt int64
}

const insertHistory = `
INSERT INTO history (toast_id, surface, kind, message, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id`

func (q *Queries) InsertHistory(ctx context.Context, arg InsertHistoryParams) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, insertHistory,
		arg.ToastID, arg.Surface, arg.Kind, arg.Message, arg.CreatedAt,
	).Scan(&id)
	return id, err
}

const getHistory = `
SELECT id, toast_id, surface, kind, message, created_at
FROM history
WHERE id = ?`

func (q *Queries) GetHistory(ctx context.Context, id int64) (HistoryEntry, error) {
	var e HistoryEntry
	err := q.db.QueryRowContext(ctx, getHistory, id).Scan(
		&e.ID, &e.ToastID, &e.Surface, &e.Kind, &e.Message, &e.CreatedAt,
	)
	return e, err
}

// listHistory orders by id as a tiebreaker for rows sharing a timestamp.
// A negative limit returns every row.
const listHistory = `
SELECT id, toast_id, surface, kind, message, created_at
FROM history
ORDER BY created_at DESC, id DESC
LIMIT ?`

func (q *Queries) ListHistory(ctx context.Context, limit int64) ([]HistoryEntry, error) {
	rows, err := q.db.QueryContext(ctx, listHistory, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.ToastID, &e.Surface, &e.Kind, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countHistory = `SELECT COUNT(*) FROM history`

func (q *Queries) CountHistory(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countHistory).Scan(&count)
	return count, err
}

const deleteAllHistory = `DELETE FROM history`

func (q *Queries) DeleteAllHistory(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllHistory)
	return err
}

// trimHistory keeps the newest keep rows.
const trimHistory = `
DELETE FROM history
WHERE id NOT IN (
	SELECT id FROM history
	ORDER BY created_at DESC, id DESC
	LIMIT ?
)`

func (q *Queries) TrimHistory(ctx context.Context, keep int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, trimHistory, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteHistoryBefore = `DELETE FROM history WHERE created_at < ?`

func (q *Queries) DeleteHistoryBefore(ctx context.Context, before int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteHistoryBefore, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
