package repository

import (
	"context"
	"database/sql"
	"time"
)

// Media kinds derived from the upload content type.
const (
	MediaKindImage = "image"
	MediaKindVideo = "video"
)

// MediaItem mirrors the 'media_items' table.  Rows are created on upload and
// deleted on request or via the account cascade; they are never updated.
type MediaItem struct {
	ID        uint64
	AccountID uint64
	Kind      string
	Path      string
	CreatedAt time.Time
}

type MediaRepo struct{ DB *sql.DB }

func NewMediaRepo(db *sql.DB) *MediaRepo { return &MediaRepo{DB: db} }

// Create inserts a media row and returns its ID.
func (r *MediaRepo) Create(ctx context.Context, accountID uint64, kind, path string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO media_items (account_id, kind, path) VALUES (?,?,?)",
		accountID, kind, path)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListByAccountID returns all media for an account, newest first.
func (r *MediaRepo) ListByAccountID(ctx context.Context, accountID uint64) ([]MediaItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,account_id,kind,path,created_at FROM media_items WHERE account_id=? ORDER BY created_at DESC, id DESC",
		accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []MediaItem{}
	for rows.Next() {
		var m MediaItem
		if err := rows.Scan(&m.ID, &m.AccountID, &m.Kind, &m.Path, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// FindByID fetches a single media row.
func (r *MediaRepo) FindByID(ctx context.Context, id uint64) (MediaItem, error) {
	var m MediaItem
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,account_id,kind,path,created_at FROM media_items WHERE id=? LIMIT 1",
		id).Scan(&m.ID, &m.AccountID, &m.Kind, &m.Path, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return MediaItem{}, ErrNotFound
	}
	return m, err
}

// DeleteByID removes a single media row.
func (r *MediaRepo) DeleteByID(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM media_items WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByAccountID removes every media row for an account.  Part of the
// account deletion cascade; zero rows deleted is a valid outcome.
func (r *MediaRepo) DeleteByAccountID(ctx context.Context, accountID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM media_items WHERE account_id=?", accountID)
	return err
}
