package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// Account mirrors the 'accounts' table: the credential store.  The password
// hash never leaves this layer except for login verification.
type Account struct {
	ID           uint64
	Name         string
	Email        string
	PasswordHash string
	IsManager    bool
	CreatedAt    time.Time
}

type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

// Create inserts an account and returns its ID.  The email is normalized to
// lower case before storage so lookups stay case-insensitive.
func (r *AccountRepo) Create(ctx context.Context, name, email, passwordHash string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO accounts (name, email, password_hash) VALUES (?,?,?)",
		name, email, passwordHash)
	if err != nil {
		// MySQL duplicate-key errors carry code 1062.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// FindByEmailCI fetches an account by normalized email.
func (r *AccountRepo) FindByEmailCI(ctx context.Context, email string) (Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var a Account
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,email,password_hash,is_manager,created_at FROM accounts WHERE email=? LIMIT 1",
		email).Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.IsManager, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return Account{}, ErrNotFound
	}
	return a, err
}

// FindByID fetches an account by id.
func (r *AccountRepo) FindByID(ctx context.Context, id uint64) (Account, error) {
	var a Account
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,email,password_hash,is_manager,created_at FROM accounts WHERE id=? LIMIT 1",
		id).Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.IsManager, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return Account{}, ErrNotFound
	}
	return a, err
}

// List returns all accounts ordered by name, for the manager user list.
func (r *AccountRepo) List(ctx context.Context) ([]Account, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,email,password_hash,is_manager,created_at FROM accounts ORDER BY LOWER(name) ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.IsManager, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SetManagerFlag promotes or demotes an account.
func (r *AccountRepo) SetManagerFlag(ctx context.Context, id uint64, isManager bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET is_manager=? WHERE id=?", isManager, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountManagers reports how many accounts currently hold the manager flag.
// Used by the lockout guard around self-demotion.
func (r *AccountRepo) CountManagers(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM accounts WHERE is_manager=1").Scan(&n)
	return n, err
}

// Delete removes the credential row.  Callers must cascade profile and media
// rows first; this method is the last step of account removal.
func (r *AccountRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM accounts WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
