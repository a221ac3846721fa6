package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (sqlmock.Sqlmock, *AccountRepo) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return mock, NewAccountRepo(db)
}

var accountCols = []string{"id", "name", "email", "password_hash", "is_manager", "created_at"}

func TestAccountCreateNormalizesEmail(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO accounts (name, email, password_hash) VALUES (?,?,?)")).
		WithArgs("Alice", "alice@example.com", "hash").
		WillReturnResult(sqlmock.NewResult(5, 1))

	id, err := repo.Create(context.Background(), "Alice", "  ALICE@Example.COM ", "hash")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountCreateDuplicateEmail(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO accounts")).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'a@example.com' for key 'uq_accounts_email'"))

	_, err := repo.Create(context.Background(), "Alice", "a@example.com", "hash")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestAccountFindByEmailCI(t *testing.T) {
	mock, repo := newMock(t)

	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id,name,email,password_hash,is_manager,created_at FROM accounts WHERE email=? LIMIT 1")).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows(accountCols).
			AddRow(5, "Alice", "alice@example.com", "hash", true, created))

	a, err := repo.FindByEmailCI(context.Background(), " Alice@EXAMPLE.com ")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), a.ID)
	assert.True(t, a.IsManager)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountFindByIDNotFound(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectQuery("SELECT .+ FROM accounts WHERE id=").
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows(accountCols))

	_, err := repo.FindByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetManagerFlagUnknownAccount(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE accounts SET is_manager=? WHERE id=?")).
		WithArgs(true, 99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.SetManagerFlag(context.Background(), 99, true), ErrNotFound)
}

func TestCountManagers(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM accounts WHERE is_manager=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.CountManagers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestAccountDelete(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM accounts WHERE id=?")).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM accounts WHERE id=?")).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), 5))
	assert.ErrorIs(t, repo.Delete(context.Background(), 5), ErrNotFound)
}
