package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/encoreapp/encore/internal/middleware"
	"github.com/encoreapp/encore/internal/repository"
	"github.com/encoreapp/encore/internal/service"
	"github.com/encoreapp/encore/internal/session"
)

func newManagerTestHandler(t *testing.T) (sqlmock.Sqlmock, *fakeFiles, *ManagerHandler) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	accounts := repository.NewAccountRepo(db)
	profiles := repository.NewProfileRepo(db)
	media := repository.NewMediaRepo(db)
	files := &fakeFiles{}
	remover := &service.AccountRemover{
		Accounts: accounts,
		Profiles: profiles,
		Media:    media,
		Files:    files,
	}
	return mock, files, NewManagerHandler(accounts, profiles, media, files, remover)
}

// managerPost builds a manager-authenticated POST with path parameters.
func managerPost(path string, form url.Values, params map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	names := make([]string, 0, len(params))
	values := make([]string, 0, len(params))
	for k, v := range params {
		names = append(names, k)
		values = append(values, v)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	c.Set(middleware.ContextKey, session.Session{SID: "sid", UserID: 2, Name: "Root", IsManager: true})
	return c, rec
}

func TestToggleManagerRefusesLastManagerDemotion(t *testing.T) {
	mock, _, h := newManagerTestHandler(t)

	mock.ExpectQuery("SELECT .+ FROM accounts WHERE id=").
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(accountTestCols).
			AddRow(2, "Root", "root@example.com", "hash", true, time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM accounts WHERE is_manager=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	c, rec := managerPost("/manager/user/2/toggle-manager",
		url.Values{"make_manager": {"no"}},
		map[string]string{"userid": "2"})
	require.NoError(t, h.ToggleManager(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cannot demote the last remaining manager.")
	// The flag update must never run; only the lookup and the count did.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleManagerDemotesWhenAnotherRemains(t *testing.T) {
	mock, _, h := newManagerTestHandler(t)

	mock.ExpectQuery("SELECT .+ FROM accounts WHERE id=").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(accountTestCols).
			AddRow(5, "Bob", "bob@example.com", "hash", true, time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM accounts WHERE is_manager=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE accounts SET is_manager=? WHERE id=?")).
		WithArgs(false, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := managerPost("/manager/user/5/toggle-manager",
		url.Values{"make_manager": {"no"}},
		map[string]string{"userid": "5"})
	require.NoError(t, h.ToggleManager(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/manager/users", rec.Header().Get(echo.HeaderLocation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleManagerPromotes(t *testing.T) {
	mock, _, h := newManagerTestHandler(t)

	mock.ExpectQuery("SELECT .+ FROM accounts WHERE id=").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(accountTestCols).
			AddRow(5, "Bob", "bob@example.com", "hash", false, time.Now()))
	// Promotion needs no lockout guard, so no COUNT runs.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE accounts SET is_manager=? WHERE id=?")).
		WithArgs(true, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := managerPost("/manager/user/5/toggle-manager",
		url.Values{"make_manager": {"yes"}},
		map[string]string{"userid": "5"})
	require.NoError(t, h.ToggleManager(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManagerDeleteMediaOwnerMismatch(t *testing.T) {
	mock, files, h := newManagerTestHandler(t)

	// The media row exists but is owned by account 7, not the account 8
	// named in the path; the answer must not confirm the id exists.
	mock.ExpectQuery("SELECT .+ FROM media_items WHERE id=").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(mediaCols).
			AddRow(3, 7, repository.MediaKindImage, "media/pic.png", time.Now()))

	c, rec := managerPost("/manager/user/8/media/3/delete", nil,
		map[string]string{"userid": "8", "mediaId": "3"})
	require.NoError(t, h.DeleteMedia(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Media item not found.")
	assert.Empty(t, files.deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManagerDeleteMediaMatchingOwner(t *testing.T) {
	mock, files, h := newManagerTestHandler(t)

	mock.ExpectQuery("SELECT .+ FROM media_items WHERE id=").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(mediaCols).
			AddRow(3, 7, repository.MediaKindImage, "media/pic.png", time.Now()))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM media_items WHERE id=?")).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := managerPost("/manager/user/7/media/3/delete", nil,
		map[string]string{"userid": "7", "mediaId": "3"})
	require.NoError(t, h.DeleteMedia(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/manager/user/7/edit", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, []string{"media/pic.png"}, files.deleted)
}

func TestManagerDeleteUnknownUser(t *testing.T) {
	mock, _, h := newManagerTestHandler(t)

	mock.ExpectQuery("SELECT .+ FROM accounts WHERE id=").
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows(accountTestCols))

	c, rec := managerPost("/manager/user/99/delete", nil,
		map[string]string{"userid": "99"})
	require.NoError(t, h.DeleteUser(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found.")
	assert.NoError(t, mock.ExpectationsWereMet())
}

var accountTestCols = []string{"id", "name", "email", "password_hash", "is_manager", "created_at"}
