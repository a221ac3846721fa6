package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/encoreapp/encore/internal/middleware"
	"github.com/encoreapp/encore/internal/repository"
	"github.com/encoreapp/encore/internal/session"
)

type fakeFiles struct {
	saved   []string
	deleted []string
}

func (f *fakeFiles) Save(_ context.Context, relPath string, _ io.Reader, _ int64, _ string) (string, error) {
	f.saved = append(f.saved, relPath)
	return relPath, nil
}

func (f *fakeFiles) Delete(_ context.Context, relPath string) error {
	f.deleted = append(f.deleted, relPath)
	return nil
}

var mediaCols = []string{"id", "account_id", "kind", "path", "created_at"}

func newMediaHandler(t *testing.T) (sqlmock.Sqlmock, *fakeFiles, *MediaHandler) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	files := &fakeFiles{}
	return mock, files, NewMediaHandler(repository.NewMediaRepo(db), files, nil)
}

// deleteContext builds an authenticated POST to /profile/media/:id/delete.
func deleteContext(userID uint64, isManager bool, mediaID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/profile/media/"+mediaID+"/delete", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(mediaID)
	c.Set(middleware.ContextKey, session.Session{SID: "sid", UserID: userID, IsManager: isManager})
	return c, rec
}

func TestMediaDeleteByOwner(t *testing.T) {
	mock, files, h := newMediaHandler(t)

	mock.ExpectQuery("SELECT .+ FROM media_items WHERE id=").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(mediaCols).
			AddRow(3, 7, repository.MediaKindImage, "media/pic.png", time.Now()))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM media_items WHERE id=?")).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := deleteContext(7, false, "3")
	require.NoError(t, h.Delete(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, []string{"media/pic.png"}, files.deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMediaDeleteByStrangerReadsAsNotFound(t *testing.T) {
	mock, files, h := newMediaHandler(t)

	// Item exists but belongs to account 7; actor 8 must get the same 404 a
	// missing id would produce.
	mock.ExpectQuery("SELECT .+ FROM media_items WHERE id=").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(mediaCols).
			AddRow(3, 7, repository.MediaKindVideo, "media/clip.mp4", time.Now()))

	c, rec := deleteContext(8, false, "3")
	require.NoError(t, h.Delete(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Media item not found.")
	assert.Empty(t, files.deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMediaDeleteMissingItem(t *testing.T) {
	mock, _, h := newMediaHandler(t)

	mock.ExpectQuery("SELECT .+ FROM media_items WHERE id=").
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows(mediaCols))

	c, rec := deleteContext(7, false, "99")
	require.NoError(t, h.Delete(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Media item not found.")
}

func TestMediaDeleteManagerOverridesOwnership(t *testing.T) {
	mock, files, h := newMediaHandler(t)

	mock.ExpectQuery("SELECT .+ FROM media_items WHERE id=").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(mediaCols).
			AddRow(3, 7, repository.MediaKindImage, "media/pic.png", time.Now()))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM media_items WHERE id=?")).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := deleteContext(2, true, "3")
	require.NoError(t, h.Delete(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, []string{"media/pic.png"}, files.deleted)
}

func TestMediaListReturnsOwnItems(t *testing.T) {
	mock, _, h := newMediaHandler(t)

	created := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT .+ FROM media_items WHERE account_id=").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(mediaCols).
			AddRow(2, 7, repository.MediaKindVideo, "media/clip.mp4", created).
			AddRow(1, 7, repository.MediaKindImage, "media/pic.png", created))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/profile/media", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.ContextKey, session.Session{SID: "sid", UserID: 7})

	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/uploads/media/clip.mp4")
	assert.Contains(t, rec.Body.String(), "/uploads/media/pic.png")
}
