package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/encoreapp/encore/internal/repository"
)

func newDirectoryHandler(t *testing.T) (sqlmock.Sqlmock, *DirectoryHandler) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return mock, NewDirectoryHandler(repository.NewProfileRepo(db), repository.NewMediaRepo(db))
}

func getContext(path, paramName, paramValue string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if paramName != "" {
		c.SetParamNames(paramName)
		c.SetParamValues(paramValue)
	}
	return c, rec
}

var joinCols = []string{
	"a.id", "a.name", "a.email", "a.is_manager",
	"p.id", "p.act_category", "p.genre", "p.bio", "p.availability",
	"p.location", "p.is_performer", "p.image_path",
}

func TestPerformerShowResolvesDefaultAvatar(t *testing.T) {
	mock, h := newDirectoryHandler(t)

	mock.ExpectQuery("SELECT a.id, a.name, a.email, a.is_manager").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(joinCols).
			AddRow(7, "Alice", "alice@example.com", false,
				3, "Musician", "Jazz", nil, "Y", "Berlin", true, nil))
	mock.ExpectQuery("SELECT .+ FROM media_items WHERE account_id=").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "account_id", "kind", "path", "created_at"}).
			AddRow(1, 7, repository.MediaKindImage, "media/pic.png", time.Now()))

	c, rec := getContext("/performer/7", "userid", "7")
	require.NoError(t, h.Show(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	// No image path stored: a deterministic catalog avatar is served.
	assert.Contains(t, rec.Body.String(), "/uploads/default-avatars/avatar-")
	assert.Contains(t, rec.Body.String(), "/uploads/media/pic.png")
}

func TestPerformerShowHidesNonPerformers(t *testing.T) {
	mock, h := newDirectoryHandler(t)

	mock.ExpectQuery("SELECT a.id, a.name, a.email, a.is_manager").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(joinCols).
			AddRow(7, "Alice", "alice@example.com", false,
				3, nil, nil, nil, "N", nil, false, nil))

	c, rec := getContext("/performer/7", "userid", "7")
	require.NoError(t, h.Show(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Performer not found.")
}

func TestPerformerShowUnknownAccount(t *testing.T) {
	mock, h := newDirectoryHandler(t)

	mock.ExpectQuery("SELECT a.id, a.name, a.email, a.is_manager").
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows(joinCols))

	c, rec := getContext("/performer/99", "userid", "99")
	require.NoError(t, h.Show(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPerformerShowBadID(t *testing.T) {
	_, h := newDirectoryHandler(t)

	c, rec := getContext("/performer/abc", "userid", "abc")
	require.NoError(t, h.Show(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDirectoryListPassesSearchTerm(t *testing.T) {
	mock, h := newDirectoryHandler(t)

	dirCols := []string{"a.id", "a.name", "a.email", "p.act_category", "p.genre",
		"p.bio", "p.availability", "p.location", "p.image_path"}
	mock.ExpectQuery("LOWER\\(a.name\\) LIKE").
		WithArgs("%jazz%", "%jazz%", "%jazz%", "%jazz%").
		WillReturnRows(sqlmock.NewRows(dirCols).
			AddRow(7, "Alice", "alice@example.com", "Musician", "Jazz", nil, "Y", "Berlin", nil))

	c, rec := getContext("/directory?search=Jazz", "", "")
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Alice"`)
	assert.Contains(t, rec.Body.String(), `"search":"Jazz"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
