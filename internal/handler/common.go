package handler // handler defines http handlers

import (
	"context"
	"database/sql"
	"log"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/encoreapp/encore/internal/avatar"
	"github.com/encoreapp/encore/internal/middleware"
	"github.com/encoreapp/encore/internal/policy"
	"github.com/encoreapp/encore/internal/repository"
	"github.com/encoreapp/encore/internal/session"
	"github.com/encoreapp/encore/internal/storage"
)

// Upload limits, matching the original product rules.
const (
	maxProfileImageBytes = 5 << 20  // 5 MB
	maxMediaFileBytes    = 50 << 20 // 50 MB
)

// dbCtx bounds the duration of store calls made from a handler.
func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// currentActor converts the request's session, if any, to a policy actor.
func currentActor(c echo.Context) (session.Session, policy.Actor) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return session.Session{}, policy.Anonymous
	}
	return sess, policy.Actor{ID: sess.UserID, IsManager: sess.IsManager}
}

// paramID parses a numeric path parameter.
func paramID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// nullable converts an optional form value into a sql.NullString; blank
// input stays NULL so an absent field is distinguishable from an empty one.
func nullable(v string) sql.NullString {
	v = strings.TrimSpace(v)
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

// orEmpty unwraps a NullString for response payloads.
func orEmpty(v sql.NullString) string {
	if v.Valid {
		return v.String
	}
	return ""
}

// uploadedImagePath validates and stores an optional profile image upload.
// The returned path is empty when no file was attached.  Validation
// problems come back as a user-facing message; nothing is stored in that
// case.
func uploadedImagePath(c echo.Context, files storage.BlobStore) (string, string, error) {
	fh, err := c.FormFile("profileImage")
	if err != nil {
		// No file part is fine; the form simply had no upload.
		return "", "", nil
	}
	if fh.Size > maxProfileImageBytes {
		return "", "Image too large (max 5MB).", nil
	}
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", "Unable to upload that image. Try a smaller JPG/PNG.", nil
	}
	path, err := saveUpload(c, files, fh, storage.ProfileImageDir, contentType)
	if err != nil {
		return "", "", err
	}
	return path, "", nil
}

// discardUpload removes a file stored while parsing a profile form when the
// request's outcome writes no row referencing it.  Only custom uploads are
// files we own; a default-avatar choice points at the shared catalog.
func discardUpload(c echo.Context, files storage.BlobStore, u repository.ProfileUpdate) {
	if !u.ImagePath.Valid || !avatar.IsCustomUpload(u.ImagePath.String) {
		return
	}
	if err := files.Delete(c.Request().Context(), u.ImagePath.String); err != nil {
		log.Printf("profile form: discard upload failed: %v", err)
	}
}

func saveUpload(c echo.Context, files storage.BlobStore, fh *multipart.FileHeader, dir, contentType string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	name := storage.ObjectName(dir, fh.Filename)
	return files.Save(c.Request().Context(), name, src, fh.Size, contentType)
}

// mediaResponse is the wire shape of one media item.
type mediaResponse struct {
	ID        uint64 `json:"id"`
	Kind      string `json:"kind"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
}

func mediaList(items []repository.MediaItem) []mediaResponse {
	out := make([]mediaResponse, 0, len(items))
	for _, m := range items {
		out = append(out, mediaResponse{
			ID:        m.ID,
			Kind:      m.Kind,
			URL:       "/uploads/" + m.Path,
			CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}
