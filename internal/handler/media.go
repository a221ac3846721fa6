package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/encoreapp/encore/internal/policy"
	"github.com/encoreapp/encore/internal/queue"
	"github.com/encoreapp/encore/internal/repository"
	"github.com/encoreapp/encore/internal/service"
	"github.com/encoreapp/encore/internal/storage"
)

// MediaHandler bundles the stores behind the logged-in user's media gallery.
type MediaHandler struct {
	Media *repository.MediaRepo
	Files storage.BlobStore
	Audit *service.AuditPublisher
}

func NewMediaHandler(media *repository.MediaRepo, files storage.BlobStore, audit *service.AuditPublisher) *MediaHandler {
	if media == nil || files == nil {
		panic("nil dependency passed to NewMediaHandler")
	}
	return &MediaHandler{Media: media, Files: files, Audit: audit}
}

// List handles GET /profile/media.
func (h *MediaHandler) List(c echo.Context) error {
	sess, _ := currentActor(c)
	ctx, cancel := dbCtx(c)
	defer cancel()

	items, err := h.Media.ListByAccountID(ctx, sess.UserID)
	if err != nil {
		log.Printf("media list: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to load your media gallery."})
	}
	return c.JSON(http.StatusOK, echo.Map{"media": mediaList(items)})
}

// Upload handles POST /profile/media (multipart, field "mediaFile").  The
// media kind is derived from the upload content type: image/* is an image,
// everything else is treated as video.
func (h *MediaHandler) Upload(c echo.Context) error {
	sess, _ := currentActor(c)

	fh, err := c.FormFile("mediaFile")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Please choose a media file to upload."})
	}
	if fh.Size > maxMediaFileBytes {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Media file too large (max 50MB)."})
	}

	contentType := fh.Header.Get("Content-Type")
	kind := repository.MediaKindVideo
	if strings.HasPrefix(contentType, "image/") {
		kind = repository.MediaKindImage
	}

	path, err := saveUpload(c, h.Files, fh, storage.MediaDir, contentType)
	if err != nil {
		log.Printf("media upload: store file failed: %v", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Unable to upload that media file. Please try again."})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	id, err := h.Media.Create(ctx, sess.UserID, kind, path)
	if err != nil {
		log.Printf("media upload: insert failed: %v", err)
		// The row is the source of truth; drop the orphan file.
		if derr := h.Files.Delete(c.Request().Context(), path); derr != nil {
			log.Printf("media upload: cleanup failed: %v", derr)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to save your media item."})
	}

	_ = h.Audit.Publish(c.Request().Context(), queue.AuditEvent{
		Kind:      queue.EventMediaUploaded,
		ActorID:   sess.UserID,
		AccountID: sess.UserID,
		MediaID:   id,
		MediaKind: kind,
		Path:      path,
	})
	return c.Redirect(http.StatusSeeOther, "/profile/media")
}

// Delete handles POST /profile/media/:id/delete.  A media item owned by
// someone else reads as not found, exactly like a missing one, so the
// response never confirms the id exists.
func (h *MediaHandler) Delete(c echo.Context) error {
	_, actor := currentActor(c)
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	item, err := h.Media.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Media item not found."})
		}
		log.Printf("media delete: lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to delete media item."})
	}
	if !policy.CanAct(actor, policy.DeleteOwnMediaItem, item.AccountID) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Media item not found."})
	}

	// File first, best-effort; the row decides visibility.
	if item.Path != "" {
		if ferr := h.Files.Delete(ctx, item.Path); ferr != nil {
			log.Printf("media delete: remove file failed: %v", ferr)
		}
	}
	if err := h.Media.DeleteByID(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Printf("media delete: remove row failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to delete media item."})
	}
	return c.Redirect(http.StatusSeeOther, "/profile/media")
}
