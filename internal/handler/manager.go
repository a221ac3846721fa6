package handler

// This file implements manager-only administration: listing users, editing
// any user's profile, toggling the manager flag, deleting media items and
// deleting whole accounts.  Routes using these handlers are wrapped by
// middleware.RequireManager, and each handler still consults the policy
// with the target id so authorization is decided in exactly one place.

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/encoreapp/encore/internal/avatar"
	"github.com/encoreapp/encore/internal/policy"
	"github.com/encoreapp/encore/internal/repository"
	"github.com/encoreapp/encore/internal/service"
	"github.com/encoreapp/encore/internal/storage"
	"github.com/encoreapp/encore/internal/utils"
)

// ManagerHandler bundles the stores and the removal cascade for manager
// administration.
type ManagerHandler struct {
	Accounts *repository.AccountRepo
	Profiles *repository.ProfileRepo
	Media    *repository.MediaRepo
	Files    storage.BlobStore
	Remover  *service.AccountRemover
}

func NewManagerHandler(accounts *repository.AccountRepo, profiles *repository.ProfileRepo, media *repository.MediaRepo, files storage.BlobStore, remover *service.AccountRemover) *ManagerHandler {
	if accounts == nil || profiles == nil || media == nil || files == nil || remover == nil {
		panic("nil dependency passed to NewManagerHandler")
	}
	return &ManagerHandler{Accounts: accounts, Profiles: profiles, Media: media, Files: files, Remover: remover}
}

// ListUsers handles GET /manager/users.
func (h *ManagerHandler) ListUsers(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	accounts, err := h.Accounts.List(ctx)
	if err != nil {
		log.Printf("manager users: list failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to load users."})
	}
	type userRow struct {
		ID        uint64 `json:"id"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		IsManager bool   `json:"is_manager"`
	}
	out := make([]userRow, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, userRow{ID: a.ID, Name: a.Name, Email: a.Email, IsManager: a.IsManager})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// ShowEditUser handles GET /manager/user/:userid/edit: the target's joined
// profile view plus media, for the edit form.
func (h *ManagerHandler) ShowEditUser(c echo.Context) error {
	targetID, err := paramID(c, "userid")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	d, err := h.Profiles.FindDetail(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found."})
		}
		log.Printf("manager edit: load failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to load user for editing."})
	}
	media, err := h.Media.ListByAccountID(ctx, targetID)
	if err != nil {
		log.Printf("manager edit: load media failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to load user for editing."})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user": echo.Map{
			"id":           d.AccountID,
			"name":         d.Name,
			"email":        d.Email,
			"is_manager":   d.IsManager,
			"has_profile":  d.HasProfile,
			"is_performer": d.IsPerformer,
			"act_category": orEmpty(d.ActCategory),
			"genre":        orEmpty(d.Genre),
			"bio":          orEmpty(d.Bio),
			"availability": d.Availability,
			"location":     orEmpty(d.Location),
			"image_url":    avatar.URL(orEmpty(d.ImagePath), d.Email),
		},
		"media": mediaList(media),
	})
}

// UpdateUser handles POST /manager/user/:userid/edit.  The profile row is
// updated when it exists and created otherwise, so a manager can fill in a
// profile for an account that never made one.
func (h *ManagerHandler) UpdateUser(c echo.Context) error {
	_, actor := currentActor(c)
	targetID, err := paramID(c, "userid")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if !policy.CanAct(actor, policy.ManagerEditAnyProfile, targetID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ph := ProfileHandler{Profiles: h.Profiles, Media: h.Media, Files: h.Files}
	u, msg, err := ph.profileForm(c)
	if err != nil {
		log.Printf("manager update: upload failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to update user profile."})
	}
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if _, err := h.Accounts.FindByID(ctx, targetID); err != nil {
		// No row will reference the stored upload on any of these paths.
		discardUpload(c, h.Files, u)
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found."})
		}
		log.Printf("manager update: account lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to update user profile."})
	}

	exists, err := h.Profiles.ExistsForAccount(ctx, targetID)
	if err != nil {
		log.Printf("manager update: existence check failed: %v", err)
		discardUpload(c, h.Files, u)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to update user profile."})
	}
	if exists {
		err = h.Profiles.Update(ctx, targetID, u)
	} else {
		err = h.Profiles.Create(ctx, targetID, u)
	}
	if err != nil {
		log.Printf("manager update: write failed: %v", err)
		discardUpload(c, h.Files, u)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to update user profile."})
	}
	return c.Redirect(http.StatusSeeOther, "/manager/user/"+c.Param("userid")+"/edit")
}

// ToggleManager handles POST /manager/user/:userid/toggle-manager with a
// make_manager form field.  Demoting the only remaining manager is refused:
// that would lock everyone out of administration.
func (h *ManagerHandler) ToggleManager(c echo.Context) error {
	_, actor := currentActor(c)
	targetID, err := paramID(c, "userid")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if !policy.CanAct(actor, policy.ManagerToggleManagerFlag, targetID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	makeManager := utils.FormBool(c.FormValue("make_manager"))

	ctx, cancel := dbCtx(c)
	defer cancel()

	target, err := h.Accounts.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found."})
		}
		log.Printf("toggle manager: lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to update manager status."})
	}

	if target.IsManager && !makeManager {
		n, err := h.Accounts.CountManagers(ctx)
		if err != nil {
			log.Printf("toggle manager: count failed: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to update manager status."})
		}
		if n <= 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Cannot demote the last remaining manager."})
		}
	}

	if err := h.Accounts.SetManagerFlag(ctx, targetID, makeManager); err != nil {
		log.Printf("toggle manager: update failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to update manager status."})
	}
	return c.Redirect(http.StatusSeeOther, "/manager/users")
}

// DeleteMedia handles POST /manager/user/:userid/media/:mediaId/delete.  The
// stored owner must match the userid in the path; a mismatch reads as not
// found so the response never confirms the media id exists elsewhere.
func (h *ManagerHandler) DeleteMedia(c echo.Context) error {
	_, actor := currentActor(c)
	targetID, err := paramID(c, "userid")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	mediaID, err := paramID(c, "mediaId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if !policy.CanAct(actor, policy.ManagerDeleteAnyMediaItem, targetID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	item, err := h.Media.FindByID(ctx, mediaID)
	if err != nil || item.AccountID != targetID {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			log.Printf("manager media delete: lookup failed: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to delete media item."})
		}
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Media item not found."})
	}

	if item.Path != "" {
		if ferr := h.Files.Delete(ctx, item.Path); ferr != nil {
			log.Printf("manager media delete: remove file failed: %v", ferr)
		}
	}
	if err := h.Media.DeleteByID(ctx, mediaID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Printf("manager media delete: remove row failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to delete media item."})
	}
	return c.Redirect(http.StatusSeeOther, "/manager/user/"+c.Param("userid")+"/edit")
}

// DeleteUser handles POST /manager/user/:userid/delete: the full cascade of
// files, media rows, profile row and credential row.
func (h *ManagerHandler) DeleteUser(c echo.Context) error {
	sess, actor := currentActor(c)
	targetID, err := paramID(c, "userid")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if !policy.CanAct(actor, policy.ManagerDeleteAnyAccount, targetID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Remover.Remove(ctx, sess.UserID, targetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found."})
		}
		log.Printf("manager delete user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to delete user."})
	}
	return c.Redirect(http.StatusSeeOther, "/directory")
}
