package handler

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/encoreapp/encore/internal/avatar"
	"github.com/encoreapp/encore/internal/repository"
	"github.com/encoreapp/encore/internal/storage"
	"github.com/encoreapp/encore/internal/utils"
)

// ProfileHandler bundles the stores behind the logged-in user's dashboard,
// profile and availability flows.
type ProfileHandler struct {
	Profiles *repository.ProfileRepo
	Media    *repository.MediaRepo
	Files    storage.BlobStore
}

func NewProfileHandler(profiles *repository.ProfileRepo, media *repository.MediaRepo, files storage.BlobStore) *ProfileHandler {
	if profiles == nil || media == nil || files == nil {
		panic("nil dependency passed to NewProfileHandler")
	}
	return &ProfileHandler{Profiles: profiles, Media: media, Files: files}
}

// profileResponse is the wire shape of a profile view.
type profileResponse struct {
	AccountID    uint64 `json:"account_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	IsPerformer  bool   `json:"is_performer"`
	ActCategory  string `json:"act_category"`
	Genre        string `json:"genre"`
	Bio          string `json:"bio"`
	Availability string `json:"availability"`
	Location     string `json:"location"`
	ImageURL     string `json:"image_url"`
}

// Dashboard handles GET /dashboard: a summary of the current user's profile,
// or a null profile when none exists yet.
func (h *ProfileHandler) Dashboard(c echo.Context) error {
	sess, _ := currentActor(c)
	ctx, cancel := dbCtx(c)
	defer cancel()

	p, err := h.Profiles.FindByAccountID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusOK, echo.Map{
				"user":    echo.Map{"id": sess.UserID, "name": sess.Name, "email": sess.Email},
				"profile": nil,
			})
		}
		log.Printf("dashboard: load failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to load the dashboard right now."})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user": echo.Map{"id": sess.UserID, "name": sess.Name, "email": sess.Email},
		"profile": profileResponse{
			AccountID:    sess.UserID,
			Name:         sess.Name,
			Email:        sess.Email,
			IsPerformer:  p.IsPerformer,
			ActCategory:  orEmpty(p.ActCategory),
			Genre:        orEmpty(p.Genre),
			Bio:          orEmpty(p.Bio),
			Availability: p.Availability,
			Location:     orEmpty(p.Location),
			ImageURL:     avatar.URL(orEmpty(p.ImagePath), sess.Email),
		},
	})
}

// Show handles GET /profile.  No profile row redirects to the add flow.
// When the row exists without an image path, the deterministic default is
// resolved and persisted so listing queries can read a concrete path; the
// write is idempotent, so losing a race to another request changes nothing.
func (h *ProfileHandler) Show(c echo.Context) error {
	sess, _ := currentActor(c)
	ctx, cancel := dbCtx(c)
	defer cancel()

	d, err := h.Profiles.FindDetail(ctx, sess.UserID)
	if err != nil {
		log.Printf("profile: load failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to load your profile."})
	}
	if !d.HasProfile {
		return c.Redirect(http.StatusSeeOther, "/profile/add")
	}

	imagePath := orEmpty(d.ImagePath)
	if imagePath == "" {
		imagePath = avatar.Resolve("", d.Email)
		if err := h.Profiles.SetImagePath(ctx, sess.UserID, imagePath); err != nil {
			// Materialization is an optimization; the resolved value is
			// stable either way.
			log.Printf("profile: persist default avatar failed: %v", err)
		}
	}

	media, err := h.Media.ListByAccountID(ctx, sess.UserID)
	if err != nil {
		log.Printf("profile: load media failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to load your profile."})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"profile": profileResponse{
			AccountID:    d.AccountID,
			Name:         d.Name,
			Email:        d.Email,
			IsPerformer:  d.IsPerformer,
			ActCategory:  orEmpty(d.ActCategory),
			Genre:        orEmpty(d.Genre),
			Bio:          orEmpty(d.Bio),
			Availability: d.Availability,
			Location:     orEmpty(d.Location),
			ImageURL:     avatar.URL(imagePath, d.Email),
		},
		"media": mediaList(media),
	})
}

// ShowAdd handles GET /profile/add: an existing row redirects to edit.
func (h *ProfileHandler) ShowAdd(c echo.Context) error {
	sess, _ := currentActor(c)
	ctx, cancel := dbCtx(c)
	defer cancel()

	exists, err := h.Profiles.ExistsForAccount(ctx, sess.UserID)
	if err != nil {
		log.Printf("profile add: existence check failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to start a new profile."})
	}
	if exists {
		return c.Redirect(http.StatusSeeOther, "/profile/edit")
	}
	return c.JSON(http.StatusOK, echo.Map{"profile": nil})
}

// profileForm parses the shared add/edit form fields into a ProfileUpdate.
// Genre and location are mandatory only when the submitter wants to appear
// as a performer.
func (h *ProfileHandler) profileForm(c echo.Context) (repository.ProfileUpdate, string, error) {
	u := repository.ProfileUpdate{
		ActCategory:  nullable(c.FormValue("act_category")),
		Genre:        nullable(c.FormValue("genre")),
		Bio:          nullable(c.FormValue("bio")),
		Availability: utils.NormalizeAvailability(c.FormValue("availability")),
		Location:     nullable(c.FormValue("location")),
		IsPerformer:  utils.FormBool(c.FormValue("is_performer")),
	}
	if u.IsPerformer && (!u.Genre.Valid || !u.Location.Valid) {
		return u, "Genre and location are required if you want to appear as a performer.", nil
	}

	// Uploaded image wins over an explicit default-avatar choice.
	path, msg, err := uploadedImagePath(c, h.Files)
	if err != nil {
		return u, "", err
	}
	if msg != "" {
		return u, msg, nil
	}
	if path != "" {
		u.ImagePath = sql.NullString{String: path, Valid: true}
	} else if choice := strings.TrimSpace(c.FormValue("default_avatar")); choice != "" {
		u.ImagePath = sql.NullString{String: "default-avatars/" + choice, Valid: true}
	}
	return u, "", nil
}

// Add handles POST /profile/add.
func (h *ProfileHandler) Add(c echo.Context) error {
	sess, _ := currentActor(c)
	u, msg, err := h.profileForm(c)
	if err != nil {
		log.Printf("profile add: upload failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to create your profile."})
	}
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	exists, err := h.Profiles.ExistsForAccount(ctx, sess.UserID)
	if err != nil {
		log.Printf("profile add: existence check failed: %v", err)
		discardUpload(c, h.Files, u)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to create your profile."})
	}
	if exists {
		// No row is written on this branch, so the stored upload would be
		// an orphan.
		discardUpload(c, h.Files, u)
		return c.Redirect(http.StatusSeeOther, "/profile/edit")
	}
	if err := h.Profiles.Create(ctx, sess.UserID, u); err != nil {
		log.Printf("profile add: insert failed: %v", err)
		discardUpload(c, h.Files, u)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to create your profile."})
	}
	return c.Redirect(http.StatusSeeOther, "/profile")
}

// ShowEdit handles GET /profile/edit: no row redirects back to add.
func (h *ProfileHandler) ShowEdit(c echo.Context) error {
	sess, _ := currentActor(c)
	ctx, cancel := dbCtx(c)
	defer cancel()

	p, err := h.Profiles.FindByAccountID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Redirect(http.StatusSeeOther, "/profile/add")
		}
		log.Printf("profile edit: load failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to load the edit page."})
	}
	return c.JSON(http.StatusOK, echo.Map{"profile": profileResponse{
		AccountID:    sess.UserID,
		Name:         sess.Name,
		Email:        sess.Email,
		IsPerformer:  p.IsPerformer,
		ActCategory:  orEmpty(p.ActCategory),
		Genre:        orEmpty(p.Genre),
		Bio:          orEmpty(p.Bio),
		Availability: p.Availability,
		Location:     orEmpty(p.Location),
		ImageURL:     avatar.URL(orEmpty(p.ImagePath), sess.Email),
	}})
}

// Edit handles POST /profile/edit.  Concurrent edits are last-write-wins.
func (h *ProfileHandler) Edit(c echo.Context) error {
	sess, _ := currentActor(c)
	u, msg, err := h.profileForm(c)
	if err != nil {
		log.Printf("profile edit: upload failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to update your profile."})
	}
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Profiles.Update(ctx, sess.UserID, u); err != nil {
		discardUpload(c, h.Files, u)
		if errors.Is(err, repository.ErrNotFound) {
			return c.Redirect(http.StatusSeeOther, "/profile/add")
		}
		log.Printf("profile edit: update failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to update your profile."})
	}
	return c.Redirect(http.StatusSeeOther, "/profile")
}

// Delete handles POST /profile/delete: removes the profile row only, never
// the account.
func (h *ProfileHandler) Delete(c echo.Context) error {
	sess, _ := currentActor(c)
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Profiles.Delete(ctx, sess.UserID); err != nil {
		log.Printf("profile delete: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to delete your profile."})
	}
	return c.Redirect(http.StatusSeeOther, "/profile/add")
}

// ShowAvailability handles GET /availability.
func (h *ProfileHandler) ShowAvailability(c echo.Context) error {
	sess, _ := currentActor(c)
	ctx, cancel := dbCtx(c)
	defer cancel()

	p, err := h.Profiles.FindByAccountID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Redirect(http.StatusSeeOther, "/profile/add")
		}
		log.Printf("availability: load failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to load availability right now."})
	}
	return c.JSON(http.StatusOK, echo.Map{"availability": p.Availability})
}

// UpdateAvailability handles POST /availability.  Any input that is not
// exactly available collapses to not-available.
func (h *ProfileHandler) UpdateAvailability(c echo.Context) error {
	sess, _ := currentActor(c)
	ctx, cancel := dbCtx(c)
	defer cancel()

	value := utils.NormalizeAvailability(c.FormValue("availability"))
	if err := h.Profiles.SetAvailability(ctx, sess.UserID, value); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Redirect(http.StatusSeeOther, "/profile/add")
		}
		log.Printf("availability: update failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to update availability right now."})
	}
	return c.Redirect(http.StatusSeeOther, "/availability")
}
