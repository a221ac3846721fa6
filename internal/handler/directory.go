package handler

// This file implements the public browse endpoints: the searchable
// performer directory and the performer detail view.  No authentication is
// applied; the data returned is limited to what the directory deliberately
// publishes.

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/encoreapp/encore/internal/avatar"
	"github.com/encoreapp/encore/internal/repository"
)

// DirectoryHandler bundles the stores behind the public pages.
type DirectoryHandler struct {
	Profiles *repository.ProfileRepo
	Media    *repository.MediaRepo
}

func NewDirectoryHandler(profiles *repository.ProfileRepo, media *repository.MediaRepo) *DirectoryHandler {
	if profiles == nil || media == nil {
		panic("nil dependency passed to NewDirectoryHandler")
	}
	return &DirectoryHandler{Profiles: profiles, Media: media}
}

type directoryEntry struct {
	AccountID    uint64 `json:"account_id"`
	Name         string `json:"name"`
	ActCategory  string `json:"act_category"`
	Genre        string `json:"genre"`
	Bio          string `json:"bio"`
	Availability string `json:"availability"`
	Location     string `json:"location"`
	ImageURL     string `json:"image_url"`
}

// List handles GET /directory?search=term.  The term matches name, act
// category, genre and location case-insensitively.
func (h *DirectoryHandler) List(c echo.Context) error {
	term := c.QueryParam("search")
	ctx, cancel := dbCtx(c)
	defer cancel()

	rows, err := h.Profiles.SearchDirectory(ctx, term)
	if err != nil {
		log.Printf("directory: search failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to load the directory."})
	}

	out := make([]directoryEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, directoryEntry{
			AccountID:    r.AccountID,
			Name:         r.Name,
			ActCategory:  orEmpty(r.ActCategory),
			Genre:        orEmpty(r.Genre),
			Bio:          orEmpty(r.Bio),
			Availability: r.Availability,
			Location:     orEmpty(r.Location),
			ImageURL:     avatar.URL(orEmpty(r.ImagePath), r.Email),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"performers": out, "search": term})
}

// Show handles GET /performer/:userid.  An unknown account, an account
// without a profile row and a profile not flagged as a performer all read
// as the same plain not found.
func (h *DirectoryHandler) Show(c echo.Context) error {
	id, err := paramID(c, "userid")
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Performer not found."})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	d, err := h.Profiles.FindDetail(ctx, id)
	if err != nil || !d.HasProfile || !d.IsPerformer {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			log.Printf("performer: load failed: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to load performer details."})
		}
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Performer not found."})
	}

	media, err := h.Media.ListByAccountID(ctx, id)
	if err != nil {
		log.Printf("performer: load media failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to load performer details."})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"performer": directoryEntry{
			AccountID:    d.AccountID,
			Name:         d.Name,
			ActCategory:  orEmpty(d.ActCategory),
			Genre:        orEmpty(d.Genre),
			Bio:          orEmpty(d.Bio),
			Availability: d.Availability,
			Location:     orEmpty(d.Location),
			ImageURL:     avatar.URL(orEmpty(d.ImagePath), d.Email),
		},
		"media": mediaList(media),
	})
}
