package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/encoreapp/encore/internal/config"
	"github.com/encoreapp/encore/internal/repository"
	"github.com/encoreapp/encore/internal/session"
	"github.com/encoreapp/encore/internal/utils"
)

// AuthHandler bundles dependencies for registration, login and logout.
type AuthHandler struct {
	Cfg      config.Config
	Accounts *repository.AccountRepo
	Sessions *session.Store
}

func NewAuthHandler(cfg config.Config, accounts *repository.AccountRepo, sessions *session.Store) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Accounts: accounts, Sessions: sessions}
}

// Register handles POST /register.  Validation failures (missing fields,
// mismatched confirmation, duplicate email) re-surface on the form with a
// field-level message and never mutate the store.  Success creates the
// credential row only and logs the new account in.
func (h *AuthHandler) Register(c echo.Context) error {
	name := strings.TrimSpace(c.FormValue("name"))
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	password := c.FormValue("password")
	confirm := c.FormValue("confirmPassword")

	if name == "" || email == "" || password == "" || confirm == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "All fields are required."})
	}
	if password != confirm {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Passwords do not match."})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	// Duplicate check happens before any hashing so a taken email costs
	// nothing but a lookup.
	if _, err := h.Accounts.FindByEmailCI(ctx, email); err == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "That email already has an account."})
	} else if !errors.Is(err, repository.ErrNotFound) {
		log.Printf("register: email lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to register right now."})
	}

	hash, err := utils.HashPassword(password, h.Cfg.BcryptCost)
	if err != nil {
		log.Printf("register: hash failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to register right now."})
	}

	id, err := h.Accounts.Create(ctx, name, email, hash)
	if err != nil {
		// The unique index can still fire under a racing registration.
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "That email already has an account."})
		}
		log.Printf("register: create failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to register right now."})
	}

	sess := session.Session{UserID: id, Name: name, Email: email}
	if err := h.establish(c, &sess); err != nil {
		log.Printf("register: establish session failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to register right now."})
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Login handles POST /login.  Unknown email and wrong password are logged
// distinctly but answered identically so responses never reveal which one
// happened.
func (h *AuthHandler) Login(c echo.Context) error {
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	password := c.FormValue("password")
	if email == "" || password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email and password are required."})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	acct, err := h.Accounts.FindByEmailCI(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Printf("login: no account for email")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid email or password."})
		}
		log.Printf("login: lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to log in right now."})
	}
	if !utils.VerifyPassword(acct.PasswordHash, password) {
		log.Printf("login: bad password for account %d", acct.ID)
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid email or password."})
	}

	sess := session.Session{
		UserID:    acct.ID,
		Name:      acct.Name,
		Email:     acct.Email,
		IsManager: acct.IsManager,
	}
	if err := h.establish(c, &sess); err != nil {
		log.Printf("login: establish session failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Unable to log in right now."})
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Logout handles POST /logout: the registry entry is destroyed and the
// cookie expired, so the capability is gone even if the token leaks.
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(session.CookieName); err == nil && cookie.Value != "" {
		if sess, err := session.ParseToken(h.Cfg.SessionSecret, cookie.Value); err == nil {
			if derr := h.Sessions.Destroy(c.Request().Context(), sess.SID); derr != nil {
				log.Printf("logout: destroy session failed: %v", derr)
			}
		}
	}
	h.setCookie(c, "", -1)
	return c.Redirect(http.StatusSeeOther, "/")
}

// Me returns the authenticated actor, mainly for smoke checks.
func (h *AuthHandler) Me(c echo.Context) error {
	sess, _ := currentActor(c)
	return c.JSON(http.StatusOK, echo.Map{
		"id":         sess.UserID,
		"name":       sess.Name,
		"email":      sess.Email,
		"is_manager": sess.IsManager,
	})
}

// establish mints a session id, registers it and sets the signed cookie.
func (h *AuthHandler) establish(c echo.Context, sess *session.Session) error {
	sid, err := session.NewSID()
	if err != nil {
		return err
	}
	sess.SID = sid
	ttl := time.Duration(h.Cfg.SessionTTLH) * time.Hour
	if err := h.Sessions.Register(c.Request().Context(), sid, sess.UserID); err != nil {
		return err
	}
	token, err := session.SignToken(h.Cfg.SessionSecret, *sess, ttl)
	if err != nil {
		return err
	}
	h.setCookie(c, token, int(ttl.Seconds()))
	return nil
}

func (h *AuthHandler) setCookie(c echo.Context, value string, maxAge int) {
	c.SetCookie(&http.Cookie{
		Name:     session.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.Cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}
