package router // package router defines how HTTP routes are registered for the application

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/encoreapp/encore/internal/config"     // app configuration
	"github.com/encoreapp/encore/internal/handler"    // handlers implementing the business logic
	"github.com/encoreapp/encore/internal/middleware" // session and manager gates
	"github.com/encoreapp/encore/internal/repository" // credential store for the manager gate
	"github.com/encoreapp/encore/internal/session"    // session registry
)

// Handlers collects every handler the router wires up.
type Handlers struct {
	Auth      *handler.AuthHandler
	Profile   *handler.ProfileHandler
	Media     *handler.MediaHandler
	Directory *handler.DirectoryHandler
	Manager   *handler.ManagerHandler
}

// Register wires all application routes onto the Echo instance.  Public
// routes carry no middleware; everything else goes through the session
// gate, and the manager group additionally re-checks the manager flag
// against the credential store.
func Register(e *echo.Echo, cfg config.Config, h Handlers, sessions *session.Store, accounts *repository.AccountRepo) {
	// Public surface: health check, auth entry points and the directory.
	e.GET("/healthz", handler.Health)
	e.POST("/register", h.Auth.Register)
	e.POST("/login", h.Auth.Login)
	e.POST("/logout", h.Auth.Logout)
	e.GET("/directory", h.Directory.List)
	e.GET("/performer/:userid", h.Directory.Show)

	// When uploads live on local disk, the upload tree is served directly.
	if cfg.UploadDriver == "disk" {
		e.Static("/uploads", cfg.UploadRoot)
	}

	// Authenticated surface.  The session middleware parses the cookie,
	// checks the registry and injects the Session value into the context.
	auth := e.Group("")
	auth.Use(middleware.RequireSession(cfg.SessionSecret, sessions))
	auth.GET("/me", h.Auth.Me)
	auth.GET("/dashboard", h.Profile.Dashboard)
	auth.GET("/profile", h.Profile.Show)
	auth.GET("/profile/add", h.Profile.ShowAdd)
	auth.POST("/profile/add", h.Profile.Add)
	auth.GET("/profile/edit", h.Profile.ShowEdit)
	auth.POST("/profile/edit", h.Profile.Edit)
	auth.POST("/profile/delete", h.Profile.Delete)
	auth.GET("/availability", h.Profile.ShowAvailability)
	auth.POST("/availability", h.Profile.UpdateAvailability)
	auth.GET("/profile/media", h.Media.List)
	auth.POST("/profile/media", h.Media.Upload)
	auth.POST("/profile/media/:id/delete", h.Media.Delete)

	// Manager surface.  RequireManager re-reads the manager flag from the
	// credential store on every request so demotions apply immediately.
	mgr := e.Group("/manager")
	mgr.Use(middleware.RequireSession(cfg.SessionSecret, sessions))
	mgr.Use(middleware.RequireManager(accounts))
	mgr.GET("/users", h.Manager.ListUsers)
	mgr.GET("/user/:userid/edit", h.Manager.ShowEditUser)
	mgr.POST("/user/:userid/edit", h.Manager.UpdateUser)
	mgr.POST("/user/:userid/toggle-manager", h.Manager.ToggleManager)
	mgr.POST("/user/:userid/media/:mediaId/delete", h.Manager.DeleteMedia)
	mgr.POST("/user/:userid/delete", h.Manager.DeleteUser)
}
