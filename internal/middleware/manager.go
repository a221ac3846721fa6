package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/encoreapp/encore/internal/repository"
)

// RequireManager returns a middleware that restricts a route group to
// manager accounts.  The manager flag is re-read from the credential store
// on every request instead of being trusted from the session token, so a
// demotion takes effect immediately rather than at the next login.  It
// assumes RequireSession already ran and stored the Session in context.
func RequireManager(accounts *repository.AccountRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, ok := CurrentSession(c)
			if !ok {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			acct, err := accounts.FindByID(c.Request().Context(), sess.UserID)
			if err != nil || !acct.IsManager {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			// Keep the context's view of the flag current for the policy
			// checks downstream.
			sess.IsManager = acct.IsManager
			c.Set(ContextKey, sess)
			return next(c)
		}
	}
}
