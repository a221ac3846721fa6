package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/encoreapp/encore/internal/session"
)

// ContextKey is the echo.Context key under which the authenticated Session
// value is stored.  Handlers read it through CurrentSession.
const ContextKey = "session"

// RequireSession returns an Echo middleware that authenticates a request
// from its session cookie.  The cookie must carry a well-signed token and
// the token's session id must still be live in the registry; otherwise the
// request is bounced to the login endpoint.  On success the Session value
// is stored in the context so handlers receive the actor explicitly rather
// than re-reading ambient request state.
func RequireSession(secret string, store *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(session.CookieName)
			if err != nil || cookie.Value == "" {
				return c.Redirect(http.StatusSeeOther, "/login")
			}
			sess, err := session.ParseToken(secret, cookie.Value)
			if err != nil {
				return c.Redirect(http.StatusSeeOther, "/login")
			}
			// A destroyed session is dead even while its token signature
			// is still valid.
			if !store.Alive(c.Request().Context(), sess.SID) {
				return c.Redirect(http.StatusSeeOther, "/login")
			}
			c.Set(ContextKey, sess)
			return next(c)
		}
	}
}

// CurrentSession extracts the Session placed in the context by
// RequireSession.  The boolean is false on unauthenticated routes.
func CurrentSession(c echo.Context) (session.Session, bool) {
	s, ok := c.Get(ContextKey).(session.Session)
	return s, ok
}
