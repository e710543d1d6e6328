package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gatehouse-sso/gatehouse/domain"
	ssoerrors "github.com/gatehouse-sso/gatehouse/errors"
	"github.com/gatehouse-sso/gatehouse/services"
)

// SessionCookieName is the browser cookie carrying the session ID.
const SessionCookieName = "gatehouse_session"

const sessionContextKey = "gatehouse.session"

// SessionMiddleware resolves the session cookie on every request and, when
// the session is live, attaches it to the echo context. Handlers that
// require authentication use RequireSession.
func SessionMiddleware(auth *services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}
			session, err := auth.ValidateSession(c.Request().Context(), cookie.Value)
			if err != nil {
				return writeOAuthError(c, err)
			}
			if session != nil {
				c.Set(sessionContextKey, session)
			}
			return next(c)
		}
	}
}

// sessionFromContext returns the live session, nil when the request is
// unauthenticated.
func sessionFromContext(c echo.Context) *domain.Session {
	session, _ := c.Get(sessionContextKey).(*domain.Session)
	return session
}

// RequireSession rejects unauthenticated requests before the handler runs.
func RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if sessionFromContext(c) == nil {
			return c.JSON(http.StatusUnauthorized, ssoerrors.NewUnauthorized("Authentication required"))
		}
		return next(c)
	}
}
