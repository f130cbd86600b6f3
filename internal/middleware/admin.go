package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/jsteinbach/mineral-catalog/internal/utils" // session token verification
)

// AdminAuth returns an Echo middleware that validates a Bearer session token
// issued at login.  The provided secret must match the one used when issuing
// tokens.  This middleware wraps every mutating route so the authorization
// decision happens before any handler validation runs.  Handlers behind it
// can rely on the request being an authorized admin session.
func AdminAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		// The returned handler is invoked for each incoming HTTP request.
		return func(c echo.Context) error {
			// Read the Authorization header.  A valid header starts with
			// "Bearer " followed by the session token.  Anything else is
			// rejected with 401 before the handler sees the request.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Verify the signature, expiry and subject of the token.  All
			// failure modes collapse into a single 401; callers gain nothing
			// from knowing whether a token was expired or forged.
			if err := utils.VerifySessionToken(secret, raw); err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid session"})
			}

			// Mark the request as an authorized admin session for handlers
			// that want to double check via c.Get("is_admin").
			c.Set("is_admin", true)
			return next(c)
		}
	}
}
