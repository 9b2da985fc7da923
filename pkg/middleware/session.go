package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequireSessionOwnership middleware: only allow requests whose session token
// was issued for the session named in the path. Runs after the capture token
// middleware has set "session_id" into the context.
func RequireSessionOwnership() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sessionID, err := uuid.Parse(c.Param("id"))
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]interface{}{
					"error":   "invalid_session_id",
					"message": "session ID must be a valid UUID",
				})
			}
			tokenSessionID, ok := c.Get("session_id").(uuid.UUID)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"error":   "unauthorized",
					"message": "session token missing",
				})
			}
			if tokenSessionID != sessionID {
				return c.JSON(http.StatusForbidden, map[string]interface{}{
					"error":   "session_mismatch",
					"message": "token was issued for a different session",
				})
			}
			return next(c)
		}
	}
}
