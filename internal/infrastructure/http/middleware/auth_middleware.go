package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hireflowdev/interview-assistant/pkg/jwt"
)

// Context keys set by the capture token middleware
const (
	SessionIDKey   = "session_id"
	ApplicantIDKey = "applicant_id"
	InterviewIDKey = "interview_id"
)

// EchoCaptureToken returns an Echo middleware that validates the short-lived
// session token issued by BeginSession and sets "session_id", "applicant_id",
// and "interview_id" (uuid.UUID) into the Echo context.
//
// The token is read from the Authorization header, falling back to the token
// query parameter because browsers cannot set headers on WebSocket upgrades.
func EchoCaptureToken(tokens *jwt.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractCaptureToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing session token")
			}

			claims, err := tokens.ValidateSessionToken(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired session token")
			}

			c.Set(SessionIDKey, claims.SessionID)
			c.Set(ApplicantIDKey, claims.ApplicantID)
			c.Set(InterviewIDKey, claims.InterviewID)

			return next(c)
		}
	}
}

func extractCaptureToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	return c.QueryParam("token")
}
