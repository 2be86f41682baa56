package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/approval-platform/internal/api/metrics"
	"github.com/taskflow/approval-platform/internal/core/ports"
)

// Context keys set by Auth.
const (
	UsernameKey = "username"
	RoleKey     = "role"
)

// Auth validates the bearer token and injects the subject and role into context.
func Auth(tokens ports.TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := tokens.Validate(strings.TrimSpace(parts[1]))
			metrics.TokenValidationsTotal.WithLabelValues(metrics.TokenResult(err)).Inc()
			if err != nil {
				return err
			}

			c.Set(UsernameKey, claims.Subject)
			c.Set(RoleKey, claims.Role)

			return next(c)
		}
	}
}
