package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/approval-platform/internal/core/domain"
)

// RBAC lets the request through only when the role set by Auth grants capability.
// A missing or unknown role is treated as having no capabilities.
func RBAC(capability domain.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(RoleKey).(domain.Role)
			if !role.Can(capability) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "access forbidden"})
			}
			return next(c)
		}
	}
}
