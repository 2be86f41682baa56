package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/taskflow/approval-platform/internal/api/middleware"
	"github.com/taskflow/approval-platform/internal/core/domain"
)

// ctxSubject returns the username injected by the Auth middleware.
// An empty subject means the request never authenticated.
func ctxSubject(c echo.Context) (string, error) {
	username, _ := c.Get(middleware.UsernameKey).(string)
	if username == "" {
		return "", domain.ErrUnauthorized
	}
	return username, nil
}

// ctxClaims returns subject and role for role-gated operations:
//   - no subject is ErrUnauthorized
//   - a missing or unknown role is ErrForbidden
func ctxClaims(c echo.Context) (string, domain.Role, error) {
	username, err := ctxSubject(c)
	if err != nil {
		return "", "", err
	}
	role, _ := c.Get(middleware.RoleKey).(domain.Role)
	if !role.IsValid() {
		return "", "", domain.ErrForbidden
	}
	return username, role, nil
}
