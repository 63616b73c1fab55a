package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Role names used across the portal.
const (
	RoleAdmin          = "admin"
	RoleDepartmentUser = "department_user"
	RoleDataEntryUser  = "data_entry_user"
)

// ValidRole reports whether the given role is one the portal knows about.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleDepartmentUser, RoleDataEntryUser:
		return true
	}
	return false
}

// RequireRole returns middleware that checks if the user has one of the
// specified roles. Admins always pass.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userRole := RoleFromContext(c.Request().Context())
			if userRole == RoleAdmin {
				return next(c)
			}
			for _, required := range roles {
				if userRole == required {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}
