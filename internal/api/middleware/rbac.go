package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opsdesk/incident-report/internal/api/metrics"
	"github.com/opsdesk/incident-report/internal/core/domain"
)

// RBAC enforces role-based access control. It reads the store-truth role the
// Auth gate attached, never a claim, so a role downgrade is effective on the
// very next request. An empty allowed set never matches.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(domain.Role)
			if _, ok := allowed[role]; !ok {
				metrics.GateRejectionsTotal.WithLabelValues("role_forbidden").Inc()
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
