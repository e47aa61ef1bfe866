package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opsdesk/incident-report/internal/core/domain"
)

// ctxPrincipal extracts the store-truth identity the Auth gate attached to
// the request context. Presence of both values proves the gate ran; a route
// wired without it fails closed here.
func ctxPrincipal(c echo.Context) (id string, role domain.Role, err error) {
	id, _ = c.Get("principal_id").(string)
	role, _ = c.Get("role").(domain.Role)
	if id == "" || role == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, role, nil
}
