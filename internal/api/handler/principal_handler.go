package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opsdesk/incident-report/internal/core/domain"
	"github.com/opsdesk/incident-report/internal/core/ports"
)

// PrincipalHandler exposes the account directory over HTTP.
type PrincipalHandler struct {
	principals ports.PrincipalService
}

func NewPrincipalHandler(principals ports.PrincipalService) *PrincipalHandler {
	return &PrincipalHandler{principals: principals}
}

// Create registers a new principal (Admin only).
//
// @Summary      Create a principal
// @Tags         principals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPrincipalRequest  true  "Principal details"
// @Success      201   {object}  domain.PrincipalSummary
// @Failure      409   {object}  errorResponse
// @Router       /principals [post]
func (h *PrincipalHandler) Create(c echo.Context) error {
	callerID, _, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req createPrincipalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	summary, err := h.principals.Create(c.Request().Context(), ports.CreatePrincipalInput{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Password:    req.Password,
		Role:        domain.Role(req.Role),
		CallerID:    callerID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, summary)
}

// Update patches a principal's profile, role, or active flag (Admin only).
//
// @Summary      Update a principal
// @Tags         principals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                  true  "Principal id"
// @Param        body  body      updatePrincipalRequest  true  "Fields to update"
// @Success      200   {object}  domain.PrincipalSummary
// @Failure      404   {object}  errorResponse
// @Router       /principals/{id} [put]
func (h *PrincipalHandler) Update(c echo.Context) error {
	callerID, _, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req updatePrincipalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var role *domain.Role
	if req.Role != nil {
		r := domain.Role(*req.Role)
		role = &r
	}

	summary, err := h.principals.Update(c.Request().Context(), c.Param("id"), ports.UpdatePrincipalInput{
		DisplayName: req.DisplayName,
		Role:        role,
		Active:      req.Active,
		CallerID:    callerID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// Get returns one principal. Regular users can read their own record; Admins
// can read any.
//
// @Summary      Get a principal
// @Tags         principals
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Principal id"
// @Success      200 {object}  domain.PrincipalSummary
// @Failure      404 {object}  errorResponse
// @Router       /principals/{id} [get]
func (h *PrincipalHandler) Get(c echo.Context) error {
	callerID, callerRole, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if id != callerID && callerRole != domain.RoleAdmin {
		return domain.ErrForbidden
	}

	summary, err := h.principals.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// List returns all principals (Admin only).
//
// @Summary      List principals
// @Tags         principals
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array}  domain.PrincipalSummary
// @Router       /principals [get]
func (h *PrincipalHandler) List(c echo.Context) error {
	summaries, err := h.principals.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summaries)
}

// RefreshTokens lists a principal's sessions with redacted token values.
// Regular users see their own; Admins see anyone's.
//
// @Summary      List a principal's refresh tokens
// @Tags         principals
// @Produce      json
// @Security     BearerAuth
// @Param        id  path     string  true  "Principal id"
// @Success      200 {array}  ports.RefreshTokenView
// @Failure      404 {object} errorResponse
// @Router       /principals/{id}/refresh-tokens [get]
func (h *PrincipalHandler) RefreshTokens(c echo.Context) error {
	callerID, callerRole, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if id != callerID && callerRole != domain.RoleAdmin {
		return domain.ErrForbidden
	}

	views, err := h.principals.RefreshTokens(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}
