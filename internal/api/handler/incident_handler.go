package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opsdesk/incident-report/internal/core/ports"
)

// IncidentHandler exposes incident records over HTTP.
type IncidentHandler struct {
	incidents ports.IncidentService
}

func NewIncidentHandler(incidents ports.IncidentService) *IncidentHandler {
	return &IncidentHandler{incidents: incidents}
}

// Create records a new incident (Admin only).
//
// @Summary      Report an incident
// @Tags         incidents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createIncidentRequest  true  "Incident details"
// @Success      201   {object}  domain.Incident
// @Router       /incidents [post]
func (h *IncidentHandler) Create(c echo.Context) error {
	callerID, _, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req createIncidentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	incident, err := h.incidents.Create(c.Request().Context(), ports.CreateIncidentInput{
		Category:       req.Category,
		Location:       req.Location,
		OccurredAt:     req.OccurredAt,
		AffectedName:   req.AffectedName,
		SupervisorName: req.SupervisorName,
		Description:    req.Description,
		RootCause:      req.RootCause,
		HandlerName:    req.HandlerName,
		CallerID:       callerID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, incident)
}

// Update patches an incident record (Admin only).
//
// @Summary      Update an incident
// @Tags         incidents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Incident id"
// @Param        body  body      updateIncidentRequest  true  "Fields to update"
// @Success      200   {object}  domain.Incident
// @Failure      404   {object}  errorResponse
// @Router       /incidents/{id} [put]
func (h *IncidentHandler) Update(c echo.Context) error {
	callerID, _, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req updateIncidentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	incident, err := h.incidents.Update(c.Request().Context(), c.Param("id"), ports.UpdateIncidentInput{
		Category:       req.Category,
		Location:       req.Location,
		AffectedName:   req.AffectedName,
		SupervisorName: req.SupervisorName,
		Description:    req.Description,
		RootCause:      req.RootCause,
		HandlerName:    req.HandlerName,
		Active:         req.Active,
		CallerID:       callerID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, incident)
}

// Get returns one incident.
//
// @Summary      Get an incident
// @Tags         incidents
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Incident id"
// @Success      200 {object}  domain.Incident
// @Failure      404 {object}  errorResponse
// @Router       /incidents/{id} [get]
func (h *IncidentHandler) Get(c echo.Context) error {
	incident, err := h.incidents.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, incident)
}

// List returns active incidents, optionally filtered by category (Admin only).
//
// @Summary      List incidents
// @Tags         incidents
// @Produce      json
// @Security     BearerAuth
// @Param        category  query    string  false  "Category filter"
// @Success      200       {array}  domain.Incident
// @Router       /incidents [get]
func (h *IncidentHandler) List(c echo.Context) error {
	incidents, err := h.incidents.List(c.Request().Context(), ports.IncidentFilter{
		Category: c.QueryParam("category"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, incidents)
}

// Acknowledge marks an incident as seen by a handler.
//
// @Summary      Acknowledge an incident
// @Tags         incidents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                      true  "Incident id"
// @Param        body  body      acknowledgeIncidentRequest  true  "Handler name"
// @Success      200   {object}  domain.Incident
// @Failure      422   {object}  errorResponse
// @Router       /incidents/{id}/acknowledge [post]
func (h *IncidentHandler) Acknowledge(c echo.Context) error {
	callerID, _, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req acknowledgeIncidentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	incident, err := h.incidents.Acknowledge(c.Request().Context(), c.Param("id"), req.HandlerName, callerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, incident)
}

// Resolve closes an acknowledged incident.
//
// @Summary      Resolve an incident
// @Tags         incidents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                  true  "Incident id"
// @Param        body  body      resolveIncidentRequest  true  "Resolution comment"
// @Success      200   {object}  domain.Incident
// @Failure      422   {object}  errorResponse
// @Router       /incidents/{id}/resolve [post]
func (h *IncidentHandler) Resolve(c echo.Context) error {
	callerID, _, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req resolveIncidentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	incident, err := h.incidents.Resolve(c.Request().Context(), c.Param("id"), req.Comment, callerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, incident)
}
