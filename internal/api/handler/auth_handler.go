package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/opsdesk/incident-report/internal/api/metrics"
	"github.com/opsdesk/incident-report/internal/core/domain"
	"github.com/opsdesk/incident-report/internal/core/ports"
)

// refreshCookieName is the HttpOnly cookie carrying the refresh token for
// browser clients. Script access is never allowed.
const refreshCookieName = "refresh_token"

// AuthHandler exposes the session manager over HTTP.
type AuthHandler struct {
	sessions ports.SessionService
}

func NewAuthHandler(sessions ports.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// Login authenticates a principal and issues a token pair.
//
// @Summary      Login with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password, c.RealIP())
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	setRefreshCookie(c, result.RefreshToken, result.RefreshExpiresAt)
	return c.JSON(http.StatusOK, sessionResponse{
		Principal:    result.Principal,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresAt:    result.RefreshExpiresAt,
	})
}

// Refresh rotates the presented refresh token for a new token pair.
//
// @Summary      Rotate the refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  false  "Refresh token (falls back to cookie)"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/refresh-token [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	presented := req.RefreshToken
	if presented == "" {
		presented = refreshCookie(c)
	}

	result, err := h.sessions.Rotate(c.Request().Context(), presented, c.RealIP())
	if err != nil {
		metrics.RotationsTotal.WithLabelValues(tokenResult(err)).Inc()
		return err
	}
	metrics.RotationsTotal.WithLabelValues("success").Inc()

	setRefreshCookie(c, result.RefreshToken, result.RefreshExpiresAt)
	return c.JSON(http.StatusOK, sessionResponse{
		Principal:    result.Principal,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresAt:    result.RefreshExpiresAt,
	})
}

// Revoke explicitly revokes a refresh token. Only the token's owner or an
// Admin may revoke it.
//
// @Summary      Revoke a refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      revokeRequest  false  "Refresh token (falls back to cookie)"
// @Success      200   {object}  map[string]string
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /auth/revoke-token [post]
func (h *AuthHandler) Revoke(c echo.Context) error {
	callerID, callerRole, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req revokeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	presented := req.RefreshToken
	if presented == "" {
		presented = refreshCookie(c)
	}

	if err := h.sessions.Revoke(c.Request().Context(), presented, c.RealIP(), callerID, callerRole); err != nil {
		metrics.RevocationsTotal.WithLabelValues(revokeResult(err)).Inc()
		return err
	}
	metrics.RevocationsTotal.WithLabelValues("success").Inc()

	clearRefreshCookie(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "token revoked"})
}

// ChangePassword replaces the caller's password after verifying the current one.
//
// @Summary      Change own password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  domain.PrincipalSummary
// @Failure      400   {object}  errorResponse
// @Router       /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	callerID, _, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	summary, err := h.sessions.ChangePassword(c.Request().Context(), callerID, req.Password, req.NewPassword)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// --- cookie helpers ---

// setRefreshCookie stores the refresh token with no script access and a
// lifetime matching the token's expiry.
func setRefreshCookie(c echo.Context, token string, expiresAt time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Expires:  expiresAt,
		Path:     "/auth",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		MaxAge:   -1,
		Path:     "/auth",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func refreshCookie(c echo.Context) string {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "throttled"
	default:
		return "error"
	}
}

func tokenResult(err error) string {
	if errors.Is(err, domain.ErrInvalidToken) {
		return "invalid_token"
	}
	return "error"
}

func revokeResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	default:
		return "error"
	}
}
