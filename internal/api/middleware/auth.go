package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/opsdesk/incident-report/internal/api/metrics"
	"github.com/opsdesk/incident-report/internal/core/domain"
	"github.com/opsdesk/incident-report/internal/core/ports"
	"github.com/opsdesk/incident-report/internal/core/token"
)

// Auth is the authorization gate on every protected route. It verifies the
// bearer token, then re-fetches the principal from the store on every request:
// authorization state is store-truth, not token-truth, so a deactivation or
// role change takes effect before the access token's natural expiry. The
// store-truth principal id and role are attached to the request context;
// the claim's role is never propagated.
func Auth(codec *token.Codec, principals ports.PrincipalStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				metrics.GateRejectionsTotal.WithLabelValues("missing_header").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				metrics.GateRejectionsTotal.WithLabelValues("bad_header").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := codec.Verify(parts[1])
			if err != nil {
				metrics.GateRejectionsTotal.WithLabelValues(codecReason(err)).Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			principal, err := principals.FindByID(c.Request().Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, domain.ErrPrincipalNotFound) {
					metrics.GateRejectionsTotal.WithLabelValues("principal_missing").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
				return err
			}
			if !principal.Active {
				metrics.GateRejectionsTotal.WithLabelValues("principal_inactive").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set("principal_id", principal.ID)
			c.Set("role", principal.Role)

			return next(c)
		}
	}
}

func codecReason(err error) string {
	switch {
	case errors.Is(err, token.ErrExpired):
		return "token_expired"
	case errors.Is(err, token.ErrBadSignature):
		return "bad_signature"
	default:
		return "malformed"
	}
}
