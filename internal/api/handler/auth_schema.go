package handler

import (
	"time"

	"github.com/opsdesk/incident-report/internal/core/domain"
)

// --- Request / Response types ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	// RefreshToken is optional in the body; browser clients carry it in the
	// HttpOnly cookie instead.
	RefreshToken string `json:"refresh_token,omitempty"`
}

type revokeRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

type changePasswordRequest struct {
	Password    string `json:"password"     validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// sessionResponse carries the access token and the redacted principal. The
// refresh token itself travels only in the HttpOnly cookie and in the body
// for non-browser clients; it is never logged.
type sessionResponse struct {
	Principal    domain.PrincipalSummary `json:"principal"`
	AccessToken  string                  `json:"access_token"`
	RefreshToken string                  `json:"refresh_token"`
	ExpiresAt    time.Time               `json:"refresh_expires_at"`
}
