package ports

import (
	"context"
	"time"

	"github.com/opsdesk/incident-report/internal/core/domain"
)

// TokenSigner mints signed access tokens. Implemented by token.Codec.
type TokenSigner interface {
	Sign(subjectID string, role domain.Role, ttl time.Duration) (string, error)
}

// SessionResult is the outcome of a successful login or rotation.
type SessionResult struct {
	Principal        domain.PrincipalSummary
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// SessionService owns credential issuance: login, refresh-token rotation with
// replay detection, explicit revocation, and password change.
type SessionService interface {
	Login(ctx context.Context, email, password, clientIP string) (*SessionResult, error)
	Rotate(ctx context.Context, refreshToken, clientIP string) (*SessionResult, error)
	// Revoke kills a refresh token. Only the token's owner or an Admin may
	// revoke; anyone else gets domain.ErrForbidden. Revoking an inactive or
	// unknown token fails with domain.ErrInvalidToken, never success.
	Revoke(ctx context.Context, refreshToken, clientIP, callerID string, callerRole domain.Role) error
	ChangePassword(ctx context.Context, principalID, currentPassword, newPassword string) (*domain.PrincipalSummary, error)
}
