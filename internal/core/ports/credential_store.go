package ports

import (
	"context"
	"time"

	"github.com/opsdesk/incident-report/internal/core/domain"
)

// PrincipalPatch is a partial update to a principal. Nil fields are left
// untouched; ModifiedAt/ModifiedBy are written on every update.
type PrincipalPatch struct {
	DisplayName  *string
	Role         *domain.Role
	Active       *bool
	PasswordHash *string
	ModifiedAt   time.Time
	ModifiedBy   string
}

// PrincipalStore persists principal records. Absence is always the explicit
// domain.ErrPrincipalNotFound, never a driver error.
type PrincipalStore interface {
	FindByID(ctx context.Context, id string) (*domain.Principal, error)
	FindByEmail(ctx context.Context, email string) (*domain.Principal, error)
	Insert(ctx context.Context, p *domain.Principal) (*domain.Principal, error)
	// Update applies patch in a single atomic write and returns the updated
	// record, or domain.ErrPrincipalNotFound.
	Update(ctx context.Context, id string, patch PrincipalPatch) (*domain.Principal, error)
	List(ctx context.Context) ([]domain.Principal, error)
}

// RefreshTokenStore persists refresh tokens. Tokens are never deleted; the
// only mutation is the one-shot revocation transition.
type RefreshTokenStore interface {
	// FindByValue returns the token by exact string match or
	// domain.ErrInvalidToken when absent.
	FindByValue(ctx context.Context, token string) (*domain.RefreshToken, error)
	Insert(ctx context.Context, rt *domain.RefreshToken) error
	// Revoke performs the conditional revocation transition: it succeeds only
	// while revoked_at is still unset and expires_at is in the future, so
	// exactly one of any concurrent attempts on the same token wins. It
	// returns the pre-transition token, or domain.ErrInvalidToken when the
	// token is absent or already inactive. replacedBy is empty for an
	// explicit revocation and carries the successor token during rotation.
	Revoke(ctx context.Context, token string, revokedAt time.Time, revokedByIP, replacedBy string) (*domain.RefreshToken, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.RefreshToken, error)
}
