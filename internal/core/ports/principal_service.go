package ports

import (
	"context"
	"time"

	"github.com/opsdesk/incident-report/internal/core/domain"
)

type CreatePrincipalInput struct {
	DisplayName string
	Email       string
	Password    string
	Role        domain.Role
	CallerID    string
}

type UpdatePrincipalInput struct {
	DisplayName *string
	Role        *domain.Role
	Active      *bool
	CallerID    string
}

// RefreshTokenView is the audit-safe listing of a refresh token: the token
// value and its successor are truncated so the listing cannot be replayed.
type RefreshTokenView struct {
	TokenPrefix      string     `json:"token_prefix"`
	CreatedAt        time.Time  `json:"created_at"`
	CreatedByIP      string     `json:"created_by_ip"`
	ExpiresAt        time.Time  `json:"expires_at"`
	RevokedAt        *time.Time `json:"revoked_at,omitempty"`
	RevokedByIP      string     `json:"revoked_by_ip,omitempty"`
	ReplacedByPrefix string     `json:"replaced_by_prefix,omitempty"`
	Active           bool       `json:"active"`
}

// PrincipalService is the directory layered on top of the credential store:
// admin-driven account management plus per-principal session inspection.
type PrincipalService interface {
	Create(ctx context.Context, in CreatePrincipalInput) (*domain.PrincipalSummary, error)
	Update(ctx context.Context, id string, in UpdatePrincipalInput) (*domain.PrincipalSummary, error)
	GetByID(ctx context.Context, id string) (*domain.PrincipalSummary, error)
	List(ctx context.Context) ([]domain.PrincipalSummary, error)
	RefreshTokens(ctx context.Context, principalID string) ([]RefreshTokenView, error)
}
