package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/opsdesk/incident-report/internal/core/domain"
	"github.com/opsdesk/incident-report/internal/core/ports"
)

// tokenPrefixLen is how much of a refresh token value the audit listing
// exposes. Enough to correlate chain links, never enough to replay.
const tokenPrefixLen = 8

// PrincipalService implements the account directory: admin-managed CRUD over
// principals plus per-principal session inspection.
type PrincipalService struct {
	principals ports.PrincipalStore
	tokens     ports.RefreshTokenStore
	hasher     ports.SecretHasher
	logger     zerolog.Logger
}

func NewPrincipalService(principals ports.PrincipalStore, tokens ports.RefreshTokenStore, hasher ports.SecretHasher, logger zerolog.Logger) *PrincipalService {
	return &PrincipalService{principals: principals, tokens: tokens, hasher: hasher, logger: logger}
}

func (s *PrincipalService) Create(ctx context.Context, in ports.CreatePrincipalInput) (*domain.PrincipalSummary, error) {
	if in.DisplayName == "" || in.Email == "" || in.Password == "" || !in.Role.Valid() {
		return nil, domain.ErrInvalidCredentials
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("create principal: %w", err)
	}

	now := time.Now().UTC()
	principal := &domain.Principal{
		ID:           uuid.NewString(),
		DisplayName:  in.DisplayName,
		Email:        in.Email,
		PasswordHash: digest,
		Role:         in.Role,
		Active:       true,
		CreatedAt:    now,
		ModifiedAt:   now,
		ModifiedBy:   in.CallerID,
	}

	created, err := s.principals.Insert(ctx, principal)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("principal_id", created.ID).Str("created_by", in.CallerID).Msg("principal created")
	summary := created.Summary()
	return &summary, nil
}

func (s *PrincipalService) Update(ctx context.Context, id string, in ports.UpdatePrincipalInput) (*domain.PrincipalSummary, error) {
	if in.Role != nil && !in.Role.Valid() {
		return nil, domain.ErrInvalidCredentials
	}

	updated, err := s.principals.Update(ctx, id, ports.PrincipalPatch{
		DisplayName: in.DisplayName,
		Role:        in.Role,
		Active:      in.Active,
		ModifiedAt:  time.Now().UTC(),
		ModifiedBy:  in.CallerID,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("principal_id", id).Str("modified_by", in.CallerID).Msg("principal updated")
	summary := updated.Summary()
	return &summary, nil
}

func (s *PrincipalService) GetByID(ctx context.Context, id string) (*domain.PrincipalSummary, error) {
	principal, err := s.principals.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := principal.Summary()
	return &summary, nil
}

func (s *PrincipalService) List(ctx context.Context) ([]domain.PrincipalSummary, error) {
	principals, err := s.principals.List(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]domain.PrincipalSummary, 0, len(principals))
	for i := range principals {
		summaries = append(summaries, principals[i].Summary())
	}
	return summaries, nil
}

// RefreshTokens lists the principal's sessions. Walking the replaced-by
// prefixes reconstructs each rotation chain for audit.
func (s *PrincipalService) RefreshTokens(ctx context.Context, principalID string) ([]ports.RefreshTokenView, error) {
	if _, err := s.principals.FindByID(ctx, principalID); err != nil {
		return nil, err
	}

	tokens, err := s.tokens.ListByOwner(ctx, principalID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	views := make([]ports.RefreshTokenView, 0, len(tokens))
	for i := range tokens {
		t := &tokens[i]
		views = append(views, ports.RefreshTokenView{
			TokenPrefix:      tokenPrefix(t.Token),
			CreatedAt:        t.CreatedAt,
			CreatedByIP:      t.CreatedByIP,
			ExpiresAt:        t.ExpiresAt,
			RevokedAt:        t.RevokedAt,
			RevokedByIP:      t.RevokedByIP,
			ReplacedByPrefix: tokenPrefix(t.ReplacedByToken),
			Active:           t.IsActive(now),
		})
	}
	return views, nil
}

func tokenPrefix(token string) string {
	if len(token) <= tokenPrefixLen {
		return token
	}
	return token[:tokenPrefixLen]
}
