package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/opsdesk/incident-report/internal/core/domain"
	"github.com/opsdesk/incident-report/internal/core/ports"
)

// refreshTokenBytes sizes the random refresh token value. 40 bytes of entropy,
// hex encoded, matches the issued-token format of the existing deployments.
const refreshTokenBytes = 40

// LoginThrottle limits repeated failed logins per email/IP pair (Redis).
// A nil throttle disables limiting; throttle-store errors fail open.
type LoginThrottle interface {
	Allowed(ctx context.Context, email, ip string) (bool, error)
	NoteFailure(ctx context.Context, email, ip string) error
	Reset(ctx context.Context, email, ip string) error
}

// SessionService orchestrates login, refresh-token rotation, revocation, and
// password change against the credential store and token codec. It owns the
// refresh-token state machine; the store and codec stay decision-free.
type SessionService struct {
	principals ports.PrincipalStore
	tokens     ports.RefreshTokenStore
	hasher     ports.SecretHasher
	signer     ports.TokenSigner
	throttle   LoginThrottle
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     zerolog.Logger
}

func NewSessionService(
	principals ports.PrincipalStore,
	tokens ports.RefreshTokenStore,
	hasher ports.SecretHasher,
	signer ports.TokenSigner,
	throttle LoginThrottle,
	accessTTL, refreshTTL time.Duration,
	logger zerolog.Logger,
) *SessionService {
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 24 * time.Hour
	}
	return &SessionService{
		principals: principals,
		tokens:     tokens,
		hasher:     hasher,
		signer:     signer,
		throttle:   throttle,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		logger:     logger,
	}
}

// Login authenticates email+password and issues a fresh token pair. Unknown
// email and wrong password produce the same error so responses cannot be used
// to enumerate accounts.
func (s *SessionService) Login(ctx context.Context, email, password, clientIP string) (*ports.SessionResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		allowed, err := s.throttle.Allowed(ctx, email, clientIP)
		if err != nil {
			s.logger.Warn().Err(err).Str("ip", clientIP).Msg("login throttle check failed, allowing")
		} else if !allowed {
			return nil, domain.ErrTooManyAttempts
		}
	}

	principal, err := s.principals.FindByEmail(ctx, email)
	if err != nil {
		if err == domain.ErrPrincipalNotFound {
			s.noteFailure(ctx, email, clientIP)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, principal.PasswordHash) {
		s.noteFailure(ctx, email, clientIP)
		return nil, domain.ErrInvalidCredentials
	}
	if !principal.Active {
		return nil, domain.ErrInvalidCredentials
	}

	result, err := s.issue(ctx, principal, clientIP)
	if err != nil {
		return nil, err
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email, clientIP); err != nil {
			s.logger.Warn().Err(err).Msg("login throttle reset failed")
		}
	}

	s.logger.Info().Str("principal_id", principal.ID).Str("ip", clientIP).Msg("login succeeded")
	return result, nil
}

// Rotate exchanges an active refresh token for a new token pair and revokes
// the presented one in the same conditional write. A token that was already
// rotated or revoked fails with ErrInvalidToken even when two rotations race:
// the store's revocation guard lets exactly one attempt through.
func (s *SessionService) Rotate(ctx context.Context, refreshToken, clientIP string) (*ports.SessionResult, error) {
	if refreshToken == "" {
		return nil, domain.ErrInvalidToken
	}

	newValue, err := newRefreshTokenValue()
	if err != nil {
		return nil, fmt.Errorf("rotate: %w", err)
	}

	now := time.Now().UTC()
	old, err := s.tokens.Revoke(ctx, refreshToken, now, clientIP, newValue)
	if err != nil {
		return nil, err
	}

	principal, err := s.principals.FindByID(ctx, old.OwnerID)
	if err != nil {
		if err == domain.ErrPrincipalNotFound {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	if !principal.Active {
		return nil, domain.ErrInvalidToken
	}

	next := &domain.RefreshToken{
		Token:       newValue,
		OwnerID:     principal.ID,
		ExpiresAt:   now.Add(s.refreshTTL),
		CreatedAt:   now,
		CreatedByIP: clientIP,
	}
	if err := s.tokens.Insert(ctx, next); err != nil {
		return nil, fmt.Errorf("rotate: insert successor: %w", err)
	}

	access, err := s.signer.Sign(principal.ID, principal.Role, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("rotate: sign access token: %w", err)
	}

	s.logger.Info().Str("principal_id", principal.ID).Str("ip", clientIP).Msg("refresh token rotated")

	summary := principal.Summary()
	return &ports.SessionResult{
		Principal:        summary,
		AccessToken:      access,
		RefreshToken:     next.Token,
		RefreshExpiresAt: next.ExpiresAt,
	}, nil
}

// Revoke kills a refresh token without replacement. The empty replaced-by
// pointer is what distinguishes an explicit revocation from a rotation in the
// audit chain. Revoking an already-inactive token is not idempotent success.
func (s *SessionService) Revoke(ctx context.Context, refreshToken, clientIP, callerID string, callerRole domain.Role) error {
	if refreshToken == "" {
		return domain.ErrInvalidToken
	}

	existing, err := s.tokens.FindByValue(ctx, refreshToken)
	if err != nil {
		return err
	}
	if callerRole != domain.RoleAdmin && existing.OwnerID != callerID {
		return domain.ErrForbidden
	}

	if _, err := s.tokens.Revoke(ctx, refreshToken, time.Now().UTC(), clientIP, ""); err != nil {
		return err
	}

	s.logger.Info().Str("owner_id", existing.OwnerID).Str("revoked_by", callerID).Msg("refresh token revoked")
	return nil
}

// ChangePassword verifies the current password and atomically replaces the
// stored hash together with the audit fields. Outstanding refresh tokens are
// left alive; sessions are revoked explicitly, not as a password side effect.
func (s *SessionService) ChangePassword(ctx context.Context, principalID, currentPassword, newPassword string) (*domain.PrincipalSummary, error) {
	principal, err := s.principals.FindByID(ctx, principalID)
	if err != nil {
		return nil, err
	}

	if !s.hasher.Verify(currentPassword, principal.PasswordHash) {
		return nil, domain.ErrIncorrectPassword
	}

	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("change password: %w", err)
	}

	updated, err := s.principals.Update(ctx, principalID, ports.PrincipalPatch{
		PasswordHash: &digest,
		ModifiedAt:   time.Now().UTC(),
		ModifiedBy:   principalID,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("principal_id", principalID).Msg("password changed")
	summary := updated.Summary()
	return &summary, nil
}

// issue mints the access token and persists a new refresh token for principal.
func (s *SessionService) issue(ctx context.Context, principal *domain.Principal, clientIP string) (*ports.SessionResult, error) {
	access, err := s.signer.Sign(principal.ID, principal.Role, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("issue: sign access token: %w", err)
	}

	value, err := newRefreshTokenValue()
	if err != nil {
		return nil, fmt.Errorf("issue: %w", err)
	}

	now := time.Now().UTC()
	rt := &domain.RefreshToken{
		Token:       value,
		OwnerID:     principal.ID,
		ExpiresAt:   now.Add(s.refreshTTL),
		CreatedAt:   now,
		CreatedByIP: clientIP,
	}
	if err := s.tokens.Insert(ctx, rt); err != nil {
		return nil, fmt.Errorf("issue: insert refresh token: %w", err)
	}

	summary := principal.Summary()
	return &ports.SessionResult{
		Principal:        summary,
		AccessToken:      access,
		RefreshToken:     rt.Token,
		RefreshExpiresAt: rt.ExpiresAt,
	}, nil
}

func (s *SessionService) noteFailure(ctx context.Context, email, ip string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.NoteFailure(ctx, email, ip); err != nil {
		s.logger.Warn().Err(err).Msg("login throttle record failed")
	}
}

func newRefreshTokenValue() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
