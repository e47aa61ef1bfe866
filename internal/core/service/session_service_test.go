package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/opsdesk/incident-report/internal/core/domain"
	"github.com/opsdesk/incident-report/internal/core/ports"
	"github.com/opsdesk/incident-report/internal/core/token"
	"github.com/opsdesk/incident-report/internal/infrastructure/hash"
)

// stubPrincipals implements ports.PrincipalStore in memory.
type stubPrincipals struct {
	mu         sync.Mutex
	byID       map[string]*domain.Principal
	emailIndex map[string]string
}

func newStubPrincipals() *stubPrincipals {
	return &stubPrincipals{
		byID:       make(map[string]*domain.Principal),
		emailIndex: make(map[string]string),
	}
}

func clonePrincipal(p *domain.Principal) *domain.Principal {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

func (s *stubPrincipals) FindByID(_ context.Context, id string) (*domain.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrPrincipalNotFound
	}
	return clonePrincipal(p), nil
}

func (s *stubPrincipals) FindByEmail(_ context.Context, email string) (*domain.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.emailIndex[email]
	if !ok {
		return nil, domain.ErrPrincipalNotFound
	}
	return clonePrincipal(s.byID[id]), nil
}

func (s *stubPrincipals) Insert(_ context.Context, p *domain.Principal) (*domain.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.emailIndex[p.Email]; ok {
		return nil, domain.ErrEmailTaken
	}
	s.byID[p.ID] = clonePrincipal(p)
	s.emailIndex[p.Email] = p.ID
	return clonePrincipal(p), nil
}

func (s *stubPrincipals) Update(_ context.Context, id string, patch ports.PrincipalPatch) (*domain.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrPrincipalNotFound
	}
	if patch.DisplayName != nil {
		p.DisplayName = *patch.DisplayName
	}
	if patch.Role != nil {
		p.Role = *patch.Role
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
	if patch.PasswordHash != nil {
		p.PasswordHash = *patch.PasswordHash
	}
	p.ModifiedAt = patch.ModifiedAt
	p.ModifiedBy = patch.ModifiedBy
	return clonePrincipal(p), nil
}

func (s *stubPrincipals) List(_ context.Context) ([]domain.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Principal, 0, len(s.byID))
	for _, p := range s.byID {
		out = append(out, *p)
	}
	return out, nil
}

// stubTokens implements ports.RefreshTokenStore with the same conditional
// revocation guard the Mongo repository enforces.
type stubTokens struct {
	mu    sync.Mutex
	byVal map[string]*domain.RefreshToken
}

func newStubTokens() *stubTokens {
	return &stubTokens{byVal: make(map[string]*domain.RefreshToken)}
}

func (s *stubTokens) FindByValue(_ context.Context, value string) (*domain.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.byVal[value]
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	clone := *rt
	return &clone, nil
}

func (s *stubTokens) Insert(_ context.Context, rt *domain.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *rt
	s.byVal[rt.Token] = &clone
	return nil
}

func (s *stubTokens) Revoke(_ context.Context, value string, revokedAt time.Time, revokedByIP, replacedBy string) (*domain.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.byVal[value]
	if !ok || rt.RevokedAt != nil || !revokedAt.Before(rt.ExpiresAt) {
		return nil, domain.ErrInvalidToken
	}
	before := *rt
	rt.RevokedAt = &revokedAt
	rt.RevokedByIP = revokedByIP
	rt.ReplacedByToken = replacedBy
	return &before, nil
}

func (s *stubTokens) ListByOwner(_ context.Context, ownerID string) ([]domain.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.RefreshToken
	for _, rt := range s.byVal {
		if rt.OwnerID == ownerID {
			out = append(out, *rt)
		}
	}
	return out, nil
}

func newTestSession(t *testing.T) (*SessionService, *stubPrincipals, *stubTokens) {
	t.Helper()
	principals := newStubPrincipals()
	tokens := newStubTokens()
	hasher := hash.NewBcryptHasher(4)
	codec := token.NewCodec("test-secret", "test")
	svc := NewSessionService(principals, tokens, hasher, codec, nil, time.Hour, time.Hour, zerolog.Nop())
	return svc, principals, tokens
}

func seedPrincipal(t *testing.T, principals *stubPrincipals, email, password string, role domain.Role, active bool) *domain.Principal {
	t.Helper()
	hasher := hash.NewBcryptHasher(4)
	digest, err := hasher.Hash(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	p := &domain.Principal{
		ID:           "principal-" + email,
		DisplayName:  "Test " + email,
		Email:        email,
		PasswordHash: digest,
		Role:         role,
		Active:       active,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := principals.Insert(context.Background(), p); err != nil {
		t.Fatalf("insert principal: %v", err)
	}
	return p
}

func TestSessionService_Login_Success(t *testing.T) {
	svc, principals, tokens := newTestSession(t)
	p := seedPrincipal(t, principals, "a@x.com", "secret", domain.RoleUser, true)

	result, err := svc.Login(context.Background(), "a@x.com", "secret", "10.0.0.1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Principal.ID != p.ID {
		t.Fatalf("unexpected principal id: %s", result.Principal.ID)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", result)
	}
	// 40 random bytes, hex encoded.
	if len(result.RefreshToken) != 80 {
		t.Fatalf("unexpected refresh token length: %d", len(result.RefreshToken))
	}

	stored, err := tokens.FindByValue(context.Background(), result.RefreshToken)
	if err != nil {
		t.Fatalf("refresh token not persisted: %v", err)
	}
	if stored.OwnerID != p.ID || stored.CreatedByIP != "10.0.0.1" {
		t.Fatalf("unexpected stored token: %+v", stored)
	}
	if !stored.IsActive(time.Now().UTC()) {
		t.Fatalf("new refresh token should be active")
	}
}

func TestSessionService_Login_SameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	svc, principals, _ := newTestSession(t)
	seedPrincipal(t, principals, "a@x.com", "secret", domain.RoleUser, true)

	_, errNoEmail := svc.Login(context.Background(), "ghost@x.com", "secret", "ip")
	_, errBadPass := svc.Login(context.Background(), "a@x.com", "wrong", "ip")

	if !errors.Is(errNoEmail, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", errNoEmail)
	}
	if !errors.Is(errBadPass, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", errBadPass)
	}
	if errNoEmail.Error() != errBadPass.Error() {
		t.Fatalf("messages differ: %q vs %q", errNoEmail, errBadPass)
	}
}

type blockingThrottle struct{}

func (blockingThrottle) Allowed(context.Context, string, string) (bool, error) { return false, nil }
func (blockingThrottle) NoteFailure(context.Context, string, string) error     { return nil }
func (blockingThrottle) Reset(context.Context, string, string) error           { return nil }

func TestSessionService_Login_Throttled(t *testing.T) {
	principals := newStubPrincipals()
	svc := NewSessionService(principals, newStubTokens(), hash.NewBcryptHasher(4),
		token.NewCodec("s", "t"), blockingThrottle{}, time.Hour, time.Hour, zerolog.Nop())
	seedPrincipal(t, principals, "a@x.com", "secret", domain.RoleUser, true)

	if _, err := svc.Login(context.Background(), "a@x.com", "secret", "ip"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestSessionService_Login_InactivePrincipal(t *testing.T) {
	svc, principals, _ := newTestSession(t)
	seedPrincipal(t, principals, "a@x.com", "secret", domain.RoleUser, false)

	if _, err := svc.Login(context.Background(), "a@x.com", "secret", "ip"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for inactive principal, got %v", err)
	}
}

func TestSessionService_Rotate_InactivePrincipal(t *testing.T) {
	svc, principals, _ := newTestSession(t)
	p := seedPrincipal(t, principals, "a@x.com", "secret", domain.RoleUser, true)

	session, err := svc.Login(context.Background(), "a@x.com", "secret", "ip")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	inactive := false
	if _, err := principals.Update(context.Background(), p.ID, ports.PrincipalPatch{Active: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if _, err := svc.Rotate(context.Background(), session.RefreshToken, "ip"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for deactivated owner, got %v", err)
	}
}

func TestSessionService_Rotate_ChainsAndDetectsReplay(t *testing.T) {
	svc, principals, tokens := newTestSession(t)
	seedPrincipal(t, principals, "a@x.com", "secret", domain.RoleUser, true)

	first, err := svc.Login(context.Background(), "a@x.com", "secret", "ip-login")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	second, err := svc.Rotate(context.Background(), first.RefreshToken, "ip-rotate")
	if err != nil {
		t.Fatalf("rotate failed: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatalf("rotation returned the same token")
	}

	// The old token is dead and points forward at its successor.
	old, err := tokens.FindByValue(context.Background(), first.RefreshToken)
	if err != nil {
		t.Fatalf("old token lookup: %v", err)
	}
	if old.RevokedAt == nil || old.RevokedByIP != "ip-rotate" {
		t.Fatalf("old token not revoked: %+v", old)
	}
	if old.ReplacedByToken != second.RefreshToken {
		t.Fatalf("revocation chain broken: %q != %q", old.ReplacedByToken, second.RefreshToken)
	}

	// Replaying the rotated token always fails.
	if _, err := svc.Rotate(context.Background(), first.RefreshToken, "ip-replay"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("replay: expected ErrInvalidToken, got %v", err)
	}
}

func TestSessionService_Rotate_ConcurrentOnlyOneWins(t *testing.T) {
	svc, principals, _ := newTestSession(t)
	seedPrincipal(t, principals, "a@x.com", "secret", domain.RoleUser, true)

	session, err := svc.Login(context.Background(), "a@x.com", "secret", "ip")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Rotate(context.Background(), session.RefreshToken, "ip")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var wins, replays int
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrInvalidToken):
			replays++
		default:
			t.Fatalf("unexpected rotation error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winning rotation, got %d", wins)
	}
	if replays != attempts-1 {
		t.Fatalf("expected %d replay failures, got %d", attempts-1, replays)
	}
}

func TestSessionService_Rotate_ExpiredToken(t *testing.T) {
	svc, principals, tokens := newTestSession(t)
	p := seedPrincipal(t, principals, "a@x.com", "secret", domain.RoleUser, true)

	expired := &domain.RefreshToken{
		Token:     "expired-token",
		OwnerID:   p.ID,
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
		CreatedAt: time.Now().UTC().Add(-2 * time.Hour),
	}
	if err := tokens.Insert(context.Background(), expired); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, err := svc.Rotate(context.Background(), "expired-token", "ip"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSessionService_Revoke_OwnerAndAdmin(t *testing.T) {
	svc, principals, tokens := newTestSession(t)
	owner := seedPrincipal(t, principals, "owner@x.com", "secret", domain.RoleUser, true)
	admin := seedPrincipal(t, principals, "admin@x.com", "secret", domain.RoleAdmin, true)
	other := seedPrincipal(t, principals, "other@x.com", "secret", domain.RoleUser, true)

	session, err := svc.Login(context.Background(), "owner@x.com", "secret", "ip")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	// A different non-admin principal may not revoke someone else's token.
	err = svc.Revoke(context.Background(), session.RefreshToken, "ip", other.ID, other.Role)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// The owner may.
	if err := svc.Revoke(context.Background(), session.RefreshToken, "ip-revoke", owner.ID, owner.Role); err != nil {
		t.Fatalf("owner revoke failed: %v", err)
	}

	revoked, err := tokens.FindByValue(context.Background(), session.RefreshToken)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if revoked.RevokedAt == nil || revoked.ReplacedByToken != "" {
		t.Fatalf("explicit revocation must not set a replacement: %+v", revoked)
	}

	// Revoking again is not idempotent success.
	err = svc.Revoke(context.Background(), session.RefreshToken, "ip", admin.ID, admin.Role)
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("double revoke: expected ErrInvalidToken, got %v", err)
	}

	// An admin may revoke another owner's live token.
	session2, err := svc.Login(context.Background(), "owner@x.com", "secret", "ip")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := svc.Revoke(context.Background(), session2.RefreshToken, "ip", admin.ID, admin.Role); err != nil {
		t.Fatalf("admin revoke failed: %v", err)
	}
}

func TestSessionService_Revoke_UnknownToken(t *testing.T) {
	svc, _, _ := newTestSession(t)
	err := svc.Revoke(context.Background(), "no-such-token", "ip", "caller", domain.RoleAdmin)
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSessionService_ChangePassword(t *testing.T) {
	svc, principals, _ := newTestSession(t)
	p := seedPrincipal(t, principals, "a@x.com", "oldpass", domain.RoleUser, true)

	if _, err := svc.ChangePassword(context.Background(), p.ID, "wrong", "newpass123"); !errors.Is(err, domain.ErrIncorrectPassword) {
		t.Fatalf("expected ErrIncorrectPassword, got %v", err)
	}

	summary, err := svc.ChangePassword(context.Background(), p.ID, "oldpass", "newpass123")
	if err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if summary.ID != p.ID {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	if _, err := svc.Login(context.Background(), "a@x.com", "oldpass", "ip"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password should no longer work, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "a@x.com", "newpass123", "ip"); err != nil {
		t.Fatalf("new password login failed: %v", err)
	}
}

func TestSessionService_ChangePassword_KeepsOutstandingTokens(t *testing.T) {
	svc, principals, tokens := newTestSession(t)
	p := seedPrincipal(t, principals, "a@x.com", "oldpass", domain.RoleUser, true)

	session, err := svc.Login(context.Background(), "a@x.com", "oldpass", "ip")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := svc.ChangePassword(context.Background(), p.ID, "oldpass", "newpass123"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	rt, err := tokens.FindByValue(context.Background(), session.RefreshToken)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !rt.IsActive(time.Now().UTC()) {
		t.Fatalf("password change must not revoke outstanding refresh tokens")
	}
}
