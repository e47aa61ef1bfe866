package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/opsdesk/incident-report/internal/core/domain"
	"github.com/opsdesk/incident-report/internal/core/ports"
	"github.com/opsdesk/incident-report/internal/infrastructure/hash"
)

func newTestDirectory(t *testing.T) (*PrincipalService, *stubPrincipals, *stubTokens) {
	t.Helper()
	principals := newStubPrincipals()
	tokens := newStubTokens()
	svc := NewPrincipalService(principals, tokens, hash.NewBcryptHasher(4), zerolog.Nop())
	return svc, principals, tokens
}

func TestPrincipalService_Create(t *testing.T) {
	svc, principals, _ := newTestDirectory(t)

	summary, err := svc.Create(context.Background(), ports.CreatePrincipalInput{
		DisplayName: "Alice",
		Email:       "alice@x.com",
		Password:    "s3cret-pass",
		Role:        domain.RoleUser,
		CallerID:    "admin-1",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if summary.ID == "" || summary.Email != "alice@x.com" || !summary.Active {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	stored, err := principals.FindByID(context.Background(), summary.ID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if stored.PasswordHash == "s3cret-pass" || stored.PasswordHash == "" {
		t.Fatalf("password not hashed: %q", stored.PasswordHash)
	}
	if stored.ModifiedBy != "admin-1" {
		t.Fatalf("audit field missing: %+v", stored)
	}
}

func TestPrincipalService_Create_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestDirectory(t)

	in := ports.CreatePrincipalInput{
		DisplayName: "Alice", Email: "alice@x.com", Password: "s3cret-pass",
		Role: domain.RoleUser, CallerID: "admin-1",
	}
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := svc.Create(context.Background(), in); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestPrincipalService_Create_BadRole(t *testing.T) {
	svc, _, _ := newTestDirectory(t)
	_, err := svc.Create(context.Background(), ports.CreatePrincipalInput{
		DisplayName: "Bob", Email: "bob@x.com", Password: "s3cret-pass",
		Role: "Superuser", CallerID: "admin-1",
	})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestPrincipalService_Update_Deactivate(t *testing.T) {
	svc, _, _ := newTestDirectory(t)

	created, err := svc.Create(context.Background(), ports.CreatePrincipalInput{
		DisplayName: "Alice", Email: "alice@x.com", Password: "s3cret-pass",
		Role: domain.RoleUser, CallerID: "admin-1",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	inactive := false
	updated, err := svc.Update(context.Background(), created.ID, ports.UpdatePrincipalInput{
		Active:   &inactive,
		CallerID: "admin-1",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Active {
		t.Fatalf("expected deactivated principal")
	}
}

func TestPrincipalService_RefreshTokens_Redacted(t *testing.T) {
	svc, principals, tokens := newTestDirectory(t)
	p := seedPrincipal(t, principals, "alice@x.com", "s3cret-pass", domain.RoleUser, true)

	now := time.Now().UTC()
	revokedAt := now.Add(-time.Minute)
	full := strings.Repeat("a", 80)
	successor := strings.Repeat("b", 80)
	_ = tokens.Insert(context.Background(), &domain.RefreshToken{
		Token: full, OwnerID: p.ID,
		ExpiresAt: now.Add(time.Hour), CreatedAt: now.Add(-time.Hour), CreatedByIP: "ip-1",
		RevokedAt: &revokedAt, RevokedByIP: "ip-2", ReplacedByToken: successor,
	})
	_ = tokens.Insert(context.Background(), &domain.RefreshToken{
		Token: successor, OwnerID: p.ID,
		ExpiresAt: now.Add(time.Hour), CreatedAt: now, CreatedByIP: "ip-2",
	})

	views, err := svc.RefreshTokens(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("listing failed: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}
	for _, v := range views {
		if len(v.TokenPrefix) != tokenPrefixLen {
			t.Fatalf("token not redacted: %q", v.TokenPrefix)
		}
	}

	// The chain link stays walkable through the redacted prefixes.
	var chained bool
	for _, v := range views {
		if v.ReplacedByPrefix == successor[:tokenPrefixLen] && !v.Active {
			chained = true
		}
	}
	if !chained {
		t.Fatalf("rotation chain not visible in views: %+v", views)
	}
}

func TestPrincipalService_RefreshTokens_UnknownPrincipal(t *testing.T) {
	svc, _, _ := newTestDirectory(t)
	if _, err := svc.RefreshTokens(context.Background(), "ghost"); !errors.Is(err, domain.ErrPrincipalNotFound) {
		t.Fatalf("expected ErrPrincipalNotFound, got %v", err)
	}
}
