package token

import (
	"errors"
	"testing"
	"time"

	"github.com/opsdesk/incident-report/internal/core/domain"
)

func TestCodec_RoundTrip(t *testing.T) {
	codec := NewCodec("secret", "incident-report")

	signed, err := codec.Sign("principal-1", domain.RoleAdmin, time.Hour)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	claims, err := codec.Verify(signed)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.Subject != "principal-1" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if claims.Role != domain.RoleAdmin {
		t.Fatalf("unexpected role: %s", claims.Role)
	}
}

func TestCodec_Expired(t *testing.T) {
	codec := NewCodec("secret", "incident-report")

	signed, err := codec.Sign("principal-1", domain.RoleUser, -time.Minute)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := codec.Verify(signed); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestCodec_BadSignature(t *testing.T) {
	signed, err := NewCodec("secret-a", "incident-report").Sign("principal-1", domain.RoleUser, time.Hour)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := NewCodec("secret-b", "incident-report").Verify(signed); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestCodec_Malformed(t *testing.T) {
	codec := NewCodec("secret", "incident-report")

	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := codec.Verify(input); !errors.Is(err, ErrMalformed) {
			t.Fatalf("input %q: expected ErrMalformed, got %v", input, err)
		}
	}
}
