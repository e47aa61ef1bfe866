// Package seed creates the initial admin principal on an empty deployment.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/opsdesk/incident-report/internal/core/domain"
	"github.com/opsdesk/incident-report/internal/core/ports"
	"github.com/opsdesk/incident-report/internal/pkg/config"
)

// AdminPrincipal inserts the configured admin account if it does not exist
// yet. An empty seed email disables seeding; an already-registered email is
// not an error, so restarts are safe.
func AdminPrincipal(ctx context.Context, cfg config.SeedConfig, store ports.PrincipalStore, hasher ports.SecretHasher, log zerolog.Logger) error {
	if cfg.AdminEmail == "" {
		return nil
	}

	if _, err := store.FindByEmail(ctx, cfg.AdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrPrincipalNotFound) {
		return err
	}

	digest, err := hasher.Hash(cfg.AdminPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin := &domain.Principal{
		ID:           uuid.NewString(),
		DisplayName:  cfg.AdminName,
		Email:        cfg.AdminEmail,
		PasswordHash: digest,
		Role:         domain.RoleAdmin,
		Active:       true,
		CreatedAt:    now,
		ModifiedAt:   now,
		ModifiedBy:   "seed",
	}

	if _, err := store.Insert(ctx, admin); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil
		}
		return err
	}

	log.Info().Str("email", cfg.AdminEmail).Msg("seeded admin principal")
	return nil
}
