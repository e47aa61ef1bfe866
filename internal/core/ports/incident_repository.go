package ports

import (
	"context"

	"github.com/opsdesk/incident-report/internal/core/domain"
)

// IncidentRepository persists incident records. Absence is always the
// explicit domain.ErrIncidentNotFound.
type IncidentRepository interface {
	Insert(ctx context.Context, inc *domain.Incident) (*domain.Incident, error)
	FindByID(ctx context.Context, id string) (*domain.Incident, error)
	// Replace overwrites the stored record with inc and returns the stored
	// version, or domain.ErrIncidentNotFound.
	Replace(ctx context.Context, id string, inc *domain.Incident) (*domain.Incident, error)
	List(ctx context.Context, filter IncidentFilter) ([]domain.Incident, error)
}
