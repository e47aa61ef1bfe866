package ports

import (
	"context"
	"time"

	"github.com/opsdesk/incident-report/internal/core/domain"
)

type CreateIncidentInput struct {
	Category       string
	Location       string
	OccurredAt     time.Time
	AffectedName   string
	SupervisorName string
	Description    string
	RootCause      string
	HandlerName    string
	CallerID       string
}

type UpdateIncidentInput struct {
	Category       *string
	Location       *string
	AffectedName   *string
	SupervisorName *string
	Description    *string
	RootCause      *string
	HandlerName    *string
	Active         *bool
	CallerID       string
}

// IncidentFilter narrows List results. Zero value means all active incidents.
type IncidentFilter struct {
	Category string
}

type IncidentService interface {
	Create(ctx context.Context, in CreateIncidentInput) (*domain.Incident, error)
	Update(ctx context.Context, id string, in UpdateIncidentInput) (*domain.Incident, error)
	GetByID(ctx context.Context, id string) (*domain.Incident, error)
	List(ctx context.Context, filter IncidentFilter) ([]domain.Incident, error)
	Acknowledge(ctx context.Context, id, handlerName, callerID string) (*domain.Incident, error)
	Resolve(ctx context.Context, id, comment, callerID string) (*domain.Incident, error)
}
