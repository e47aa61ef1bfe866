package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/opsdesk/incident-report/internal/core/domain"
	"github.com/opsdesk/incident-report/internal/core/ports"
)

// IncidentService implements incident record keeping: creation, updates, and
// the acknowledge/resolve lifecycle.
type IncidentService struct {
	repo   ports.IncidentRepository
	logger zerolog.Logger
}

func NewIncidentService(repo ports.IncidentRepository, logger zerolog.Logger) *IncidentService {
	return &IncidentService{repo: repo, logger: logger}
}

func (s *IncidentService) Create(ctx context.Context, in ports.CreateIncidentInput) (*domain.Incident, error) {
	now := time.Now().UTC()
	incident := &domain.Incident{
		ID:             uuid.NewString(),
		Category:       in.Category,
		Location:       in.Location,
		OccurredAt:     in.OccurredAt,
		AffectedName:   in.AffectedName,
		SupervisorName: in.SupervisorName,
		Description:    in.Description,
		RootCause:      in.RootCause,
		HandlerName:    in.HandlerName,
		Active:         true,
		CreatedAt:      now,
		ModifiedAt:     now,
		ModifiedBy:     in.CallerID,
	}

	created, err := s.repo.Insert(ctx, incident)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("incident_id", created.ID).Str("category", created.Category).Msg("incident created")
	return created, nil
}

func (s *IncidentService) Update(ctx context.Context, id string, in ports.UpdateIncidentInput) (*domain.Incident, error) {
	incident, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyIfSet(&incident.Category, in.Category)
	applyIfSet(&incident.Location, in.Location)
	applyIfSet(&incident.AffectedName, in.AffectedName)
	applyIfSet(&incident.SupervisorName, in.SupervisorName)
	applyIfSet(&incident.Description, in.Description)
	applyIfSet(&incident.RootCause, in.RootCause)
	applyIfSet(&incident.HandlerName, in.HandlerName)
	if in.Active != nil {
		incident.Active = *in.Active
	}
	incident.ModifiedAt = time.Now().UTC()
	incident.ModifiedBy = in.CallerID

	return s.repo.Replace(ctx, id, incident)
}

func (s *IncidentService) GetByID(ctx context.Context, id string) (*domain.Incident, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *IncidentService) List(ctx context.Context, filter ports.IncidentFilter) ([]domain.Incident, error) {
	return s.repo.List(ctx, filter)
}

func (s *IncidentService) Acknowledge(ctx context.Context, id, handlerName, callerID string) (*domain.Incident, error) {
	incident, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := incident.Acknowledge(handlerName, now); err != nil {
		return nil, err
	}
	incident.ModifiedAt = now
	incident.ModifiedBy = callerID

	updated, err := s.repo.Replace(ctx, id, incident)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("incident_id", id).Str("handler", handlerName).Msg("incident acknowledged")
	return updated, nil
}

func (s *IncidentService) Resolve(ctx context.Context, id, comment, callerID string) (*domain.Incident, error) {
	incident, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := incident.Resolve(comment, now); err != nil {
		return nil, err
	}
	incident.ModifiedAt = now
	incident.ModifiedBy = callerID

	updated, err := s.repo.Replace(ctx, id, incident)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("incident_id", id).Msg("incident resolved")
	return updated, nil
}

func applyIfSet(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
