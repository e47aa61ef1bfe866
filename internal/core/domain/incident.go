package domain

import (
	"errors"
	"time"
)

var ErrIncidentTransition = errors.New("invalid incident transition")

// Incident is a reported workplace incident record. Records are soft-deleted
// via the Active flag and keep the same audit fields as principals.
type Incident struct {
	ID             string     `bson:"_id,omitempty" json:"id"`
	Category       string     `bson:"category" json:"category"`
	Location       string     `bson:"location" json:"location"`
	OccurredAt     time.Time  `bson:"occurred_at" json:"occurred_at"`
	AffectedName   string     `bson:"affected_name" json:"affected_name"`
	SupervisorName string     `bson:"supervisor_name" json:"supervisor_name"`
	Description    string     `bson:"description,omitempty" json:"description,omitempty"`
	RootCause      string     `bson:"root_cause" json:"root_cause"`
	HandlerName    string     `bson:"handler_name,omitempty" json:"handler_name,omitempty"`
	Acknowledged   bool       `bson:"acknowledged" json:"acknowledged"`
	AcknowledgedAt *time.Time `bson:"acknowledged_at,omitempty" json:"acknowledged_at,omitempty"`
	Resolved       bool       `bson:"resolved" json:"resolved"`
	ResolvedAt     *time.Time `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`
	Comment        string     `bson:"comment,omitempty" json:"comment,omitempty"`
	Active         bool       `bson:"active" json:"active"`
	CreatedAt      time.Time  `bson:"created_at" json:"created_at"`
	ModifiedAt     time.Time  `bson:"modified_at" json:"modified_at"`
	ModifiedBy     string     `bson:"modified_by" json:"modified_by"`
}

// Acknowledge marks the incident as seen by a handler. Acknowledging twice is
// an invalid transition.
func (i *Incident) Acknowledge(handler string, now time.Time) error {
	if i.Acknowledged {
		return ErrIncidentTransition
	}
	i.Acknowledged = true
	i.AcknowledgedAt = &now
	i.HandlerName = handler
	return nil
}

// Resolve closes the incident. An incident must be acknowledged first and
// cannot be resolved twice.
func (i *Incident) Resolve(comment string, now time.Time) error {
	if !i.Acknowledged || i.Resolved {
		return ErrIncidentTransition
	}
	i.Resolved = true
	i.ResolvedAt = &now
	i.Comment = comment
	return nil
}
