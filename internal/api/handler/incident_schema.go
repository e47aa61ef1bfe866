package handler

import "time"

// --- Request types ---

type createIncidentRequest struct {
	Category       string    `json:"category"        validate:"required"`
	Location       string    `json:"location"        validate:"required"`
	OccurredAt     time.Time `json:"occurred_at"     validate:"required"`
	AffectedName   string    `json:"affected_name"   validate:"required"`
	SupervisorName string    `json:"supervisor_name" validate:"required"`
	Description    string    `json:"description,omitempty"`
	RootCause      string    `json:"root_cause"      validate:"required"`
	HandlerName    string    `json:"handler_name,omitempty"`
}

type updateIncidentRequest struct {
	Category       *string `json:"category,omitempty"`
	Location       *string `json:"location,omitempty"`
	AffectedName   *string `json:"affected_name,omitempty"`
	SupervisorName *string `json:"supervisor_name,omitempty"`
	Description    *string `json:"description,omitempty"`
	RootCause      *string `json:"root_cause,omitempty"`
	HandlerName    *string `json:"handler_name,omitempty"`
	Active         *bool   `json:"active,omitempty"`
}

type acknowledgeIncidentRequest struct {
	HandlerName string `json:"handler_name" validate:"required"`
}

type resolveIncidentRequest struct {
	Comment string `json:"comment" validate:"required"`
}
