package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"colegio_backend/internals/features/communication/events/model"
)

type CreateEventRequest struct {
	CourseID    *uuid.UUID `json:"courseId"`
	Title       string     `json:"title" validate:"required,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	StartsAt    time.Time  `json:"startsAt" validate:"required"`
	EndsAt      *time.Time `json:"endsAt" validate:"omitempty,gtfield=StartsAt"`
	Location    *string    `json:"location" validate:"omitempty,max=150"`
	Audience    []string   `json:"audience" validate:"omitempty,dive,oneof=admin sostenedor director utp teacher student apoderado"`
	// send an inbox notification to the audience
	Notify bool `json:"notify"`
}

func (r *CreateEventRequest) ToModel(tenantID, author uuid.UUID) model.Event {
	return model.Event{
		EventTenantID:    tenantID,
		EventCourseID:    r.CourseID,
		EventTitle:       r.Title,
		EventDescription: r.Description,
		EventStartsAt:    r.StartsAt,
		EventEndsAt:      r.EndsAt,
		EventLocation:    r.Location,
		EventAudience:    pq.StringArray(r.Audience),
		EventCreatedBy:   author,
	}
}

type UpdateEventRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	StartsAt    *time.Time `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
	Location    *string    `json:"location" validate:"omitempty,max=150"`
	Audience    []string   `json:"audience" validate:"omitempty,dive,oneof=admin sostenedor director utp teacher student apoderado"`
}

func (r *UpdateEventRequest) Apply(e *model.Event) {
	if r.Title != nil {
		e.EventTitle = *r.Title
	}
	if r.Description != nil {
		e.EventDescription = r.Description
	}
	if r.StartsAt != nil {
		e.EventStartsAt = *r.StartsAt
	}
	if r.EndsAt != nil {
		e.EventEndsAt = r.EndsAt
	}
	if r.Location != nil {
		e.EventLocation = r.Location
	}
	if r.Audience != nil {
		e.EventAudience = pq.StringArray(r.Audience)
	}
}

// EndsBeforeStart reports an inverted range.
func EndsBeforeStart(e model.Event) bool {
	return e.EventEndsAt != nil && e.EventEndsAt.Before(e.EventStartsAt)
}
