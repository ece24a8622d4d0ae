package dto

import "github.com/google/uuid"

// InstitutionalListRequest e-mails every guardian/staff of the tenant, or of the given courses.
type InstitutionalListRequest struct {
	Title     string      `json:"title" validate:"required,max=200"`
	Body      string      `json:"body" validate:"required,max=10000"`
	CourseIDs []uuid.UUID `json:"courseIds" validate:"omitempty,max=100"`
	// apoderados | staff; empty = both
	Audience []string `json:"audience" validate:"omitempty,dive,oneof=apoderados staff"`
}

type InstitutionalListResponse struct {
	Recipients int `json:"recipients"`
}
