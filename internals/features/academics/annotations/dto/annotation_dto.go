package dto

import (
	"time"

	"github.com/google/uuid"

	"colegio_backend/internals/features/academics/annotations/model"
)

type CreateAnnotationRequest struct {
	EstudianteID uuid.UUID  `json:"estudianteId" validate:"required"`
	CourseID     *uuid.UUID `json:"courseId"`
	Type         string     `json:"type" validate:"required,oneof=positiva negativa observacion"`
	Description  string     `json:"description" validate:"required,max=2000"`
	// defaults to today
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

func (r *CreateAnnotationRequest) ToModel(tenantID, author uuid.UUID, today time.Time) model.Annotation {
	d := today
	if t, err := time.Parse("2006-01-02", r.Date); err == nil {
		d = t
	}
	return model.Annotation{
		AnnotationTenantID:     tenantID,
		AnnotationEstudianteID: r.EstudianteID,
		AnnotationCourseID:     r.CourseID,
		AnnotationAuthorUserID: author,
		AnnotationType:         r.Type,
		AnnotationDescription:  r.Description,
		AnnotationDate:         d,
	}
}
