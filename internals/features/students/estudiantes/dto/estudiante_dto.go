package dto

import (
	"time"

	"github.com/google/uuid"

	"colegio_backend/internals/features/students/estudiantes/model"
)

type CreateEstudianteRequest struct {
	FirstName        string  `json:"firstName" validate:"required,max=100"`
	LastName         string  `json:"lastName" validate:"required,max=100"`
	RUT              *string `json:"rut" validate:"omitempty,max=20"`
	EnrollmentNumber *string `json:"enrollmentNumber" validate:"omitempty,max=30"`
	Email            *string `json:"email" validate:"omitempty,email"`
	BirthDate        *string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	GradeLabel       *string `json:"gradeLabel" validate:"omitempty,max=50"`
}

func birth(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil
	}
	return &t
}

func (r *CreateEstudianteRequest) ToModel(tenantID uuid.UUID) model.Estudiante {
	return model.Estudiante{
		EstudianteTenantID:         tenantID,
		EstudianteFirstName:        r.FirstName,
		EstudianteLastName:         r.LastName,
		EstudianteRUT:              r.RUT,
		EstudianteEnrollmentNumber: r.EnrollmentNumber,
		EstudianteEmail:            r.Email,
		EstudianteBirthDate:        birth(r.BirthDate),
		EstudianteGradeLabel:       r.GradeLabel,
		EstudianteIsActive:         true,
	}
}

type UpdateEstudianteRequest struct {
	FirstName        *string `json:"firstName" validate:"omitempty,max=100"`
	LastName         *string `json:"lastName" validate:"omitempty,max=100"`
	RUT              *string `json:"rut" validate:"omitempty,max=20"`
	EnrollmentNumber *string `json:"enrollmentNumber" validate:"omitempty,max=30"`
	Email            *string `json:"email" validate:"omitempty,email"`
	BirthDate        *string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	GradeLabel       *string `json:"gradeLabel" validate:"omitempty,max=50"`
	IsActive         *bool   `json:"isActive"`
}

func (r *UpdateEstudianteRequest) Apply(e *model.Estudiante) {
	if r.FirstName != nil {
		e.EstudianteFirstName = *r.FirstName
	}
	if r.LastName != nil {
		e.EstudianteLastName = *r.LastName
	}
	if r.RUT != nil {
		e.EstudianteRUT = r.RUT
	}
	if r.EnrollmentNumber != nil {
		e.EstudianteEnrollmentNumber = r.EnrollmentNumber
	}
	if r.Email != nil {
		e.EstudianteEmail = r.Email
	}
	if r.BirthDate != nil {
		e.EstudianteBirthDate = birth(r.BirthDate)
	}
	if r.GradeLabel != nil {
		e.EstudianteGradeLabel = r.GradeLabel
	}
	if r.IsActive != nil {
		e.EstudianteIsActive = *r.IsActive
	}
}
