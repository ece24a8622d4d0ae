package dto

import (
	"time"

	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

type AttendanceMark struct {
	EstudianteID uuid.UUID `json:"estudianteId" validate:"required"`
	Status       string    `json:"status" validate:"required,oneof=presente ausente atrasado justificado"`
	Note         *string   `json:"note" validate:"omitempty,max=300"`
}

// BulkAttendanceRequest takes the roll for one course (and optional subject) on one day.
type BulkAttendanceRequest struct {
	CourseID  uuid.UUID        `json:"courseId" validate:"required"`
	SubjectID *uuid.UUID       `json:"subjectId"`
	Date      string           `json:"date" validate:"required,datetime=2006-01-02"`
	Marks     []AttendanceMark `json:"marks" validate:"required,min=1,max=200,dive"`
}

func (r BulkAttendanceRequest) ParsedDate() time.Time {
	d, _ := time.Parse(DateLayout, r.Date)
	return d
}

type UpdateAttendanceRequest struct {
	Status string  `json:"status" validate:"required,oneof=presente ausente atrasado justificado"`
	Note   *string `json:"note" validate:"omitempty,max=300"`
}
