package dto

import (
	"github.com/google/uuid"

	"colegio_backend/internals/features/academics/subjects/model"
)

type CreateSubjectRequest struct {
	CourseID    uuid.UUID  `json:"courseId" validate:"required"`
	Name        string     `json:"name" validate:"required,max=100"`
	Code        *string    `json:"code" validate:"omitempty,max=20"`
	TeacherID   *uuid.UUID `json:"teacherId"`
	WeeklyHours *int       `json:"weeklyHours" validate:"omitempty,gte=1,lte=40"`
}

func (r *CreateSubjectRequest) ToModel(tenantID uuid.UUID) model.Subject {
	return model.Subject{
		SubjectTenantID:      tenantID,
		SubjectCourseID:      r.CourseID,
		SubjectName:          r.Name,
		SubjectCode:          r.Code,
		SubjectTeacherUserID: r.TeacherID,
		SubjectWeeklyHours:   r.WeeklyHours,
	}
}

// course is fixed once created; move = delete + create
type UpdateSubjectRequest struct {
	Name         *string    `json:"name" validate:"omitempty,max=100"`
	Code         *string    `json:"code" validate:"omitempty,max=20"`
	TeacherID    *uuid.UUID `json:"teacherId"`
	ClearTeacher bool       `json:"clearTeacher"`
	WeeklyHours  *int       `json:"weeklyHours" validate:"omitempty,gte=1,lte=40"`
}

func (r *UpdateSubjectRequest) Apply(s *model.Subject) {
	if r.Name != nil {
		s.SubjectName = *r.Name
	}
	if r.Code != nil {
		s.SubjectCode = r.Code
	}
	if r.ClearTeacher {
		s.SubjectTeacherUserID = nil
	} else if r.TeacherID != nil {
		s.SubjectTeacherUserID = r.TeacherID
	}
	if r.WeeklyHours != nil {
		s.SubjectWeeklyHours = r.WeeklyHours
	}
}
