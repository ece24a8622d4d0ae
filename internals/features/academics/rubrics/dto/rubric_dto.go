package dto

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"colegio_backend/internals/features/academics/rubrics/model"
)

type CreateRubricRequest struct {
	CourseID     *string           `json:"courseId" validate:"omitempty,uuid"`
	SubjectID    *string           `json:"subjectId" validate:"omitempty,uuid"`
	EvaluationID *string           `json:"evaluationId" validate:"omitempty,uuid"`
	Title        string            `json:"title" validate:"required,max=200"`
	Description  *string           `json:"description"`
	Criteria     []model.Criterion `json:"criteria" validate:"required,min=1,dive"`
}

func optUUID(s *string) *uuid.UUID {
	if s == nil || *s == "" {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil
	}
	return &id
}

func (r *CreateRubricRequest) ToModel(tenantID, teacherID uuid.UUID) model.Rubric {
	return model.Rubric{
		RubricTenantID:      tenantID,
		RubricTeacherUserID: teacherID,
		RubricCourseID:      optUUID(r.CourseID),
		RubricSubjectID:     optUUID(r.SubjectID),
		RubricEvaluationID:  optUUID(r.EvaluationID),
		RubricTitle:         r.Title,
		RubricDescription:   r.Description,
		RubricCriteria:      datatypes.NewJSONType(r.Criteria),
	}
}

type UpdateRubricRequest struct {
	Title       *string           `json:"title" validate:"omitempty,max=200"`
	Description *string           `json:"description"`
	Criteria    []model.Criterion `json:"criteria" validate:"omitempty,min=1,dive"`
}

func (r *UpdateRubricRequest) Apply(m *model.Rubric) {
	if r.Title != nil {
		m.RubricTitle = *r.Title
	}
	if r.Description != nil {
		m.RubricDescription = r.Description
	}
	if len(r.Criteria) > 0 {
		m.RubricCriteria = datatypes.NewJSONType(r.Criteria)
	}
}

// RubricResponse adds the computed maximum score.
type RubricResponse struct {
	model.Rubric
	MaxPoints float64 `json:"maxPoints"`
}

func FromModel(m model.Rubric) RubricResponse {
	return RubricResponse{Rubric: m, MaxPoints: m.MaxPoints()}
}
