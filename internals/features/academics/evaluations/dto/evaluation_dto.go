package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"colegio_backend/internals/features/academics/evaluations/model"
)

type CreateEvaluationRequest struct {
	CourseID  string `json:"courseId" validate:"required,uuid"`
	SubjectID string `json:"subjectId" validate:"required,uuid"`
	// staff may create on behalf of a teacher; teachers always own what they create
	TeacherID   *string   `json:"teacherId" validate:"omitempty,uuid"`
	Title       string    `json:"title" validate:"required,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=4000"`
	Type        string    `json:"type" validate:"omitempty,oneof=sumativa formativa diagnostica"`
	Date        time.Time `json:"date" validate:"required"`
	Weight      float64   `json:"weight" validate:"gte=0,lte=100"`
	QuestionIDs []string  `json:"questionIds" validate:"omitempty,dive,uuid"`
}

func (r *CreateEvaluationRequest) ToModel(tenantID, teacherID uuid.UUID) model.Evaluation {
	return model.Evaluation{
		EvaluationTenantID:      tenantID,
		EvaluationCourseID:      uuid.MustParse(r.CourseID),
		EvaluationSubjectID:     uuid.MustParse(r.SubjectID),
		EvaluationTeacherUserID: teacherID,
		EvaluationTitle:         strings.TrimSpace(r.Title),
		EvaluationDescription:   r.Description,
		EvaluationType:          r.Type,
		EvaluationDate:          r.Date,
		EvaluationWeight:        r.Weight,
		EvaluationQuestionIDs:   pq.StringArray(r.QuestionIDs),
	}
}

type UpdateEvaluationRequest struct {
	SubjectID   *string    `json:"subjectId" validate:"omitempty,uuid"`
	Title       *string    `json:"title" validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=4000"`
	Type        *string    `json:"type" validate:"omitempty,oneof=sumativa formativa diagnostica"`
	Date        *time.Time `json:"date"`
	Weight      *float64   `json:"weight" validate:"omitempty,gte=0,lte=100"`
	QuestionIDs []string   `json:"questionIds" validate:"omitempty,dive,uuid"`
}

// Apply reports whether the date/subject changed, which re-runs the schedule checks.
func (r *UpdateEvaluationRequest) Apply(e *model.Evaluation) (reschedule bool) {
	if r.SubjectID != nil {
		id := uuid.MustParse(*r.SubjectID)
		reschedule = reschedule || id != e.EvaluationSubjectID
		e.EvaluationSubjectID = id
	}
	if r.Title != nil {
		e.EvaluationTitle = *r.Title
	}
	if r.Description != nil {
		e.EvaluationDescription = r.Description
	}
	if r.Type != nil {
		e.EvaluationType = *r.Type
	}
	if r.Date != nil {
		reschedule = reschedule || !r.Date.Equal(e.EvaluationDate)
		e.EvaluationDate = *r.Date
	}
	if r.Weight != nil {
		e.EvaluationWeight = *r.Weight
	}
	if r.QuestionIDs != nil {
		e.EvaluationQuestionIDs = pq.StringArray(r.QuestionIDs)
	}
	return reschedule
}

type ListQuery struct {
	CourseID  string `query:"courseId"`
	SubjectID string `query:"subjectId"`
	Status    string `query:"status"`
	From      string `query:"from"`
	To        string `query:"to"`
}
