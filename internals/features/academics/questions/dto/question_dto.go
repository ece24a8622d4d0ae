package dto

import (
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/datatypes"

	"colegio_backend/internals/features/academics/questions/model"
)

type CreateQuestionRequest struct {
	CourseID  *string        `json:"courseId" validate:"omitempty,uuid"`
	SubjectID *string        `json:"subjectId" validate:"omitempty,uuid"`
	Statement string         `json:"statement" validate:"required"`
	Type      string         `json:"type" validate:"required"`
	Options   []model.Option `json:"options" validate:"omitempty,dive"`
	Answer    *string        `json:"answer" validate:"omitempty,max=500"`
	Points    *float64       `json:"points" validate:"omitempty,gt=0,lte=100"`
}

type UpdateQuestionRequest struct {
	Statement *string        `json:"statement" validate:"omitempty,min=1"`
	Type      *string        `json:"type"`
	Options   []model.Option `json:"options" validate:"omitempty,dive"`
	Answer    *string        `json:"answer" validate:"omitempty,max=500"`
	Points    *float64       `json:"points" validate:"omitempty,gt=0,lte=100"`
}

func parseOpt(s *string) *uuid.UUID {
	if s == nil {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil
	}
	return &id
}

func (r *CreateQuestionRequest) ToModel(tenantID, teacherID uuid.UUID) model.Question {
	q := model.Question{
		QuestionTenantID:      tenantID,
		QuestionTeacherUserID: teacherID,
		QuestionCourseID:      parseOpt(r.CourseID),
		QuestionSubjectID:     parseOpt(r.SubjectID),
		QuestionStatement:     r.Statement,
		QuestionType:          strings.ToLower(strings.TrimSpace(r.Type)),
		QuestionOptions:       datatypes.NewJSONType(r.Options),
		QuestionAnswer:        r.Answer,
		QuestionPoints:        1,
	}
	if r.Points != nil {
		q.QuestionPoints = *r.Points
	}
	return q
}

func (r *UpdateQuestionRequest) Apply(q *model.Question) {
	if r.Statement != nil {
		q.QuestionStatement = *r.Statement
	}
	if r.Type != nil {
		q.QuestionType = strings.ToLower(strings.TrimSpace(*r.Type))
	}
	if r.Options != nil {
		q.QuestionOptions = datatypes.NewJSONType(r.Options)
	}
	if r.Answer != nil {
		q.QuestionAnswer = r.Answer
	}
	if r.Points != nil {
		q.QuestionPoints = *r.Points
	}
}

// Check validates the type-dependent shape of q. nil means OK.
//
//	seleccion_multiple: at least two options with distinct keys; answer, if set, is one of the keys
//	verdadero_falso:    no options; answer, if set, is V or F
//	desarrollo:         no options
func Check(q model.Question) map[string][]string {
	if !model.IsValidType(q.QuestionType) {
		return map[string][]string{"type": {"tipo debe ser seleccion_multiple, verdadero_falso o desarrollo"}}
	}
	fe := map[string][]string{}
	opts := q.QuestionOptions.Data()

	switch q.QuestionType {
	case model.TypeMultipleChoice:
		if len(opts) < 2 {
			fe["options"] = append(fe["options"], "se requieren al menos dos alternativas")
		}
		keys := lo.Map(opts, func(o model.Option, _ int) string { return strings.ToLower(o.Key) })
		if len(lo.Uniq(keys)) != len(keys) {
			fe["options"] = append(fe["options"], "las claves de las alternativas deben ser únicas")
		}
		if q.QuestionAnswer != nil && !lo.Contains(keys, strings.ToLower(*q.QuestionAnswer)) {
			fe["answer"] = append(fe["answer"], "la respuesta debe ser una de las alternativas")
		}
	case model.TypeTrueFalse:
		if len(opts) > 0 {
			fe["options"] = append(fe["options"], "verdadero/falso no lleva alternativas")
		}
		if q.QuestionAnswer != nil {
			a := strings.ToUpper(strings.TrimSpace(*q.QuestionAnswer))
			if a != "V" && a != "F" {
				fe["answer"] = append(fe["answer"], "la respuesta debe ser V o F")
			}
		}
	case model.TypeOpen:
		if len(opts) > 0 {
			fe["options"] = append(fe["options"], "una pregunta de desarrollo no lleva alternativas")
		}
	}

	if len(fe) == 0 {
		return nil
	}
	return fe
}
