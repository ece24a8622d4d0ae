package dto

import (
	"time"

	"github.com/google/uuid"

	"colegio_backend/internals/features/academics/plannings/model"
)

type CreatePlanningRequest struct {
	CourseID   string  `json:"courseId" validate:"required,uuid"`
	SubjectID  *string `json:"subjectId" validate:"omitempty,uuid"`
	Title      string  `json:"title" validate:"required,max=200"`
	Unit       *string `json:"unit" validate:"omitempty,max=150"`
	Objectives *string `json:"objectives"`
	Content    *string `json:"content"`
	StartDate  *string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate    *string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

func parseDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	d, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil
	}
	return &d
}

func (r *CreatePlanningRequest) ToModel(tenantID, teacherID uuid.UUID) model.Planning {
	p := model.Planning{
		PlanningTenantID:      tenantID,
		PlanningTeacherUserID: teacherID,
		PlanningCourseID:      uuid.MustParse(r.CourseID),
		PlanningTitle:         r.Title,
		PlanningUnit:          r.Unit,
		PlanningObjectives:    r.Objectives,
		PlanningContent:       r.Content,
		PlanningStartDate:     parseDate(r.StartDate),
		PlanningEndDate:       parseDate(r.EndDate),
	}
	if r.SubjectID != nil {
		id := uuid.MustParse(*r.SubjectID)
		p.PlanningSubjectID = &id
	}
	return p
}

type UpdatePlanningRequest struct {
	Title      *string `json:"title" validate:"omitempty,max=200"`
	Unit       *string `json:"unit" validate:"omitempty,max=150"`
	Objectives *string `json:"objectives"`
	Content    *string `json:"content"`
	StartDate  *string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate    *string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

func (r *UpdatePlanningRequest) Apply(p *model.Planning) {
	if r.Title != nil {
		p.PlanningTitle = *r.Title
	}
	if r.Unit != nil {
		p.PlanningUnit = r.Unit
	}
	if r.Objectives != nil {
		p.PlanningObjectives = r.Objectives
	}
	if r.Content != nil {
		p.PlanningContent = r.Content
	}
	if r.StartDate != nil {
		p.PlanningStartDate = parseDate(r.StartDate)
	}
	if r.EndDate != nil {
		p.PlanningEndDate = parseDate(r.EndDate)
	}
}

// DatesInOrder: end not before start when both are set.
func DatesInOrder(p model.Planning) bool {
	return p.PlanningStartDate == nil || p.PlanningEndDate == nil || !p.PlanningEndDate.Before(*p.PlanningStartDate)
}
