package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"colegio_backend/internals/features/approvals"
)

// Criterion is one row of a rubric: what is assessed and the level descriptors.
type Criterion struct {
	Name   string         `json:"name" validate:"required,max=200"`
	Weight float64        `json:"weight" validate:"gte=0,lte=100"`
	Levels []CriterionLvl `json:"levels" validate:"dive"`
}

type CriterionLvl struct {
	Label       string  `json:"label" validate:"required,max=60"`
	Points      float64 `json:"points" validate:"gte=0"`
	Description string  `json:"description,omitempty"`
}

type Rubric struct {
	RubricID            uuid.UUID  `gorm:"column:rubric_id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RubricTenantID      uuid.UUID  `gorm:"column:rubric_tenant_id;type:uuid;not null;index" json:"tenantId"`
	RubricTeacherUserID uuid.UUID  `gorm:"column:rubric_teacher_user_id;type:uuid;not null;index" json:"teacherId"`
	RubricCourseID      *uuid.UUID `gorm:"column:rubric_course_id;type:uuid;index" json:"courseId,omitempty"`
	RubricSubjectID     *uuid.UUID `gorm:"column:rubric_subject_id;type:uuid" json:"subjectId,omitempty"`
	RubricEvaluationID  *uuid.UUID `gorm:"column:rubric_evaluation_id;type:uuid" json:"evaluationId,omitempty"`

	RubricTitle       string                          `gorm:"column:rubric_title;type:varchar(200);not null" json:"title"`
	RubricDescription *string                         `gorm:"column:rubric_description" json:"description,omitempty"`
	RubricCriteria    datatypes.JSONType[[]Criterion] `gorm:"column:rubric_criteria;type:jsonb" json:"criteria"`

	approvals.Approval `gorm:"embedded;embeddedPrefix:rubric_"`

	CreatedAt time.Time      `gorm:"column:rubric_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:rubric_updated_at;autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:rubric_deleted_at;index" json:"-"`
}

func (Rubric) TableName() string { return "rubrics" }

func (r *Rubric) BeforeSave(tx *gorm.DB) error {
	r.RubricTitle = strings.TrimSpace(r.RubricTitle)
	if r.Status == "" {
		r.Status = approvals.StatusDraft
	}
	return nil
}

// MaxPoints: sum over criteria of their highest level.
func (r *Rubric) MaxPoints() float64 {
	var total float64
	for _, c := range r.RubricCriteria.Data() {
		best := 0.0
		for _, l := range c.Levels {
			if l.Points > best {
				best = l.Points
			}
		}
		total += best
	}
	return total
}
