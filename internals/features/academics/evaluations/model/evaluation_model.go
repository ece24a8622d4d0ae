package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"colegio_backend/internals/features/approvals"
)

const (
	TypeSumativa    = "sumativa"
	TypeFormativa   = "formativa"
	TypeDiagnostica = "diagnostica"
)

type Evaluation struct {
	EvaluationID            uuid.UUID `gorm:"column:evaluation_id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EvaluationTenantID      uuid.UUID `gorm:"column:evaluation_tenant_id;type:uuid;not null;index" json:"tenantId"`
	EvaluationCourseID      uuid.UUID `gorm:"column:evaluation_course_id;type:uuid;not null;index" json:"courseId"`
	EvaluationSubjectID     uuid.UUID `gorm:"column:evaluation_subject_id;type:uuid;not null;index" json:"subjectId"`
	EvaluationTeacherUserID uuid.UUID `gorm:"column:evaluation_teacher_user_id;type:uuid;not null;index" json:"teacherId"`

	EvaluationTitle       string    `gorm:"column:evaluation_title;type:varchar(200);not null" json:"title"`
	EvaluationDescription *string   `gorm:"column:evaluation_description" json:"description,omitempty"`
	EvaluationType        string    `gorm:"column:evaluation_type;type:varchar(20);not null;default:'sumativa'" json:"type"`
	EvaluationDate        time.Time `gorm:"column:evaluation_date;type:timestamptz;not null;index" json:"date"`
	// percentage of the subject average; 0 = unweighted
	EvaluationWeight float64 `gorm:"column:evaluation_weight;type:numeric(5,2);not null;default:0" json:"weight"`
	// question ids printed with the evaluation, in order
	EvaluationQuestionIDs pq.StringArray `gorm:"column:evaluation_question_ids;type:text[]" json:"questionIds"`

	approvals.Approval `gorm:"embedded;embeddedPrefix:evaluation_"`

	CreatedAt time.Time      `gorm:"column:evaluation_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:evaluation_updated_at;autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:evaluation_deleted_at;index" json:"-"`
}

func (Evaluation) TableName() string { return "evaluations" }

func (e *Evaluation) BeforeSave(tx *gorm.DB) error {
	e.EvaluationTitle = strings.TrimSpace(e.EvaluationTitle)
	if e.EvaluationType == "" {
		e.EvaluationType = TypeSumativa
	}
	if e.Status == "" {
		e.Status = approvals.StatusDraft
	}
	if e.EvaluationQuestionIDs == nil {
		e.EvaluationQuestionIDs = pq.StringArray{}
	}
	return nil
}
