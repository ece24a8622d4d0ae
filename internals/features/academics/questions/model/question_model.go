package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"colegio_backend/internals/features/approvals"
)

const (
	TypeMultipleChoice = "seleccion_multiple"
	TypeTrueFalse      = "verdadero_falso"
	TypeOpen           = "desarrollo"
)

type Option struct {
	Key  string `json:"key" validate:"required,max=5"`
	Text string `json:"text" validate:"required"`
}

// Question is a bank item. There is no difficulty column.
type Question struct {
	QuestionID            uuid.UUID  `gorm:"column:question_id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	QuestionTenantID      uuid.UUID  `gorm:"column:question_tenant_id;type:uuid;not null;index" json:"tenantId"`
	QuestionTeacherUserID uuid.UUID  `gorm:"column:question_teacher_user_id;type:uuid;not null;index" json:"teacherId"`
	QuestionCourseID      *uuid.UUID `gorm:"column:question_course_id;type:uuid;index" json:"courseId,omitempty"`
	QuestionSubjectID     *uuid.UUID `gorm:"column:question_subject_id;type:uuid" json:"subjectId,omitempty"`

	QuestionStatement string                       `gorm:"column:question_statement;not null" json:"statement"`
	QuestionType      string                       `gorm:"column:question_type;type:varchar(20);not null" json:"type"`
	QuestionOptions   datatypes.JSONType[[]Option] `gorm:"column:question_options;type:jsonb" json:"options"`
	QuestionAnswer    *string                      `gorm:"column:question_answer" json:"answer,omitempty"`
	QuestionPoints    float64                      `gorm:"column:question_points;type:numeric(6,2);not null;default:1" json:"points"`

	approvals.Approval `gorm:"embedded;embeddedPrefix:question_"`

	CreatedAt time.Time      `gorm:"column:question_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:question_updated_at;autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:question_deleted_at;index" json:"-"`
}

func (Question) TableName() string { return "questions" }

func (q *Question) BeforeSave(tx *gorm.DB) error {
	q.QuestionStatement = strings.TrimSpace(q.QuestionStatement)
	if q.Status == "" {
		q.Status = approvals.StatusDraft
	}
	return nil
}

func IsValidType(t string) bool {
	switch t {
	case TypeMultipleChoice, TypeTrueFalse, TypeOpen:
		return true
	}
	return false
}
