package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"colegio_backend/internals/features/approvals"
)

// Planning is a teacher's planificación for a unit of a subject.
type Planning struct {
	PlanningID            uuid.UUID  `gorm:"column:planning_id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PlanningTenantID      uuid.UUID  `gorm:"column:planning_tenant_id;type:uuid;not null;index" json:"tenantId"`
	PlanningTeacherUserID uuid.UUID  `gorm:"column:planning_teacher_user_id;type:uuid;not null;index" json:"teacherId"`
	PlanningCourseID      uuid.UUID  `gorm:"column:planning_course_id;type:uuid;not null;index" json:"courseId"`
	PlanningSubjectID     *uuid.UUID `gorm:"column:planning_subject_id;type:uuid" json:"subjectId,omitempty"`

	PlanningTitle      string     `gorm:"column:planning_title;type:varchar(200);not null" json:"title"`
	PlanningUnit       *string    `gorm:"column:planning_unit;type:varchar(150)" json:"unit,omitempty"`
	PlanningObjectives *string    `gorm:"column:planning_objectives" json:"objectives,omitempty"`
	PlanningContent    *string    `gorm:"column:planning_content" json:"content,omitempty"`
	PlanningStartDate  *time.Time `gorm:"column:planning_start_date;type:date" json:"startDate,omitempty"`
	PlanningEndDate    *time.Time `gorm:"column:planning_end_date;type:date" json:"endDate,omitempty"`

	approvals.Approval `gorm:"embedded;embeddedPrefix:planning_"`

	CreatedAt time.Time      `gorm:"column:planning_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:planning_updated_at;autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:planning_deleted_at;index" json:"-"`
}

func (Planning) TableName() string { return "plannings" }

func (p *Planning) BeforeSave(tx *gorm.DB) error {
	p.PlanningTitle = strings.TrimSpace(p.PlanningTitle)
	if p.Status == "" {
		p.Status = approvals.StatusDraft
	}
	return nil
}
