package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subject is an asignatura taught in one course.
type Subject struct {
	SubjectID       uuid.UUID `gorm:"column:subject_id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SubjectTenantID uuid.UUID `gorm:"column:subject_tenant_id;type:uuid;not null;index" json:"tenantId"`
	SubjectCourseID uuid.UUID `gorm:"column:subject_course_id;type:uuid;not null;index" json:"courseId"`

	SubjectName          string     `gorm:"column:subject_name;type:varchar(100);not null" json:"name"`
	SubjectCode          *string    `gorm:"column:subject_code;type:varchar(20)" json:"code,omitempty"`
	SubjectTeacherUserID *uuid.UUID `gorm:"column:subject_teacher_user_id;type:uuid;index" json:"teacherId,omitempty"`
	SubjectWeeklyHours   *int       `gorm:"column:subject_weekly_hours" json:"weeklyHours,omitempty"`

	CreatedAt time.Time      `gorm:"column:subject_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:subject_updated_at;autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:subject_deleted_at;index" json:"-"`
}

func (Subject) TableName() string { return "subjects" }

func (s *Subject) BeforeSave(tx *gorm.DB) error {
	s.SubjectName = strings.TrimSpace(s.SubjectName)
	if s.SubjectCode != nil {
		v := strings.ToUpper(strings.TrimSpace(*s.SubjectCode))
		if v == "" {
			s.SubjectCode = nil
		} else {
			s.SubjectCode = &v
		}
	}
	return nil
}
