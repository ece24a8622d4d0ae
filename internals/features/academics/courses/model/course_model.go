package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	CourseID       uuid.UUID `gorm:"column:course_id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CourseTenantID uuid.UUID `gorm:"column:course_tenant_id;type:uuid;not null;index" json:"tenantId"`

	CourseName    string  `gorm:"column:course_name;type:varchar(100);not null" json:"name"`
	CourseLevel   *string `gorm:"column:course_level;type:varchar(50)" json:"level,omitempty"`
	CourseSection *string `gorm:"column:course_section;type:varchar(10)" json:"section,omitempty"`
	CourseYear    int     `gorm:"column:course_year;not null" json:"year"`

	CourseHeadTeacherUserID *uuid.UUID `gorm:"column:course_head_teacher_user_id;type:uuid;index" json:"headTeacherId,omitempty"`
	CourseCapacity          *int       `gorm:"column:course_capacity" json:"capacity,omitempty"`

	CreatedAt time.Time      `gorm:"column:course_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:course_updated_at;autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:course_deleted_at;index" json:"-"`
}

func (Course) TableName() string { return "courses" }

func (c *Course) BeforeSave(tx *gorm.DB) error {
	c.CourseName = strings.TrimSpace(c.CourseName)
	return nil
}

// Label: "1° Medio A".
func (c *Course) Label() string {
	out := c.CourseName
	if c.CourseSection != nil && strings.TrimSpace(*c.CourseSection) != "" {
		out += " " + strings.TrimSpace(*c.CourseSection)
	}
	return out
}
