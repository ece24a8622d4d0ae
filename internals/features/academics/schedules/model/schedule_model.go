package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Schedule is one weekly class block. Times are zero-padded "HH:mm" so they
// compare lexically.
type Schedule struct {
	ScheduleID        uuid.UUID `gorm:"column:schedule_id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ScheduleTenantID  uuid.UUID `gorm:"column:schedule_tenant_id;type:uuid;not null;index" json:"tenantId"`
	ScheduleCourseID  uuid.UUID `gorm:"column:schedule_course_id;type:uuid;not null;index:idx_schedules_course_day,priority:1" json:"courseId"`
	ScheduleSubjectID uuid.UUID `gorm:"column:schedule_subject_id;type:uuid;not null;index" json:"subjectId"`

	// 1 = Lunes … 7 = Domingo
	ScheduleDayOfWeek int     `gorm:"column:schedule_day_of_week;not null;index:idx_schedules_course_day,priority:2" json:"dayOfWeek"`
	ScheduleStartTime string  `gorm:"column:schedule_start_time;type:varchar(5);not null" json:"startTime"`
	ScheduleEndTime   string  `gorm:"column:schedule_end_time;type:varchar(5);not null" json:"endTime"`
	ScheduleRoom      *string `gorm:"column:schedule_room;type:varchar(50)" json:"room,omitempty"`

	CreatedAt time.Time      `gorm:"column:schedule_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:schedule_updated_at;autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:schedule_deleted_at;index" json:"-"`
}

func (Schedule) TableName() string { return "schedules" }

// Covers: start <= hhmm <= end (both ends inclusive).
func (s Schedule) Covers(hhmm string) bool {
	return s.ScheduleStartTime <= hhmm && hhmm <= s.ScheduleEndTime
}

// Overlaps: two blocks of the same day share time. Touching ends do not overlap.
func (s Schedule) Overlaps(o Schedule) bool {
	if s.ScheduleDayOfWeek != o.ScheduleDayOfWeek {
		return false
	}
	return s.ScheduleStartTime < o.ScheduleEndTime && o.ScheduleStartTime < s.ScheduleEndTime
}
