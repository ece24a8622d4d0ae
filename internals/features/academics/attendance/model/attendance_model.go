package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPresente    = "presente"
	StatusAusente     = "ausente"
	StatusAtrasado    = "atrasado"
	StatusJustificado = "justificado"
)

func IsValidStatus(s string) bool {
	switch s {
	case StatusPresente, StatusAusente, StatusAtrasado, StatusJustificado:
		return true
	}
	return false
}

// Attendance is one student on one day for a course (and optionally a subject).
// Uniqueness (tenant, course, subject, estudiante, date) is a partial index, see migrations.
type Attendance struct {
	AttendanceID           uuid.UUID  `gorm:"column:attendance_id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AttendanceTenantID     uuid.UUID  `gorm:"column:attendance_tenant_id;type:uuid;not null;index" json:"tenantId"`
	AttendanceCourseID     uuid.UUID  `gorm:"column:attendance_course_id;type:uuid;not null;index" json:"courseId"`
	AttendanceSubjectID    *uuid.UUID `gorm:"column:attendance_subject_id;type:uuid" json:"subjectId,omitempty"`
	AttendanceEstudianteID uuid.UUID  `gorm:"column:attendance_estudiante_id;type:uuid;not null;index" json:"estudianteId"`

	AttendanceDate       time.Time `gorm:"column:attendance_date;type:date;not null;index" json:"date"`
	AttendanceStatus     string    `gorm:"column:attendance_status;type:varchar(12);not null" json:"status"`
	AttendanceNote       *string   `gorm:"column:attendance_note" json:"note,omitempty"`
	AttendanceRecordedBy uuid.UUID `gorm:"column:attendance_recorded_by;type:uuid;not null" json:"recordedBy"`

	CreatedAt time.Time      `gorm:"column:attendance_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:attendance_updated_at;autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:attendance_deleted_at;index" json:"-"`
}

func (Attendance) TableName() string { return "attendances" }
