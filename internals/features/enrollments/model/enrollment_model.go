package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	StatusPreMatricula = "pre-matricula"
	StatusConfirmada   = "confirmada"
	StatusRetirada     = "retirada"
	StatusAnulada      = "anulada"
)

// ActiveStatuses hold the (tenant, estudiante, course, period) slot.
var ActiveStatuses = []string{StatusPreMatricula, StatusConfirmada}

type Enrollment struct {
	EnrollmentID       uuid.UUID `gorm:"column:enrollment_id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EnrollmentTenantID uuid.UUID `gorm:"column:enrollment_tenant_id;type:uuid;not null;index" json:"tenantId"`

	EnrollmentEstudianteID uuid.UUID  `gorm:"column:enrollment_estudiante_id;type:uuid;not null;index" json:"estudianteId"`
	EnrollmentCourseID     uuid.UUID  `gorm:"column:enrollment_course_id;type:uuid;not null;index" json:"courseId"`
	EnrollmentApoderadoID  *uuid.UUID `gorm:"column:enrollment_apoderado_id;type:uuid" json:"apoderadoId,omitempty"`

	EnrollmentPeriod string          `gorm:"column:enrollment_period;type:varchar(10);not null" json:"period"`
	EnrollmentStatus string          `gorm:"column:enrollment_status;type:varchar(15);not null" json:"status"`
	EnrollmentFee    decimal.Decimal `gorm:"column:enrollment_fee;type:numeric(14,2);not null;default:0" json:"fee"`

	EnrollmentDocuments pq.StringArray `gorm:"column:enrollment_documents;type:text[]" json:"documents"`
	EnrollmentNotes     *string        `gorm:"column:enrollment_notes" json:"notes,omitempty"`
	EnrollmentCreatedBy *uuid.UUID     `gorm:"column:enrollment_created_by;type:uuid" json:"createdBy,omitempty"`

	CreatedAt time.Time      `gorm:"column:enrollment_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:enrollment_updated_at;autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:enrollment_deleted_at;index" json:"-"`
}

func (Enrollment) TableName() string { return "enrollments" }

func (e *Enrollment) BeforeSave(tx *gorm.DB) error {
	e.EnrollmentPeriod = strings.TrimSpace(e.EnrollmentPeriod)
	if e.EnrollmentDocuments == nil {
		e.EnrollmentDocuments = pq.StringArray{}
	}
	return nil
}

// PeriodYear reads the leading 4-digit year of a period ("2026", "2026-1").
func PeriodYear(period string) (int, bool) {
	period = strings.TrimSpace(period)
	if len(period) < 4 {
		return 0, false
	}
	y, err := strconv.Atoi(period[:4])
	if err != nil || y < 1900 {
		return 0, false
	}
	if len(period) > 4 && period[4] >= '0' && period[4] <= '9' {
		return 0, false
	}
	return y, true
}

// InitialStatus: future-year periods start as pre-matricula, everything else confirmada.
func InitialStatus(period string, now time.Time) string {
	if y, ok := PeriodYear(period); ok && y > now.Year() {
		return StatusPreMatricula
	}
	return StatusConfirmada
}

func IsValidStatus(s string) bool {
	switch s {
	case StatusPreMatricula, StatusConfirmada, StatusRetirada, StatusAnulada:
		return true
	}
	return false
}
