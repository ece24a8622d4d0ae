package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Estudiante struct {
	EstudianteID       uuid.UUID `gorm:"column:estudiante_id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EstudianteTenantID uuid.UUID `gorm:"column:estudiante_tenant_id;type:uuid;not null;index" json:"tenantId"`

	EstudianteFirstName string  `gorm:"column:estudiante_first_name;type:varchar(100);not null" json:"firstName"`
	EstudianteLastName  string  `gorm:"column:estudiante_last_name;type:varchar(100);not null" json:"lastName"`
	EstudianteRUT       *string `gorm:"column:estudiante_rut;type:varchar(20)" json:"rut,omitempty"`
	// partial unique per tenant (see migrations)
	EstudianteEnrollmentNumber *string    `gorm:"column:estudiante_enrollment_number;type:varchar(30)" json:"enrollmentNumber,omitempty"`
	EstudianteEmail            *string    `gorm:"column:estudiante_email;type:varchar(255)" json:"email,omitempty"`
	EstudianteBirthDate        *time.Time `gorm:"column:estudiante_birth_date;type:date" json:"birthDate,omitempty"`
	EstudianteGradeLabel       *string    `gorm:"column:estudiante_grade_label;type:varchar(50)" json:"gradeLabel,omitempty"`
	EstudiantePhotoURL         *string    `gorm:"column:estudiante_photo_url" json:"photoUrl,omitempty"`

	EstudianteUserID   *uuid.UUID `gorm:"column:estudiante_user_id;type:uuid" json:"userId,omitempty"`
	EstudianteIsActive bool       `gorm:"column:estudiante_is_active;not null;default:true" json:"isActive"`

	CreatedAt time.Time      `gorm:"column:estudiante_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:estudiante_updated_at;autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:estudiante_deleted_at;index" json:"-"`
}

func (Estudiante) TableName() string { return "estudiantes" }

func (e *Estudiante) BeforeSave(tx *gorm.DB) error {
	e.EstudianteFirstName = strings.TrimSpace(e.EstudianteFirstName)
	e.EstudianteLastName = strings.TrimSpace(e.EstudianteLastName)
	e.EstudianteRUT = NormalizeRUTPtr(e.EstudianteRUT)
	e.EstudianteEmail = lowerPtr(e.EstudianteEmail)
	e.EstudianteEnrollmentNumber = trimPtr(e.EstudianteEnrollmentNumber)
	return nil
}

func (e *Estudiante) FullName() string {
	return strings.TrimSpace(e.EstudianteFirstName + " " + e.EstudianteLastName)
}

// NormalizeRUT: "12.345.678-k" → "12345678-K".
func NormalizeRUT(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, " ", "")
	if s != "" && !strings.Contains(s, "-") && len(s) > 1 {
		s = s[:len(s)-1] + "-" + s[len(s)-1:]
	}
	return s
}

func NormalizeRUTPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := NormalizeRUT(*p)
	if v == "" {
		return nil
	}
	return &v
}

func lowerPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.ToLower(strings.TrimSpace(*p))
	if v == "" {
		return nil
	}
	return &v
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
