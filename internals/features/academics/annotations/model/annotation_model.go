package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TypePositiva    = "positiva"
	TypeNegativa    = "negativa"
	TypeObservacion = "observacion"
)

// Annotation is an anotación in the student's record (libro de clases).
type Annotation struct {
	AnnotationID           uuid.UUID  `gorm:"column:annotation_id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AnnotationTenantID     uuid.UUID  `gorm:"column:annotation_tenant_id;type:uuid;not null;index" json:"tenantId"`
	AnnotationEstudianteID uuid.UUID  `gorm:"column:annotation_estudiante_id;type:uuid;not null;index" json:"estudianteId"`
	AnnotationCourseID     *uuid.UUID `gorm:"column:annotation_course_id;type:uuid;index" json:"courseId,omitempty"`
	AnnotationAuthorUserID uuid.UUID  `gorm:"column:annotation_author_user_id;type:uuid;not null" json:"authorId"`

	AnnotationType        string    `gorm:"column:annotation_type;type:varchar(12);not null" json:"type"`
	AnnotationDescription string    `gorm:"column:annotation_description;not null" json:"description"`
	AnnotationDate        time.Time `gorm:"column:annotation_date;type:date;not null" json:"date"`

	AnnotationSignedByUserID *uuid.UUID `gorm:"column:annotation_signed_by_user_id;type:uuid" json:"signedBy,omitempty"`
	AnnotationSignedAt       *time.Time `gorm:"column:annotation_signed_at" json:"signedAt,omitempty"`

	CreatedAt time.Time      `gorm:"column:annotation_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:annotation_updated_at;autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:annotation_deleted_at;index" json:"-"`
}

func (Annotation) TableName() string { return "annotations" }

func (a *Annotation) BeforeSave(tx *gorm.DB) error {
	a.AnnotationDescription = strings.TrimSpace(a.AnnotationDescription)
	a.AnnotationType = strings.ToLower(strings.TrimSpace(a.AnnotationType))
	return nil
}

func IsValidType(t string) bool {
	switch t {
	case TypePositiva, TypeNegativa, TypeObservacion:
		return true
	}
	return false
}
