package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	estudianteModel "colegio_backend/internals/features/students/estudiantes/model"
)

const (
	TypePrincipal = "principal"
	TypeSuplente  = "suplente"
)

const (
	FinancialSolvente = "solvente"
	FinancialMoroso   = "moroso"
	FinancialExento   = "exento"
)

type Apoderado struct {
	ApoderadoID           uuid.UUID  `gorm:"column:apoderado_id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ApoderadoTenantID     uuid.UUID  `gorm:"column:apoderado_tenant_id;type:uuid;not null;index" json:"tenantId"`
	ApoderadoEstudianteID *uuid.UUID `gorm:"column:apoderado_estudiante_id;type:uuid;index" json:"estudianteId,omitempty"`
	ApoderadoType         string     `gorm:"column:apoderado_type;type:varchar(12);not null;default:'principal'" json:"type"`

	ApoderadoFirstName string  `gorm:"column:apoderado_first_name;type:varchar(100);not null" json:"firstName"`
	ApoderadoLastName  string  `gorm:"column:apoderado_last_name;type:varchar(100);not null" json:"lastName"`
	ApoderadoRUT       *string `gorm:"column:apoderado_rut;type:varchar(20)" json:"rut,omitempty"`
	ApoderadoEmail     *string `gorm:"column:apoderado_email;type:varchar(255)" json:"email,omitempty"`
	ApoderadoPhone     *string `gorm:"column:apoderado_phone;type:varchar(30)" json:"phone,omitempty"`
	ApoderadoAddress   *string `gorm:"column:apoderado_address" json:"address,omitempty"`

	ApoderadoFinancialStatus   string     `gorm:"column:apoderado_financial_status;type:varchar(10);not null;default:'solvente'" json:"financialStatus"`
	ApoderadoFinancialStatusAt *time.Time `gorm:"column:apoderado_financial_status_at" json:"financialStatusAt,omitempty"`

	ApoderadoUserID *uuid.UUID `gorm:"column:apoderado_user_id;type:uuid;index" json:"userId,omitempty"`

	CreatedAt time.Time      `gorm:"column:apoderado_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:apoderado_updated_at;autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:apoderado_deleted_at;index" json:"-"`
}

func (Apoderado) TableName() string { return "apoderados" }

func (a *Apoderado) BeforeSave(tx *gorm.DB) error {
	a.ApoderadoFirstName = strings.TrimSpace(a.ApoderadoFirstName)
	a.ApoderadoLastName = strings.TrimSpace(a.ApoderadoLastName)
	a.ApoderadoRUT = estudianteModel.NormalizeRUTPtr(a.ApoderadoRUT)
	if a.ApoderadoEmail != nil {
		v := strings.ToLower(strings.TrimSpace(*a.ApoderadoEmail))
		if v == "" {
			a.ApoderadoEmail = nil
		} else {
			a.ApoderadoEmail = &v
		}
	}
	if a.ApoderadoType == "" {
		a.ApoderadoType = TypePrincipal
	}
	if a.ApoderadoFinancialStatus == "" {
		a.ApoderadoFinancialStatus = FinancialSolvente
	}
	return nil
}

func (a *Apoderado) FullName() string {
	return strings.TrimSpace(a.ApoderadoFirstName + " " + a.ApoderadoLastName)
}
