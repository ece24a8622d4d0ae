package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PayrollDraft = "draft"
	PayrollPaid  = "paid"
)

type Payroll struct {
	PayrollID       uuid.UUID `gorm:"column:payroll_id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PayrollTenantID uuid.UUID `gorm:"column:payroll_tenant_id;type:uuid;not null;index" json:"tenantId"`
	PayrollUserID   uuid.UUID `gorm:"column:payroll_user_id;type:uuid;not null;index" json:"userId"`
	// YYYY-MM
	PayrollPeriod string `gorm:"column:payroll_period;type:varchar(7);not null" json:"period"`

	PayrollBaseSalary decimal.Decimal `gorm:"column:payroll_base_salary;type:numeric(14,2);not null" json:"baseSalary"`
	PayrollBonuses    decimal.Decimal `gorm:"column:payroll_bonuses;type:numeric(14,2);not null;default:0" json:"bonuses"`
	PayrollDeductions decimal.Decimal `gorm:"column:payroll_deductions;type:numeric(14,2);not null;default:0" json:"deductions"`
	PayrollNet        decimal.Decimal `gorm:"column:payroll_net;type:numeric(14,2);not null" json:"net"`

	PayrollStatus string     `gorm:"column:payroll_status;type:varchar(8);not null;default:'draft'" json:"status"`
	PayrollPaidAt *time.Time `gorm:"column:payroll_paid_at" json:"paidAt,omitempty"`
	PayrollNotes  *string    `gorm:"column:payroll_notes" json:"notes,omitempty"`

	CreatedAt time.Time      `gorm:"column:payroll_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:payroll_updated_at;autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:payroll_deleted_at;index" json:"-"`
}

func (Payroll) TableName() string { return "payrolls" }

// BeforeSave keeps net = base + bonuses - deductions.
func (p *Payroll) BeforeSave(tx *gorm.DB) error {
	p.PayrollNet = p.PayrollBaseSalary.Add(p.PayrollBonuses).Sub(p.PayrollDeductions)
	if p.PayrollStatus == "" {
		p.PayrollStatus = PayrollDraft
	}
	return nil
}
