package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PromiseActive    = "active"
	PromiseFulfilled = "fulfilled"
	PromiseBroken    = "broken"
)

// PaymentPromise is the sostenedor override recorded when a debtor is enrolled anyway.
type PaymentPromise struct {
	PaymentPromiseID       uuid.UUID `gorm:"column:payment_promise_id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PaymentPromiseTenantID uuid.UUID `gorm:"column:payment_promise_tenant_id;type:uuid;not null;index" json:"tenantId"`

	PaymentPromiseEstudianteID uuid.UUID  `gorm:"column:payment_promise_estudiante_id;type:uuid;not null;index" json:"estudianteId"`
	PaymentPromiseApoderadoID  *uuid.UUID `gorm:"column:payment_promise_apoderado_id;type:uuid" json:"apoderadoId,omitempty"`
	PaymentPromiseEnrollmentID *uuid.UUID `gorm:"column:payment_promise_enrollment_id;type:uuid" json:"enrollmentId,omitempty"`

	PaymentPromiseAmount       decimal.Decimal `gorm:"column:payment_promise_amount;type:numeric(14,2);not null" json:"promisedAmount"`
	PaymentPromiseDate         time.Time       `gorm:"column:payment_promise_date;type:date;not null" json:"promisedDate"`
	PaymentPromiseTotalDebt    decimal.Decimal `gorm:"column:payment_promise_total_debt;type:numeric(14,2);not null" json:"totalDebt"`
	PaymentPromiseOverdueCount int             `gorm:"column:payment_promise_overdue_count;not null" json:"overdueCount"`

	PaymentPromiseStatus    string    `gorm:"column:payment_promise_status;type:varchar(12);not null;default:'active'" json:"status"`
	PaymentPromiseCreatedBy uuid.UUID `gorm:"column:payment_promise_created_by;type:uuid;not null" json:"createdBy"`
	PaymentPromiseNotes     *string   `gorm:"column:payment_promise_notes" json:"notes,omitempty"`

	CreatedAt time.Time      `gorm:"column:payment_promise_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:payment_promise_updated_at;autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:payment_promise_deleted_at;index" json:"-"`
}

func (PaymentPromise) TableName() string { return "payment_promises" }
