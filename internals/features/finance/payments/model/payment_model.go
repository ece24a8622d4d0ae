package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusInReview = "en_revision"
	PaymentStatusOverdue  = "vencido"
	PaymentStatusPaid     = "pagado"
	PaymentStatusRejected = "rejected"
)

// OutstandingStatuses count against a guardian once the due date has passed.
var OutstandingStatuses = []string{PaymentStatusPending, PaymentStatusOverdue, PaymentStatusInReview}

var AllStatuses = []string{
	PaymentStatusPending, PaymentStatusInReview, PaymentStatusOverdue, PaymentStatusPaid, PaymentStatusRejected,
}

const (
	PaymentMethodGateway  = "gateway"
	PaymentMethodTransfer = "transferencia"
	PaymentMethodCash     = "efectivo"
	PaymentMethodOther    = "otro"
)

type Payment struct {
	PaymentID       uuid.UUID `gorm:"column:payment_id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PaymentTenantID uuid.UUID `gorm:"column:payment_tenant_id;type:uuid;not null;index" json:"tenantId"`

	PaymentEstudianteID uuid.UUID  `gorm:"column:payment_estudiante_id;type:uuid;not null;index" json:"estudianteId"`
	PaymentApoderadoID  *uuid.UUID `gorm:"column:payment_apoderado_id;type:uuid;index" json:"apoderadoId,omitempty"`
	PaymentTariffID     *uuid.UUID `gorm:"column:payment_tariff_id;type:uuid;index" json:"tariffId,omitempty"`
	PaymentEnrollmentID *uuid.UUID `gorm:"column:payment_enrollment_id;type:uuid" json:"enrollmentId,omitempty"`
	// academic period the charge belongs to; bulk-assign skips (tariff, period) pairs already billed
	PaymentPeriod *string `gorm:"column:payment_period;type:varchar(10)" json:"period,omitempty"`

	PaymentConcept  string          `gorm:"column:payment_concept;type:varchar(150);not null" json:"concept"`
	PaymentAmount   decimal.Decimal `gorm:"column:payment_amount;type:numeric(14,2);not null" json:"amount"`
	PaymentCurrency string          `gorm:"column:payment_currency;type:varchar(8);not null;default:'CLP'" json:"currency"`

	PaymentStatus  string     `gorm:"column:payment_status;type:varchar(12);not null;default:'pending';index" json:"status"`
	PaymentDueDate *time.Time `gorm:"column:payment_due_date;type:date;index" json:"dueDate,omitempty"`
	PaymentPaidAt  *time.Time `gorm:"column:payment_paid_at" json:"paidAt,omitempty"`
	PaymentMethod  string     `gorm:"column:payment_method;type:varchar(20);not null;default:'gateway'" json:"method"`

	// Midtrans order id
	PaymentExternalID       *string `gorm:"column:payment_external_id;type:varchar(80);uniqueIndex:uq_payments_external_id" json:"externalId,omitempty"`
	PaymentGatewayReference *string `gorm:"column:payment_gateway_reference" json:"gatewayReference,omitempty"`
	PaymentSnapToken        *string `gorm:"column:payment_snap_token" json:"snapToken,omitempty"`
	PaymentRedirectURL      *string `gorm:"column:payment_redirect_url" json:"redirectUrl,omitempty"`
	PaymentReceiptURL       *string `gorm:"column:payment_receipt_url" json:"receiptUrl,omitempty"`

	PaymentMeta datatypes.JSONMap `gorm:"column:payment_meta;type:jsonb" json:"meta,omitempty"`

	CreatedAt time.Time      `gorm:"column:payment_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:payment_updated_at;autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:payment_deleted_at;index" json:"-"`
}

func (Payment) TableName() string { return "payments" }

func (p *Payment) BeforeSave(tx *gorm.DB) error {
	p.PaymentConcept = strings.TrimSpace(p.PaymentConcept)
	p.PaymentStatus = strings.ToLower(strings.TrimSpace(p.PaymentStatus))
	if p.PaymentStatus == "" {
		p.PaymentStatus = PaymentStatusPending
	}
	if p.PaymentCurrency == "" {
		p.PaymentCurrency = "CLP"
	}
	if p.PaymentMethod == "" {
		p.PaymentMethod = PaymentMethodGateway
	}
	return nil
}

func IsValidStatus(s string) bool {
	for _, v := range AllStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// ReceiptStatus is the status a guardian's receipt upload leaves p in.
// Only pending charges go to review; an overdue one stays vencido so the
// debt gate keeps blocking until staff confirm the payment.
func (p *Payment) ReceiptStatus() string {
	if p.PaymentStatus == PaymentStatusPending {
		return PaymentStatusInReview
	}
	return p.PaymentStatus
}

// IsOutstanding: counts toward moroso at instant now.
func (p *Payment) IsOutstanding(now time.Time) bool {
	if p.PaymentDueDate == nil || !p.PaymentDueDate.Before(now) {
		return false
	}
	for _, s := range OutstandingStatuses {
		if p.PaymentStatus == s {
			return true
		}
	}
	return false
}
