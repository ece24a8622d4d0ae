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
	PaymentTypePaid = "paid"
	PaymentTypeFree = "free"
)

type Tenant struct {
	TenantID uuid.UUID `gorm:"column:tenant_id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	TenantName   string  `gorm:"column:tenant_name;type:varchar(150);not null" json:"name"`
	TenantSlug   string  `gorm:"column:tenant_slug;type:varchar(120);not null;uniqueIndex:uq_tenants_slug" json:"slug"`
	TenantDomain *string `gorm:"column:tenant_domain;type:varchar(150);uniqueIndex:uq_tenants_domain" json:"domain,omitempty"`

	TenantTheme datatypes.JSONMap `gorm:"column:tenant_theme;type:jsonb" json:"theme,omitempty"`

	TenantPaymentType  string          `gorm:"column:tenant_payment_type;type:varchar(10);not null;default:'paid'" json:"paymentType"`
	TenantAnnualFee    decimal.Decimal `gorm:"column:tenant_annual_fee;type:numeric(14,2);not null;default:0" json:"annualFee"`
	TenantCurrency     string          `gorm:"column:tenant_currency;type:varchar(8);not null;default:'CLP'" json:"currency"`
	TenantAcademicYear int             `gorm:"column:tenant_academic_year" json:"academicYear"`

	TenantMailFromName *string `gorm:"column:tenant_mail_from_name;type:varchar(120)" json:"mailFromName,omitempty"`
	TenantLogoURL      *string `gorm:"column:tenant_logo_url" json:"logoUrl,omitempty"`
	TenantIsActive     bool    `gorm:"column:tenant_is_active;not null;default:true" json:"isActive"`

	CreatedAt time.Time      `gorm:"column:tenant_created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:tenant_updated_at;autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:tenant_deleted_at;index" json:"-"`
}

func (Tenant) TableName() string { return "tenants" }

func (t *Tenant) BeforeSave(tx *gorm.DB) error {
	t.TenantName = strings.TrimSpace(t.TenantName)
	t.TenantPaymentType = strings.ToLower(strings.TrimSpace(t.TenantPaymentType))
	if t.TenantPaymentType == "" {
		t.TenantPaymentType = PaymentTypePaid
	}
	if t.TenantDomain != nil {
		d := strings.ToLower(strings.TrimSpace(*t.TenantDomain))
		if d == "" {
			t.TenantDomain = nil
		} else {
			t.TenantDomain = &d
		}
	}
	return nil
}

func (t *Tenant) IsFree() bool { return t.TenantPaymentType == PaymentTypeFree }

// SenderName used for outbound mail branding.
func (t *Tenant) SenderName() string {
	if t.TenantMailFromName != nil && strings.TrimSpace(*t.TenantMailFromName) != "" {
		return *t.TenantMailFromName
	}
	return t.TenantName
}
