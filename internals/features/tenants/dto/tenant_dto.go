package dto

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"colegio_backend/internals/features/tenants/model"
)

type CreateTenantRequest struct {
	Name         string           `json:"name" validate:"required,min=3,max=150"`
	Domain       *string          `json:"domain" validate:"omitempty,fqdn"`
	Theme        map[string]any   `json:"theme"`
	PaymentType  string           `json:"paymentType" validate:"omitempty,oneof=paid free"`
	AnnualFee    *decimal.Decimal `json:"annualFee"`
	Currency     string           `json:"currency" validate:"omitempty,len=3"`
	AcademicYear int              `json:"academicYear" validate:"omitempty,gte=2000,lte=2100"`
	MailFromName *string          `json:"mailFromName" validate:"omitempty,max=120"`
	LogoURL      *string          `json:"logoUrl" validate:"omitempty,url"`
}

func (r *CreateTenantRequest) ToModel(slug string) model.Tenant {
	t := model.Tenant{
		TenantName:         r.Name,
		TenantSlug:         slug,
		TenantDomain:       r.Domain,
		TenantPaymentType:  r.PaymentType,
		TenantCurrency:     r.Currency,
		TenantAcademicYear: r.AcademicYear,
		TenantMailFromName: r.MailFromName,
		TenantLogoURL:      r.LogoURL,
		TenantIsActive:     true,
	}
	if r.Theme != nil {
		t.TenantTheme = datatypes.JSONMap(r.Theme)
	}
	if r.AnnualFee != nil {
		t.TenantAnnualFee = *r.AnnualFee
	}
	if t.TenantCurrency == "" {
		t.TenantCurrency = "CLP"
	}
	return t
}

type UpdateTenantRequest struct {
	Name         *string          `json:"name" validate:"omitempty,min=3,max=150"`
	Domain       *string          `json:"domain" validate:"omitempty,fqdn"`
	Theme        map[string]any   `json:"theme"`
	PaymentType  *string          `json:"paymentType" validate:"omitempty,oneof=paid free"`
	AnnualFee    *decimal.Decimal `json:"annualFee"`
	Currency     *string          `json:"currency" validate:"omitempty,len=3"`
	AcademicYear *int             `json:"academicYear" validate:"omitempty,gte=2000,lte=2100"`
	MailFromName *string          `json:"mailFromName" validate:"omitempty,max=120"`
	LogoURL      *string          `json:"logoUrl" validate:"omitempty,url"`
	IsActive     *bool            `json:"isActive"`
}

// Apply returns true when the name changed (slug must be regenerated).
func (r *UpdateTenantRequest) Apply(t *model.Tenant) bool {
	renamed := false
	if r.Name != nil && *r.Name != t.TenantName {
		t.TenantName = *r.Name
		renamed = true
	}
	if r.Domain != nil {
		t.TenantDomain = r.Domain
	}
	if r.Theme != nil {
		t.TenantTheme = datatypes.JSONMap(r.Theme)
	}
	if r.PaymentType != nil {
		t.TenantPaymentType = *r.PaymentType
	}
	if r.AnnualFee != nil {
		t.TenantAnnualFee = *r.AnnualFee
	}
	if r.Currency != nil {
		t.TenantCurrency = *r.Currency
	}
	if r.AcademicYear != nil {
		t.TenantAcademicYear = *r.AcademicYear
	}
	if r.MailFromName != nil {
		t.TenantMailFromName = r.MailFromName
	}
	if r.LogoURL != nil {
		t.TenantLogoURL = r.LogoURL
	}
	if r.IsActive != nil {
		t.TenantIsActive = *r.IsActive
	}
	return renamed
}
