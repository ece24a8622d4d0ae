package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"colegio_backend/internals/features/finance/tariffs/model"
)

type CreateTariffRequest struct {
	Name        string          `json:"name" validate:"required,min=2,max=150"`
	Description *string         `json:"description" validate:"omitempty,max=2000"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency" validate:"omitempty,max=8"`
	DueDay      *int            `json:"dueDay" validate:"omitempty,min=1,max=31"`
	IsActive    *bool           `json:"isActive"`
}

func (r *CreateTariffRequest) ToModel(tenantID uuid.UUID) model.Tariff {
	t := model.Tariff{
		TariffTenantID:    tenantID,
		TariffName:        strings.TrimSpace(r.Name),
		TariffDescription: r.Description,
		TariffAmount:      r.Amount,
		TariffCurrency:    r.Currency,
		TariffDueDay:      r.DueDay,
		TariffIsActive:    true,
	}
	if r.IsActive != nil {
		t.TariffIsActive = *r.IsActive
	}
	return t
}

type UpdateTariffRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=2,max=150"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	Amount      *decimal.Decimal `json:"amount"`
	Currency    *string          `json:"currency" validate:"omitempty,max=8"`
	DueDay      *int             `json:"dueDay" validate:"omitempty,min=1,max=31"`
	IsActive    *bool            `json:"isActive"`
}

// Apply copies the present fields onto t.
func (r *UpdateTariffRequest) Apply(t *model.Tariff) {
	if r.Name != nil {
		t.TariffName = *r.Name
	}
	if r.Description != nil {
		t.TariffDescription = r.Description
	}
	if r.Amount != nil {
		t.TariffAmount = *r.Amount
	}
	if r.Currency != nil {
		t.TariffCurrency = *r.Currency
	}
	if r.DueDay != nil {
		t.TariffDueDay = r.DueDay
	}
	if r.IsActive != nil {
		t.TariffIsActive = *r.IsActive
	}
}

const (
	ScopeCourse     = "course"
	ScopeAllCourses = "all_courses"
	ScopeStudents   = "students"
)

type BulkAssignRequest struct {
	TariffID      string     `json:"tariffId" validate:"required,uuid"`
	Scope         string     `json:"scope" validate:"required,oneof=course all_courses students"`
	CourseIDs     []string   `json:"courseIds" validate:"required_if=Scope course,omitempty,dive,uuid"`
	EstudianteIDs []string   `json:"estudianteIds" validate:"required_if=Scope students,omitempty,dive,uuid"`
	Period        string     `json:"period" validate:"required,max=10"`
	DueDate       *time.Time `json:"dueDate"`
}

type BulkAssignResponse struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}
