package dto

import (
	"github.com/shopspring/decimal"
)

type CreatePayrollRequest struct {
	UserID     string           `json:"userId" validate:"required,uuid"`
	Period     string           `json:"period" validate:"required,datetime=2006-01"`
	BaseSalary decimal.Decimal  `json:"baseSalary"`
	Bonuses    *decimal.Decimal `json:"bonuses"`
	Deductions *decimal.Decimal `json:"deductions"`
	Notes      *string          `json:"notes" validate:"omitempty,max=1000"`
}

type UpdatePayrollRequest struct {
	BaseSalary *decimal.Decimal `json:"baseSalary"`
	Bonuses    *decimal.Decimal `json:"bonuses"`
	Deductions *decimal.Decimal `json:"deductions"`
	Status     *string          `json:"status" validate:"omitempty,oneof=draft paid"`
	Notes      *string          `json:"notes" validate:"omitempty,max=1000"`
}

// BulkPayrollRequest creates one draft per staff user of the tenant for the period.
// Users already holding a payroll for the period are skipped.
type BulkPayrollRequest struct {
	Period     string           `json:"period" validate:"required,datetime=2006-01"`
	BaseSalary decimal.Decimal  `json:"baseSalary"`
	Bonuses    *decimal.Decimal `json:"bonuses"`
	Deductions *decimal.Decimal `json:"deductions"`
	Roles      []string         `json:"roles" validate:"omitempty,dive,oneof=sostenedor director utp teacher"`
}

type BulkPayrollResponse struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

func OrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
