package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"colegio_backend/internals/constants"
	paymentModel "colegio_backend/internals/features/finance/payments/model"
	tenantModel "colegio_backend/internals/features/tenants/model"
)

// OldDebtMonths: an overdue payment due at least this long ago counts as old debt.
const OldDebtMonths = 3

type DebtSummary struct {
	OverdueCount int
	TotalDebt    decimal.Decimal
	HasOldDebt   bool
}

// SummarizeDebt folds the student's vencido payments.
func SummarizeDebt(overdue []paymentModel.Payment, now time.Time) DebtSummary {
	s := DebtSummary{TotalDebt: decimal.Zero}
	limit := now.AddDate(0, -OldDebtMonths, 0)
	for _, p := range overdue {
		if p.PaymentStatus != paymentModel.PaymentStatusOverdue {
			continue
		}
		s.OverdueCount++
		s.TotalDebt = s.TotalDebt.Add(p.PaymentAmount)
		if p.PaymentDueDate != nil && !p.PaymentDueDate.After(limit) {
			s.HasOldDebt = true
		}
	}
	return s
}

type GateDecision int

const (
	GateClear GateDecision = iota
	GateOverride
	GateBlock
)

// DecideGate: no debt clears; debt with a promise from a role holding the override proceeds; else blocked.
func DecideGate(s DebtSummary, role constants.Role, hasPromise bool) GateDecision {
	if s.OverdueCount == 0 {
		return GateClear
	}
	if hasPromise && constants.Can(role, constants.CapDebtOverride) {
		return GateOverride
	}
	return GateBlock
}

// DebtBlockError rejects an enrollment for unpaid overdue charges.
type DebtBlockError struct {
	Summary DebtSummary
}

func (e *DebtBlockError) Error() string {
	return fmt.Sprintf("el estudiante registra %d pago(s) vencido(s) por %s", e.Summary.OverdueCount, e.Summary.TotalDebt.StringFixed(0))
}

// ResolveFee: free tenants charge nothing; else the explicit fee; else the tenant's annual fee.
func ResolveFee(t tenantModel.Tenant, explicit *decimal.Decimal) decimal.Decimal {
	if t.IsFree() {
		return decimal.Zero
	}
	if explicit != nil {
		return *explicit
	}
	return t.TenantAnnualFee
}
