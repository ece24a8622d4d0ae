package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EnrollmentSummaryRow struct {
	CourseID     uuid.UUID `json:"courseId"`
	CourseName   string    `json:"courseName"`
	Capacity     *int      `json:"capacity,omitempty"`
	PreMatricula int64     `json:"preMatricula"`
	Confirmada   int64     `json:"confirmada"`
	Retirada     int64     `json:"retirada"`
	Anulada      int64     `json:"anulada"`
	// pre-matricula + confirmada
	Active    int64    `json:"active"`
	Occupancy *float64 `json:"occupancy,omitempty"`
}

type DebtSummaryRow struct {
	// nil = payments not tied to an enrollment
	CourseID     *uuid.UUID      `json:"courseId"`
	CourseName   string          `json:"courseName"`
	OverdueCount int64           `json:"overdueCount"`
	PendingCount int64           `json:"pendingCount"`
	OverdueTotal decimal.Decimal `json:"overdueTotal"`
	PendingTotal decimal.Decimal `json:"pendingTotal"`
	Debtors      int64           `json:"debtors"`
}

type AttendanceSummaryRow struct {
	CourseID    uuid.UUID `json:"courseId"`
	CourseName  string    `json:"courseName"`
	Presente    int64     `json:"presente"`
	Ausente     int64     `json:"ausente"`
	Atrasado    int64     `json:"atrasado"`
	Justificado int64     `json:"justificado"`
	Total       int64     `json:"total"`
	// (presente + atrasado) / total, one decimal percent
	Rate float64 `json:"rate"`
}

type Totals struct {
	Rows any `json:"rows"`
	// grand totals where they add up
	Summary map[string]any `json:"summary"`
}
