package service

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"colegio_backend/internals/features/reports/dto"
)

// Filter narrows every report. Nil tenant = all tenants (admin).
type Filter struct {
	TenantID *uuid.UUID
	Period   string
	From     *time.Time
	To       *time.Time
}

// Percent returns part/total as a percentage rounded to one decimal; 0 when total is 0.
func Percent(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)*1000/float64(total)) / 10
}

func EnrollmentSummary(ctx context.Context, db *gorm.DB, f Filter) ([]dto.EnrollmentSummaryRow, error) {
	q := db.WithContext(ctx).Table("enrollments e").
		Joins("JOIN courses c ON c.course_id = e.enrollment_course_id").
		Where("e.enrollment_deleted_at IS NULL")
	if f.TenantID != nil {
		q = q.Where("e.enrollment_tenant_id = ?", *f.TenantID)
	}
	if f.Period != "" {
		q = q.Where("e.enrollment_period = ?", f.Period)
	}
	var rows []dto.EnrollmentSummaryRow
	err := q.Select(`c.course_id AS course_id, c.course_name AS course_name, c.course_capacity AS capacity,
		COUNT(*) FILTER (WHERE e.enrollment_status = 'pre-matricula') AS pre_matricula,
		COUNT(*) FILTER (WHERE e.enrollment_status = 'confirmada')    AS confirmada,
		COUNT(*) FILTER (WHERE e.enrollment_status = 'retirada')      AS retirada,
		COUNT(*) FILTER (WHERE e.enrollment_status = 'anulada')       AS anulada`).
		Group("c.course_id, c.course_name, c.course_capacity").
		Order("c.course_name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		r := &rows[i]
		r.Active = r.PreMatricula + r.Confirmada
		if r.Capacity != nil && *r.Capacity > 0 {
			occ := Percent(r.Active, int64(*r.Capacity))
			r.Occupancy = &occ
		}
	}
	return rows, nil
}

func DebtSummary(ctx context.Context, db *gorm.DB, f Filter) ([]dto.DebtSummaryRow, error) {
	q := db.WithContext(ctx).Table("payments p").
		Joins("LEFT JOIN enrollments e ON e.enrollment_id = p.payment_enrollment_id").
		Joins("LEFT JOIN courses c ON c.course_id = e.enrollment_course_id").
		Where("p.payment_deleted_at IS NULL AND p.payment_status IN ('pending','vencido')")
	if f.TenantID != nil {
		q = q.Where("p.payment_tenant_id = ?", *f.TenantID)
	}
	if f.Period != "" {
		q = q.Where("p.payment_period = ?", f.Period)
	}
	var rows []dto.DebtSummaryRow
	err := q.Select(`c.course_id AS course_id, COALESCE(c.course_name, 'Sin curso') AS course_name,
		COUNT(*) FILTER (WHERE p.payment_status = 'vencido') AS overdue_count,
		COUNT(*) FILTER (WHERE p.payment_status = 'pending') AS pending_count,
		COALESCE(SUM(p.payment_amount) FILTER (WHERE p.payment_status = 'vencido'), 0) AS overdue_total,
		COALESCE(SUM(p.payment_amount) FILTER (WHERE p.payment_status = 'pending'), 0) AS pending_total,
		COUNT(DISTINCT p.payment_estudiante_id) FILTER (WHERE p.payment_status = 'vencido') AS debtors`).
		Group("c.course_id, c.course_name").
		Order("overdue_total DESC").
		Scan(&rows).Error
	return rows, err
}

func AttendanceSummary(ctx context.Context, db *gorm.DB, f Filter) ([]dto.AttendanceSummaryRow, error) {
	q := db.WithContext(ctx).Table("attendances a").
		Joins("JOIN courses c ON c.course_id = a.attendance_course_id").
		Where("a.attendance_deleted_at IS NULL")
	if f.TenantID != nil {
		q = q.Where("a.attendance_tenant_id = ?", *f.TenantID)
	}
	if f.From != nil {
		q = q.Where("a.attendance_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("a.attendance_date <= ?", *f.To)
	}
	var rows []dto.AttendanceSummaryRow
	err := q.Select(`c.course_id AS course_id, c.course_name AS course_name,
		COUNT(*) FILTER (WHERE a.attendance_status = 'presente')    AS presente,
		COUNT(*) FILTER (WHERE a.attendance_status = 'ausente')     AS ausente,
		COUNT(*) FILTER (WHERE a.attendance_status = 'atrasado')    AS atrasado,
		COUNT(*) FILTER (WHERE a.attendance_status = 'justificado') AS justificado,
		COUNT(*) AS total`).
		Group("c.course_id, c.course_name").
		Order("c.course_name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Rate = Percent(rows[i].Presente+rows[i].Atrasado, rows[i].Total)
	}
	return rows, nil
}

// DebtTotals sums the per-course rows.
func DebtTotals(rows []dto.DebtSummaryRow) map[string]any {
	overdue, pending := decimal.Zero, decimal.Zero
	var overdueCount, debtors int64
	for _, r := range rows {
		overdue = overdue.Add(r.OverdueTotal)
		pending = pending.Add(r.PendingTotal)
		overdueCount += r.OverdueCount
		debtors += r.Debtors
	}
	return map[string]any{
		"overdueTotal": overdue,
		"pendingTotal": pending,
		"overdueCount": overdueCount,
		"debtors":      debtors,
	}
}
