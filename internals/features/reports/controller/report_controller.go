package controller

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"colegio_backend/internals/features/reports/dto"
	svc "colegio_backend/internals/features/reports/service"
	helper "colegio_backend/internals/helpers"
	helperAuth "colegio_backend/internals/helpers/auth"
)

type ReportController struct {
	DB *gorm.DB
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db}
}

func (h *ReportController) filter(c *fiber.Ctx) (svc.Filter, error) {
	cl, err := helperAuth.GetClaims(c)
	if err != nil {
		return svc.Filter{}, err
	}
	tenantID, err := helperAuth.ReadTenantID(c, cl)
	if err != nil {
		return svc.Filter{}, err
	}
	f := svc.Filter{TenantID: tenantID, Period: strings.TrimSpace(c.Query("period"))}
	if t, err := time.Parse("2006-01-02", c.Query("from")); err == nil {
		f.From = &t
	}
	if t, err := time.Parse("2006-01-02", c.Query("to")); err == nil {
		f.To = &t
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return f, fiber.NewError(fiber.StatusBadRequest, "to no puede ser anterior a from")
	}
	return f, nil
}

// GET /api/reports/enrollment-summary?period=
func (h *ReportController) EnrollmentSummary(c *fiber.Ctx) error {
	f, err := h.filter(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	rows, err := svc.EnrollmentSummary(c.UserContext(), h.DB, f)
	if err != nil {
		return helper.DBError(c, err)
	}
	var active, total int64
	for _, r := range rows {
		active += r.Active
		total += r.Active + r.Retirada + r.Anulada
	}
	return helper.JsonOK(c, "ok", dto.Totals{Rows: rows, Summary: map[string]any{"active": active, "total": total}})
}

// GET /api/reports/debt-summary?period=
func (h *ReportController) DebtSummary(c *fiber.Ctx) error {
	f, err := h.filter(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	rows, err := svc.DebtSummary(c.UserContext(), h.DB, f)
	if err != nil {
		return helper.DBError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.Totals{Rows: rows, Summary: svc.DebtTotals(rows)})
}

// GET /api/reports/attendance-summary?from=&to=
func (h *ReportController) AttendanceSummary(c *fiber.Ctx) error {
	f, err := h.filter(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	rows, err := svc.AttendanceSummary(c.UserContext(), h.DB, f)
	if err != nil {
		return helper.DBError(c, err)
	}
	var present, all int64
	for _, r := range rows {
		present += r.Presente + r.Atrasado
		all += r.Total
	}
	return helper.JsonOK(c, "ok", dto.Totals{Rows: rows, Summary: map[string]any{"rate": svc.Percent(present, all), "total": all}})
}
