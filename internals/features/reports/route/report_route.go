package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	ctl "colegio_backend/internals/features/reports/controller"
	authMw "colegio_backend/internals/middlewares/auth"
)

func ReportRoutes(r fiber.Router, db *gorm.DB) {
	h := ctl.NewReportController(db)

	g := r.Group("/reports", authMw.RequireCapability(constants.CapReportRead, "ver reportes"))
	g.Get("/enrollment-summary", h.EnrollmentSummary)
	g.Get("/debt-summary", h.DebtSummary)
	g.Get("/attendance-summary", h.AttendanceSummary)
}
