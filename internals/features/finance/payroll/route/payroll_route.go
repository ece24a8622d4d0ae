package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	ctl "colegio_backend/internals/features/finance/payroll/controller"
	authMw "colegio_backend/internals/middlewares/auth"
)

func PayrollRoutes(r fiber.Router, db *gorm.DB) {
	h := ctl.NewPayrollController(db)

	g := r.Group("/payrolls", authMw.RequireCapability(constants.CapPayrollManage, "gestionar remuneraciones"))
	g.Get("/", h.List)
	g.Get("/:id", h.GetByID)
	g.Post("/", h.Create)
	g.Post("/bulk", h.Bulk)
	g.Patch("/:id", h.Patch)
	g.Delete("/:id", h.Delete)
}
