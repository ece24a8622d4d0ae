package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	ctl "colegio_backend/internals/features/academics/attendance/controller"
	authMw "colegio_backend/internals/middlewares/auth"
)

func AttendanceRoutes(r fiber.Router, db *gorm.DB) {
	h := ctl.NewAttendanceController(db)
	write := authMw.RequireCapability(constants.CapAttendanceWrite, "registrar asistencia")

	g := r.Group("/attendance")
	g.Get("/", h.List)
	g.Post("/bulk", write, h.Bulk)
	g.Patch("/:id", write, h.Patch)
}
