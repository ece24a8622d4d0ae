package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	ctl "colegio_backend/internals/features/academics/schedules/controller"
	authMw "colegio_backend/internals/middlewares/auth"
)

func ScheduleRoutes(r fiber.Router, db *gorm.DB) {
	h := ctl.NewScheduleController(db)
	write := authMw.RequireCapability(constants.CapScheduleWrite, "gestionar horarios")

	g := r.Group("/schedules")
	g.Get("/", h.List)
	g.Post("/", write, h.Create)
	g.Patch("/:id", write, h.Patch)
	g.Delete("/:id", write, h.Delete)
}
