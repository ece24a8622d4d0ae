package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	ctl "colegio_backend/internals/features/academics/grades/controller"
	authMw "colegio_backend/internals/middlewares/auth"
)

func GradeRoutes(r fiber.Router, db *gorm.DB) {
	h := ctl.NewGradeController(db)
	write := authMw.RequireCapability(constants.CapGradeWrite, "registrar notas")

	g := r.Group("/grades")
	g.Get("/", h.List)
	g.Get("/average/:estudianteId", h.Average)
	g.Put("/", write, h.Upsert)
	g.Post("/bulk", write, h.Bulk)
	g.Delete("/:id", write, h.Delete)
}
