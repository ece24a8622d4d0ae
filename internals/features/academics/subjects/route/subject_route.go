package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	ctl "colegio_backend/internals/features/academics/subjects/controller"
	authMw "colegio_backend/internals/middlewares/auth"
)

func SubjectRoutes(r fiber.Router, db *gorm.DB) {
	h := ctl.NewSubjectController(db)
	write := authMw.RequireCapability(constants.CapCourseWrite, "gestionar asignaturas")

	g := r.Group("/subjects")
	g.Get("/", h.List)
	g.Get("/:id", h.GetByID)
	g.Post("/", write, h.Create)
	g.Patch("/:id", write, h.Patch)
	g.Delete("/:id", write, h.Delete)
}
