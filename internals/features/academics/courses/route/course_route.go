package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	ctl "colegio_backend/internals/features/academics/courses/controller"
	authMw "colegio_backend/internals/middlewares/auth"
)

func CourseRoutes(r fiber.Router, db *gorm.DB) {
	h := ctl.NewCourseController(db)
	write := authMw.RequireCapability(constants.CapCourseWrite, "gestionar cursos")

	g := r.Group("/courses")
	g.Get("/", h.List)
	g.Get("/:id", h.GetByID)
	g.Post("/", write, h.Create)
	g.Patch("/:id", write, h.Patch)
	g.Delete("/:id", write, h.Delete)
}
