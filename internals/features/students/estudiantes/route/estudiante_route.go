package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	ctl "colegio_backend/internals/features/students/estudiantes/controller"
	"colegio_backend/internals/helpers/storage"
	authMw "colegio_backend/internals/middlewares/auth"
)

func EstudianteRoutes(r fiber.Router, db *gorm.DB, st *storage.Service) {
	h := ctl.NewEstudianteController(db, st)
	write := authMw.RequireCapability(constants.CapStudentWrite, "gestionar estudiantes")

	g := r.Group("/estudiantes")
	g.Get("/", h.List)
	g.Get("/:id", h.GetByID)
	g.Post("/", write, h.Create)
	g.Patch("/:id", write, h.Patch)
	g.Delete("/:id", write, h.Delete)
	g.Post("/:id/photo", write, h.UploadPhoto)
}
