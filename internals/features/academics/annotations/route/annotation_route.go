package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	ctl "colegio_backend/internals/features/academics/annotations/controller"
	authMw "colegio_backend/internals/middlewares/auth"
)

func AnnotationRoutes(r fiber.Router, db *gorm.DB) {
	h := ctl.NewAnnotationController(db)
	write := authMw.RequireCapability(constants.CapAnnotationWrite, "registrar anotaciones")

	g := r.Group("/annotations")
	g.Get("/", h.List)
	g.Post("/", write, h.Create)
	g.Post("/:id/sign", authMw.RequireCapability(constants.CapAnnotationSign, "firmar anotaciones"), h.Sign)
	g.Delete("/:id", write, h.Delete)
}
