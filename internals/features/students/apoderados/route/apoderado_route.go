package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	ctl "colegio_backend/internals/features/students/apoderados/controller"
	authMw "colegio_backend/internals/middlewares/auth"
)

func ApoderadoRoutes(r fiber.Router, db *gorm.DB) {
	h := ctl.NewApoderadoController(db)
	write := authMw.RequireCapability(constants.CapGuardianWrite, "gestionar apoderados")

	g := r.Group("/apoderados")
	g.Get("/", h.List)
	g.Get("/:id", h.GetByID)
	g.Post("/", write, h.Create)
	g.Patch("/:id", write, h.Patch)
	g.Delete("/:id", write, h.Delete)
	g.Post("/:id/sync-financial-status",
		authMw.RequireCapability(constants.CapFinancialSync, "sincronizar el estado financiero"), h.SyncFinancialStatus)
}
