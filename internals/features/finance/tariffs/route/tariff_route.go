package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	ctl "colegio_backend/internals/features/finance/tariffs/controller"
	authMw "colegio_backend/internals/middlewares/auth"
)

func TariffRoutes(r fiber.Router, db *gorm.DB) {
	h := ctl.NewTariffController(db)
	write := authMw.RequireCapability(constants.CapTariffWrite, "gestionar aranceles")

	g := r.Group("/tariffs")
	g.Get("/", h.List)
	g.Get("/:id", h.GetByID)
	g.Post("/", write, h.Create)
	g.Post("/bulk-assign", write, h.BulkAssign)
	g.Patch("/:id", write, h.Patch)
	g.Delete("/:id", write, h.Delete)
}
