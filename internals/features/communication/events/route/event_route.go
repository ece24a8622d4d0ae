package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	ctl "colegio_backend/internals/features/communication/events/controller"
	notifService "colegio_backend/internals/features/communication/notifications/service"
	authMw "colegio_backend/internals/middlewares/auth"
)

func EventRoutes(r fiber.Router, db *gorm.DB, n *notifService.Notifier) {
	h := ctl.NewEventController(db, n)
	write := authMw.RequireCapability(constants.CapEventWrite, "gestionar eventos")

	g := r.Group("/events")
	g.Get("/", h.List)
	g.Get("/:id", h.GetByID)
	g.Post("/", write, h.Create)
	g.Patch("/:id", write, h.Patch)
	g.Delete("/:id", write, h.Delete)
}
