package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	ctl "colegio_backend/internals/features/communication/messages/controller"
	notifService "colegio_backend/internals/features/communication/notifications/service"
	authMw "colegio_backend/internals/middlewares/auth"
)

func MessageRoutes(r fiber.Router, db *gorm.DB, n *notifService.Notifier) {
	h := ctl.NewMessageController(db, n)

	g := r.Group("/messages")
	g.Get("/", h.List)
	g.Get("/:id", h.GetByID)
	g.Post("/", authMw.RequireCapability(constants.CapMessageSend, "enviar mensajes"), h.Send)
	g.Patch("/:id/read", h.MarkRead)
}
