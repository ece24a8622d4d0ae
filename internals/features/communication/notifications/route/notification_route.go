package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	ctl "colegio_backend/internals/features/communication/notifications/controller"
	"colegio_backend/internals/features/communication/notifications/service"
	authMw "colegio_backend/internals/middlewares/auth"
)

// senderRoles comes from NOTIFICATION_SENDER_ROLES and is matched against the raw token role.
func NotificationRoutes(r fiber.Router, db *gorm.DB, n *service.Notifier, senderRoles []string) {
	h := ctl.NewNotificationController(db, n)

	g := r.Group("/notifications")
	g.Get("/", h.List)
	g.Patch("/read-all", h.MarkAllRead)
	g.Patch("/:id/read", h.MarkRead)
	g.Post("/send-institutional-list", authMw.OnlyRawRoles("enviar comunicados institucionales", senderRoles), h.SendInstitutionalList)
}
