package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	auditRoute "colegio_backend/internals/features/audit/route"
	eventRoute "colegio_backend/internals/features/communication/events/route"
	messageRoute "colegio_backend/internals/features/communication/messages/route"
	notificationRoute "colegio_backend/internals/features/communication/notifications/route"
)

func CommunicationRoutes(r fiber.Router, db *gorm.DB, d Deps) {
	eventRoute.EventRoutes(r, db, d.Notifier)
	messageRoute.MessageRoutes(r, db, d.Notifier)
	notificationRoute.NotificationRoutes(r, db, d.Notifier, d.Config.NotificationSenderRoles)
	auditRoute.AuditRoutes(r, db)
}
