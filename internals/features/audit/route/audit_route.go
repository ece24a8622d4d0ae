package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	ctl "colegio_backend/internals/features/audit/controller"
	authMw "colegio_backend/internals/middlewares/auth"
)

func AuditRoutes(r fiber.Router, db *gorm.DB) {
	h := ctl.NewAuditController(db)
	r.Get("/audit-logs", authMw.RequireCapability(constants.CapAuditRead, "ver la bitácora"), h.List)
}
