package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	ctl "colegio_backend/internals/features/finance/promises/controller"
	authMw "colegio_backend/internals/middlewares/auth"
)

func PaymentPromiseRoutes(r fiber.Router, db *gorm.DB) {
	h := ctl.NewPaymentPromiseController(db)

	g := r.Group("/payment-promises")
	g.Get("/", h.List)
	g.Patch("/:id/status", authMw.RequireCapability(constants.CapPaymentPromiseSet, "actualizar compromisos de pago"), h.UpdateStatus)
}
