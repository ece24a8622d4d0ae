package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"colegio_backend/internals/constants"
	ctl "colegio_backend/internals/features/finance/payments/controller"
	svc "colegio_backend/internals/features/finance/payments/service"
	"colegio_backend/internals/helpers/storage"
	authMw "colegio_backend/internals/middlewares/auth"
)

// PaymentPublicRoutes: the Midtrans notification URL, authenticated by signature.
func PaymentPublicRoutes(public fiber.Router, db *gorm.DB, gw *svc.Gateway) {
	h := ctl.NewPaymentController(db, gw, nil)
	public.Post("/payments/midtrans/webhook", h.MidtransWebhook)
}

func PaymentRoutes(private fiber.Router, db *gorm.DB, gw *svc.Gateway, store *storage.Service) {
	h := ctl.NewPaymentController(db, gw, store)

	g := private.Group("/payments")
	g.Get("/", h.List)
	g.Get("/:id", h.GetByID)
	g.Post("/", authMw.RequireCapability(constants.CapPaymentWrite, "registrar pagos"), h.Create)
	g.Patch("/:id/status", authMw.RequireCapability(constants.CapPaymentWrite, "cambiar el estado de pagos"), h.UpdateStatus)
	g.Post("/:id/checkout", h.Checkout)
	g.Post("/:id/receipt", h.UploadReceipt)
}
