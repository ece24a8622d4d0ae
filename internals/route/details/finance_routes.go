package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	paymentRoute "colegio_backend/internals/features/finance/payments/route"
	payrollRoute "colegio_backend/internals/features/finance/payroll/route"
	promiseRoute "colegio_backend/internals/features/finance/promises/route"
	tariffRoute "colegio_backend/internals/features/finance/tariffs/route"
	reportRoute "colegio_backend/internals/features/reports/route"
)

func FinancePublicRoutes(public fiber.Router, db *gorm.DB, d Deps) {
	paymentRoute.PaymentPublicRoutes(public, db, d.Gateway)
}

func FinanceRoutes(private fiber.Router, db *gorm.DB, d Deps) {
	paymentRoute.PaymentRoutes(private, db, d.Gateway, d.Storage)
	promiseRoute.PaymentPromiseRoutes(private, db)
	tariffRoute.TariffRoutes(private, db)
	payrollRoute.PayrollRoutes(private, db)
	reportRoute.ReportRoutes(private, db)
}
