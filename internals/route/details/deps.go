package details

import (
	"colegio_backend/internals/configs"
	notifService "colegio_backend/internals/features/communication/notifications/service"
	paymentService "colegio_backend/internals/features/finance/payments/service"
	authService "colegio_backend/internals/features/users/auth/service"
	"colegio_backend/internals/helpers/storage"
)

// Deps are the services built once by SetupRoutes and shared by every feature.
type Deps struct {
	Config   configs.Config
	Auth     *authService.Service
	Notifier *notifService.Notifier
	Storage  *storage.Service // nil ⇒ uploads answer 503
	Gateway  *paymentService.Gateway
}
